// Package board implements the message board: users, channels, messages,
// reacts, pins, send-later and standups.
//
// A Board owns a single run-loop goroutine. Every exported operation is
// handed to that loop and waits for its result, and timers only queue
// work for the loop, so the directory is only ever touched by one
// goroutine at a time.
package board

import (
	"log"
	"net/mail"
	"sync"
	"sync/atomic"
	"time"

	"flockr-server/apperr"
	"flockr-server/clock"
	"flockr-server/models"
	"flockr-server/store"
)

//go:generate mockgen -source=board.go -destination=../mocks/board.go -package=mocks

// TokenIssuer mints session tokens. Every call must return a token that
// has never been returned before.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// Notifier delivers live events to connected users.
type Notifier interface {
	Notify(userIDs []int, event models.Event)
}

// Mailer hands a password reset code to its owner.
type Mailer interface {
	SendResetCode(email, code string) error
}

// ErrStopped is returned by operations submitted after Stop.
var ErrStopped = apperr.Internal("board stopped", nil)

type Options struct {
	Clock    clock.Clock
	Notifier Notifier
	Mailer   Mailer
	// ValidEmail reports whether an address is acceptable for
	// registration, login and profile changes.
	ValidEmail func(string) bool
	// QueueSize is the run loop's task buffer.
	QueueSize int
}

type Board struct {
	store      *store.Store
	issuer     TokenIssuer
	clock      clock.Clock
	notifier   Notifier
	mailer     Mailer
	validEmail func(string) bool

	tasks    chan task
	wake     chan struct{}
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	dueMu sync.Mutex
	due   []func()

	// owned by the run loop
	timers    map[int]*clock.Timer
	nextTimer int
	// generation changes whenever pending timers are discarded, so a
	// callback that fired just before that is dropped.
	generation int
}

type task struct {
	fn     func() error
	result chan error
}

func New(s *store.Store, issuer TokenIssuer, opts Options) *Board {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Mailer == nil {
		opts.Mailer = LogMailer{}
	}
	if opts.ValidEmail == nil {
		opts.ValidEmail = ValidEmail
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}

	return &Board{
		store:      s,
		issuer:     issuer,
		clock:      opts.Clock,
		notifier:   opts.Notifier,
		mailer:     opts.Mailer,
		validEmail: opts.ValidEmail,
		tasks:      make(chan task, opts.QueueSize),
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		timers:     make(map[int]*clock.Timer),
	}
}

// Run serves operations until Stop is called. Timers that fire are
// drained before each request, so a request never observes a deferred
// message that is already due but not yet delivered.
func (b *Board) Run() {
	b.running.Store(true)
	log.Printf("[BOARD] Run loop started")
	defer close(b.stopped)
	defer b.stopTimers()

	for {
		select {
		case <-b.quit:
			log.Printf("[BOARD] Run loop stopped")
			return
		case <-b.wake:
			b.runDue()
		case t := <-b.tasks:
			b.runDue()
			t.result <- t.fn()
		}
	}
}

// Stop ends the run loop and cancels every armed timer. If the loop is
// running, Stop waits for it to exit.
func (b *Board) Stop() {
	b.stopOnce.Do(func() { close(b.quit) })
	if b.running.Load() {
		<-b.stopped
	}
}

// exec runs fn on the loop and returns its error.
func (b *Board) exec(fn func() error) error {
	select {
	case <-b.quit:
		return ErrStopped
	default:
	}

	t := task{fn: fn, result: make(chan error, 1)}
	select {
	case b.tasks <- t:
	case <-b.stopped:
		return ErrStopped
	}
	select {
	case err := <-t.result:
		return err
	case <-b.stopped:
		return ErrStopped
	}
}

// schedule arms a timer that runs fn on the loop once d has elapsed.
// Must be called from the loop.
func (b *Board) schedule(d time.Duration, fn func()) {
	b.nextTimer++
	id := b.nextTimer
	gen := b.generation
	b.timers[id] = b.clock.AfterFunc(d, func() {
		b.dueMu.Lock()
		b.due = append(b.due, func() {
			if gen != b.generation {
				return
			}
			delete(b.timers, id)
			fn()
		})
		b.dueMu.Unlock()

		select {
		case b.wake <- struct{}{}:
		default:
		}
	})
}

func (b *Board) runDue() {
	b.dueMu.Lock()
	due := b.due
	b.due = nil
	b.dueMu.Unlock()

	for _, fn := range due {
		fn()
	}
}

func (b *Board) stopTimers() {
	b.generation++
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
	b.dueMu.Lock()
	b.due = nil
	b.dueMu.Unlock()
}

// Reset wipes the directory and cancels all pending deliveries.
func (b *Board) Reset() error {
	return b.exec(func() error {
		b.stopTimers()
		if err := b.store.Reset(); err != nil {
			return internal(err)
		}
		log.Printf("[BOARD] Directory reset")
		return nil
	})
}

// notify sends event to everyone who can read the channel.
func (b *Board) notify(channelID int, eventType string, payload interface{}) {
	ids, err := b.store.GetMemberIDs(channelID)
	if err != nil {
		log.Printf("[BOARD] Failed to load members of channel %d for %s: %v", channelID, eventType, err)
		return
	}
	b.notifier.Notify(ids, models.Event{Type: eventType, Payload: payload})
}

func internal(err error) error {
	return apperr.Internal("directory failure", err)
}

type nopNotifier struct{}

func (nopNotifier) Notify([]int, models.Event) {}

// LogMailer writes reset codes to the log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendResetCode(email, code string) error {
	log.Printf("[BOARD] Password reset code for %s: %s", email, code)
	return nil
}

// ValidEmail accepts a bare RFC 5322 address such as "ada@example.com".
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
