package board

import (
	"strings"
)

const maxHandleLength = 20

// generateHandle derives a unique handle from a user's names. A taken
// handle shorter than the limit gets an underscore appended; a full
// length one has its tail swapped for a letter, walking a..z at one
// position before moving a place further left.
func (b *Board) generateHandle(nameFirst, nameLast string) (string, error) {
	handle := []rune(strings.ToLower(nameFirst + nameLast))
	if len(handle) > maxHandleLength {
		handle = handle[:maxHandleLength]
	}

	letter := 0
	replaceFromEnd := 1
	for {
		taken, err := b.store.HandleExists(string(handle))
		if err != nil {
			return "", err
		}
		if !taken {
			return string(handle), nil
		}

		switch {
		case len(handle) < maxHandleLength:
			handle = append(handle, '_')
		default:
			cut := len(handle) - replaceFromEnd
			if cut < 0 {
				cut = 0
			}
			handle = append(handle[:cut:cut], rune('a'+letter))
			letter++
			if letter == 26 {
				letter = 0
				replaceFromEnd++
			}
		}
	}
}
