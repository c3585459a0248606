// Package chunk splits large text blobs into bounded-size pieces so they fit
// a destination system's maximum message size.
package chunk

import "fmt"

// Split partitions text into consecutive, non-overlapping substrings of at
// most maxSize bytes. Every chunk except the last has length exactly maxSize;
// the last holds the remainder. Concatenating the result reproduces text
// exactly. Empty text yields an empty slice, never a single empty chunk.
//
// The split is a raw byte-offset partition, not word- or line-aware. A chunk
// boundary can land inside a fenced code block or a multi-byte sequence; any
// rendering artifacts from that are accepted in exchange for the exactness
// guarantee.
func Split(text string, maxSize int) ([]string, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk: max size must be positive, got %d", maxSize)
	}
	if text == "" {
		return nil, nil
	}

	chunks := make([]string, 0, (len(text)+maxSize-1)/maxSize)
	for start := 0; start < len(text); start += maxSize {
		end := start + maxSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks, nil
}

// Count returns the number of chunks Split would produce without allocating
// them.
func Count(textLen, maxSize int) int {
	if maxSize <= 0 || textLen <= 0 {
		return 0
	}
	return (textLen + maxSize - 1) / maxSize
}
