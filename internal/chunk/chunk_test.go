package chunk_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tfpr/internal/chunk"
)

func TestSplit_RejectsNonPositiveMaxSize(t *testing.T) {
	_, err := chunk.Split("anything", 0)
	require.Error(t, err)

	_, err = chunk.Split("anything", -5)
	require.Error(t, err)
}

func TestSplit_EmptyTextYieldsNoChunks(t *testing.T) {
	chunks, err := chunk.Split("", 65536)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_TextShorterThanMaxSize(t *testing.T) {
	chunks, err := chunk.Split("hello", 100)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestSplit_TextExactlyMaxSize(t *testing.T) {
	text := strings.Repeat("a", 64)

	chunks, err := chunk.Split(text, 64)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_GitHubCommentLimitScenario(t *testing.T) {
	// 70000 chars against the 65536 comment body limit: two parts,
	// 65536 then the 4464 remainder.
	text := strings.Repeat("x", 70000)

	chunks, err := chunk.Split(text, 65536)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 65536)
	assert.Len(t, chunks[1], 4464)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_ConcatenationReproducesInput(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
	}{
		{"short text small chunks", "the quick brown fox", 3},
		{"chunk size one", "abcdef", 1},
		{"multi-line plan text", "resource \"aws_instance\" \"web\" {\n  ami = \"ami-123\"\n}\n", 10},
		{"max size larger than text", "tiny", 1 << 20},
		{"multi-byte content", strings.Repeat("héllo wörld ", 100), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := chunk.Split(tt.text, tt.maxSize)
			require.NoError(t, err)
			assert.Equal(t, tt.text, strings.Join(chunks, ""))
		})
	}
}

func TestSplit_ChunkCountAndLengths(t *testing.T) {
	tests := []struct {
		name      string
		textLen   int
		maxSize   int
		wantCount int
	}{
		{"evenly divisible", 100, 10, 10},
		{"remainder", 105, 10, 11},
		{"single byte over", 11, 10, 2},
		{"one chunk", 9, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("z", tt.textLen)

			chunks, err := chunk.Split(text, tt.maxSize)
			require.NoError(t, err)
			require.Len(t, chunks, tt.wantCount)

			// Every chunk except the last is exactly maxSize; the last is
			// non-empty and at most maxSize.
			for i, c := range chunks[:len(chunks)-1] {
				assert.Len(t, c, tt.maxSize, "chunk %d", i)
			}
			last := chunks[len(chunks)-1]
			assert.Greater(t, len(last), 0)
			assert.LessOrEqual(t, len(last), tt.maxSize)
		})
	}
}

func TestSplit_IsDeterministic(t *testing.T) {
	text := strings.Repeat("plan output ", 5000)

	first, err := chunk.Split(text, 1234)
	require.NoError(t, err)
	second, err := chunk.Split(text, 1234)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, chunk.Count(0, 10))
	assert.Equal(t, 0, chunk.Count(10, 0))
	assert.Equal(t, 1, chunk.Count(10, 10))
	assert.Equal(t, 2, chunk.Count(11, 10))
	assert.Equal(t, 2, chunk.Count(70000, 65536))
}
