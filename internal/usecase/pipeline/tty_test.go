package pipeline

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTTY_PipeIsNotTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	assert.False(t, IsTTY(r.Fd()))
	assert.False(t, IsTTY(w.Fd()))
}

func TestIsTTY_RegularFileIsNotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty-check")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	assert.False(t, IsTTY(f.Fd()))
}
