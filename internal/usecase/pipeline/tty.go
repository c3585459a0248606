package pipeline

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal. Used to detect
// whether the process runs in an interactive shell or under CI.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY, indicating that output is
// being displayed directly to a user's terminal rather than being piped or
// captured by a CI runner. Log output defaults to human-readable format in
// that case and JSON otherwise.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
