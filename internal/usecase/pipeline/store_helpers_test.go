package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/tfpr/internal/store"
)

// TestGenerateRunIDMatchesStorePackage ensures the duplicated run ID
// implementation stays in sync with internal/store.
func TestGenerateRunIDMatchesStorePackage(t *testing.T) {
	ts := time.Date(2026, 8, 29, 14, 30, 52, 123456789, time.UTC)

	assert.Equal(t,
		store.GenerateRunID(ts, "acme/infra", "deadbeef"),
		generateRunID(ts, "acme/infra", "deadbeef"),
	)
}
