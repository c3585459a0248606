package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// generateRunID is intentionally duplicated from internal/store/util.go.
//
// This package is in the use case layer; the store adapter implements the
// Store interface defined here. Importing store utilities from this side
// would reverse the dependency direction, so the implementation is
// duplicated and a test keeps the two in sync
// (see store_helpers_test.go::TestGenerateRunIDMatchesStorePackage).
func generateRunID(timestamp time.Time, repository, commitSHA string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%s|%d", repository, commitSHA, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}
