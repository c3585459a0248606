// Package github provides an HTTP client for the GitHub Issues API.
//
// The pipeline uses a single operation: creating a comment on an issue or
// pull request. Comments are how rendered terraform plans reach reviewers,
// so the client carries the same retry and typed-error infrastructure as the
// rest of the adapters.
package github
