package httpclient

import "regexp"

var (
	// Authorization header values and token-shaped strings that must never
	// reach log output.
	bearerPattern  = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
	ghTokenPattern = regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{20,}`)
	queryPattern   = regexp.MustCompile(`([?&](?:token|access_token|api_key)=)[^&\s]+`)
)

// RedactSecrets scrubs access tokens from text before it is logged. It covers
// Authorization header values, GitHub token literals, and credential-bearing
// query parameters.
func RedactSecrets(text string) string {
	text = bearerPattern.ReplaceAllString(text, "Bearer [REDACTED]")
	text = ghTokenPattern.ReplaceAllString(text, "[REDACTED]")
	text = queryPattern.ReplaceAllString(text, "${1}[REDACTED]")
	return text
}
