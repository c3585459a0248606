package github

// CreateCommentRequest is the JSON body for the create-comment endpoint.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// CreateCommentResponse is the subset of GitHub's comment representation the
// pipeline consumes.
type CreateCommentResponse struct {
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
	Body    string `json:"body"`
}

// ErrorResponse models GitHub's error payload.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []ErrorField `json:"errors,omitempty"`
}

// ErrorField is a single validation error within an ErrorResponse.
type ErrorField struct {
	Resource string `json:"resource,omitempty"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}
