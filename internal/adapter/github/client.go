package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bkyoung/tfpr/internal/adapter/httpclient"
)

const (
	defaultBaseURL        = "https://api.github.com"
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second
)

// Client is an HTTP client for the GitHub Issues comment API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  httpclient.RetryConfig
	logger     httpclient.Logger
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a GitHub personal access token or GITHUB_TOKEN from Actions.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf: httpclient.RetryConfig{
			MaxRetries:     defaultMaxRetries,
			InitialBackoff: defaultInitialBackoff,
			MaxBackoff:     32 * time.Second,
			Multiplier:     2.0,
		},
	}
}

// SetBaseURL sets a custom base URL (for testing and GitHub Enterprise).
// Trailing slashes are stripped so path joining never produces double slashes.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetMaxRetries sets the maximum number of retry attempts.
func (c *Client) SetMaxRetries(maxRetries int) {
	c.retryConf.MaxRetries = maxRetries
}

// SetInitialBackoff sets the initial backoff duration for retries.
func (c *Client) SetInitialBackoff(backoff time.Duration) {
	c.retryConf.InitialBackoff = backoff
}

// SetLogger attaches a structured logger for API call logging.
func (c *Client) SetLogger(logger httpclient.Logger) {
	c.logger = logger
}

// CreateCommentInput contains all data needed to post an issue comment.
// Pull requests are issues for commenting purposes, so IssueNumber is the PR
// number when commenting on a pull request.
type CreateCommentInput struct {
	Owner       string
	Repo        string
	IssueNumber int
	Body        string
}

// CreateIssueComment posts a comment on an issue or pull request.
// Returns an error if the request fails after all retries.
func (c *Client) CreateIssueComment(ctx context.Context, input CreateCommentInput) (*CreateCommentResponse, error) {
	reqBody := CreateCommentRequest{Body: input.Body}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments",
		input.Owner, input.Repo, input.IssueNumber)
	url := c.baseURL + path

	started := time.Now()

	// Execute with retry
	var resp *http.Response
	err = httpclient.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &httpclient.Error{
				Type:      httpclient.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Service:   serviceName,
			}
		}

		// Set headers
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			// Could be timeout or network error
			return &httpclient.Error{
				Type:      httpclient.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Service:   serviceName,
			}
		}

		// Check for error status codes
		if resp.StatusCode >= 400 {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				// If we can't read the error body, return a generic error with the status code
				return &httpclient.Error{
					Type:       httpclient.ErrTypeUnknown,
					Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
					StatusCode: resp.StatusCode,
					Retryable:  resp.StatusCode >= 500,
					Service:    serviceName,
				}
			}
			return MapHTTPError(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		c.logCallError(ctx, path, started, err)
		return nil, err
	}
	defer resp.Body.Close()

	// Parse response
	var commentResp CreateCommentResponse
	if err := json.NewDecoder(resp.Body).Decode(&commentResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if c.logger != nil {
		c.logger.LogCall(ctx, httpclient.CallLog{
			Service:    serviceName,
			Method:     "POST",
			Path:       path,
			Timestamp:  started,
			Duration:   time.Since(started),
			StatusCode: resp.StatusCode,
		})
	}

	return &commentResp, nil
}

func (c *Client) logCallError(ctx context.Context, path string, started time.Time, err error) {
	if c.logger == nil {
		return
	}

	errLog := httpclient.ErrorLog{
		Service:   serviceName,
		Method:    "POST",
		Path:      path,
		Timestamp: started,
		Duration:  time.Since(started),
		Error:     err,
	}
	var apiErr *httpclient.Error
	if errors.As(err, &apiErr) {
		errLog.StatusCode = apiErr.StatusCode
		errLog.Retryable = apiErr.Retryable
	}
	c.logger.LogError(ctx, errLog)
}
