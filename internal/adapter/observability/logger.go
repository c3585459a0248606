package observability

import (
	"context"

	"github.com/bkyoung/tfpr/internal/adapter/httpclient"
	"github.com/bkyoung/tfpr/internal/usecase/pipeline"
)

// PipelineLogger adapts httpclient.Logger to the pipeline.Logger interface.
// This allows the orchestrator to use the same structured logging
// infrastructure as the GitHub HTTP client.
type PipelineLogger struct {
	logger httpclient.Logger
}

// NewPipelineLogger creates a new pipeline logger adapter.
func NewPipelineLogger(logger httpclient.Logger) pipeline.Logger {
	return &PipelineLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *PipelineLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *PipelineLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
