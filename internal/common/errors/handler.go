package errors

import (
	"context"
)

// Reporter delivers an ephemeral message to the member behind an interaction.
type Reporter interface {
	Ephemeral(ctx context.Context, content string) error
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorHandler reports interaction failures back to the initiating member.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleInteractionError normalizes err, logs it and reports it ephemerally.
// It returns the normalized error so callers can label metrics.
func (h *ErrorHandler) HandleInteractionError(ctx context.Context, reporter Reporter, handlerName string, err error) *StandardError {
	stdErr := AsStandard(err)

	fields := map[string]interface{}{
		"handler":   handlerName,
		"errorCode": stdErr.Code,
		"category":  GetErrorCategory(stdErr.Code),
		"retryable": stdErr.Retryable,
		"details":   stdErr.Details,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	// User mistakes are expected traffic.
	if GetErrorCategory(stdErr.Code) == "user" {
		h.logger.Warn("Interaction rejected", fields)
	} else {
		h.logger.Error("Interaction failed", fields)
	}

	if reporter == nil {
		return stdErr
	}
	if rerr := reporter.Ephemeral(ctx, stdErr.Message); rerr != nil {
		h.logger.Error("Failed to report error to member", map[string]interface{}{
			"handler":   handlerName,
			"errorCode": stdErr.Code,
			"error":     rerr.Error(),
		})
	}
	return stdErr
}
