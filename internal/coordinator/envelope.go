package coordinator

import (
	"github.com/Iron-Ham/clawteam/internal/errors"
)

// Result is the uniform outcome of a command.
type Result struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is the machine-readable part of a failed Result.
type ErrorInfo struct {
	Kind    errors.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Envelope wraps a command's return values. A non-nil err wins over data.
func Envelope(data any, err error) Result {
	if err == nil {
		return Result{OK: true, Data: data}
	}
	return Result{
		OK:    false,
		Error: &ErrorInfo{Kind: errors.KindOf(err), Message: err.Error()},
	}
}
