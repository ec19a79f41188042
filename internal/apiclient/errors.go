// internal/apiclient/errors.go
package apiclient

import (
	"fmt"
	"strings"
)

// ServiceError is any failure talking to the generation service: a network
// error, a non-2xx response, or a body that could not be decoded. It is shown
// to the user as a dismissible message and never retried automatically.
type ServiceError struct {
	Op         string // e.g. "generate commander"
	StatusCode int    // 0 when no response was received
	Message    string // server-supplied detail, if any
	Err        error
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ServiceError) Unwrap() error { return e.Err }

// PartialImportError reports an inventory import that the service answered
// with HTTP 207. The cards that did import are kept.
type PartialImportError struct {
	Failed  []string
	Message string
}

func (e *PartialImportError) Error() string {
	return fmt.Sprintf("%d card(s) failed to import: %s", len(e.Failed), strings.Join(e.Failed, ", "))
}
