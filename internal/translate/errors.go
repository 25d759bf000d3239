package translate

import (
	"fmt"
	"strings"
)

// ProviderFailure records why one provider in the chain failed
type ProviderFailure struct {
	Provider string
	Reason   string
}

// ExhaustedError is returned when every provider in the failover chain
// failed for a translation request
type ExhaustedError struct {
	Failures []ProviderFailure
}

func (e *ExhaustedError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, fmt.Sprintf("%s: %s", f.Provider, f.Reason))
	}
	return fmt.Sprintf("all translation providers exhausted: [%s]", strings.Join(reasons, "; "))
}

// BatchSizeError is returned when a batch request exceeds the configured
// maximum. The request is rejected outright; nothing is partially processed.
type BatchSizeError struct {
	Size int
	Max  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch size %d exceeds maximum %d", e.Size, e.Max)
}
