package aggregation

import (
	"errors"
	"fmt"

	"github.com/vanshika/clientdesk/internal/store"
)

// ErrClientNotFound is returned when the client record does not resolve.
// It matches store.ErrNotFound under errors.Is.
var ErrClientNotFound = fmt.Errorf("client not found: %w", store.ErrNotFound)

// ErrUnknownSeries rejects trend series names outside domain.TrendSeriesTypes.
var ErrUnknownSeries = errors.New("unknown trend series")

// SourceUnavailableError wraps a failed fetch of an optional source. The
// engine substitutes the default and logs it; callers never receive it.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
