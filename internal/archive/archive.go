// Package archive persists deletion reports so partially deleted clients can
// be followed up by hand.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/vanshika/clientdesk/internal/lifecycle"
)

// Driver names accepted by Open.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverFS     = "fs"
	DriverS3     = "s3"
)

// Options configures the archive backend.
type Options struct {
	Driver    string
	Root      string
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open returns the sink selected by opts.Driver, or nil for "none".
func Open(ctx context.Context, opts Options) (lifecycle.ReportSink, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverNone:
		return nil, nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverFS:
		sink, err := NewFilesystem(opts.Root)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case DriverS3:
		sink, err := NewS3(ctx, S3Config{
			Bucket:    opts.Bucket,
			Region:    opts.Region,
			Endpoint:  opts.Endpoint,
			PathStyle: opts.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", opts.Driver)
	}
}

// Key returns the object key of a report:
// deletions/<client_id>/<finished_at>.json.
func Key(report lifecycle.Report) string {
	stamp := report.FinishedAt.UTC().Format("20060102T150405.000000000Z")
	client := strings.ReplaceAll(report.ClientID, "/", "_")
	if client == "" {
		client = "unknown"
	}
	return path.Join("deletions", client, stamp+".json")
}

func encode(report lifecycle.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report %s: %w", report.ClientID, err)
	}
	return data, nil
}
