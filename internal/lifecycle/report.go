package lifecycle

import (
	"fmt"
	"time"
)

// RecoverableCollectionError is a single collection delete that failed. The
// run continues past it.
type RecoverableCollectionError struct {
	Collection string
	Err        error
}

func (e *RecoverableCollectionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Collection, e.Err)
}

func (e *RecoverableCollectionError) Unwrap() error { return e.Err }

// CollectionError is the reported form of a RecoverableCollectionError.
type CollectionError struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// Report is the outcome of a deletion run. A report with Success false is a
// partial result, not an error: callers must inspect Errors.
type Report struct {
	ClientID            string            `json:"client_id"`
	Success             bool              `json:"success"`
	DeletedCollections  []string          `json:"deleted_collections"`
	Errors              []CollectionError `json:"errors"`
	ClientRecordRemoved bool              `json:"client_record_removed"`
	ClientDeleteSkipped bool              `json:"client_delete_skipped"`
	Policy              Policy            `json:"policy"`
	StartedAt           time.Time         `json:"started_at"`
	FinishedAt          time.Time         `json:"finished_at"`
}

// Succeeded returns the set of collections whose delete completed.
func (r Report) Succeeded() map[string]struct{} {
	out := make(map[string]struct{}, len(r.DeletedCollections))
	for _, c := range r.DeletedCollections {
		out[c] = struct{}{}
	}
	return out
}

// Failed maps each failed collection to its error message.
func (r Report) Failed() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Collection] = e.Message
	}
	return out
}
