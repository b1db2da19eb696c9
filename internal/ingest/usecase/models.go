package usecase

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

const (
	DefaultStorageKey          = "creditcard_csv_data"
	DefaultLabelField          = "Class"
	DefaultFraudValue          = "1"
	DefaultParseDelay          = 200 * time.Millisecond
	DefaultBackgroundThreshold = 1 << 20
)

// DefaultLadder is the row-count ceilings tried when persisting, largest first.
func DefaultLadder() []int {
	return []int{5000, 3000, 1000, 500}
}

// Options tunes one ingestion pipeline.
//
// Zero values of StorageKey, LabelField, FraudValue, BackgroundThreshold and
// Ladder fall back to the defaults. ParseDelay is taken as is, so zero means
// parse right away.
type Options struct {
	StorageKey          string
	Ladder              []int
	LastResort          int
	LabelField          string
	FraudValue          string
	ParseDelay          time.Duration
	BackgroundThreshold int64
}

func DefaultOptions() Options {
	return Options{
		StorageKey:          DefaultStorageKey,
		Ladder:              DefaultLadder(),
		LabelField:          DefaultLabelField,
		FraudValue:          DefaultFraudValue,
		ParseDelay:          DefaultParseDelay,
		BackgroundThreshold: DefaultBackgroundThreshold,
	}
}

// File is one selected file.
type File struct {
	Name    string
	Content []byte
}

func (f File) Size() int64 {
	return int64(len(f.Content))
}

func (f File) SizeMB() float64 {
	return float64(len(f.Content)) / 1024 / 1024
}

// Outcome is the terminal result of one ingestion. Err is nil on success, a
// *ParseError, a *PostProcessingError, or a context error.
type Outcome struct {
	UploadID     string
	Status       entity.UploadStatus
	Rows         int
	Storage      entity.StorageResult
	Summary      entity.Summary
	OverviewHTML string
	Err          error
}

func (o Outcome) ErrKind() entity.ErrorKind {
	return errorKind(o.Err)
}

// Handle tracks an ingestion started with Start.
type Handle struct {
	UploadID string
	done     chan Outcome
	finished atomic.Bool
}

func newHandle(uploadID string) *Handle {
	return &Handle{UploadID: uploadID, done: make(chan Outcome, 1)}
}

// Done delivers the outcome exactly once.
func (h *Handle) Done() <-chan Outcome {
	return h.done
}

// Await blocks until the ingestion finishes or ctx ends.
func (h *Handle) Await(ctx context.Context) (Outcome, error) {
	select {
	case out := <-h.done:
		return out, nil
	case <-ctx.Done():
		return Outcome{UploadID: h.UploadID}, ctx.Err()
	}
}

type UploadResult struct {
	UploadID string
}

type PersistedResult struct {
	Key   string
	Rows  json.RawMessage
	Count int
	Usage entity.StoreUsage
}
