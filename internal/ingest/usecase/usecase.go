package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkglog"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkguid"
)

const (
	successMessage = "✅ Data uploaded and processed successfully!"
	storageWarning = "Warning: Unable to save full dataset due to storage limits. Overview will still be displayed."
)

// KV is a size-limited key/value store. SetItem fails with an error wrapping
// pkgerror.ErrQuotaExceeded when the value does not fit, leaving the previous
// value in place.
type KV interface {
	SetItem(ctx context.Context, key string, value []byte) error
	GetItem(ctx context.Context, key string) ([]byte, error)
	RemoveItem(ctx context.Context, key string) error
	Usage(ctx context.Context) (entity.StoreUsage, error)
}

type UploadStore interface {
	CreateUpload(ctx context.Context, upload entity.Upload) error
	UpdateUpload(ctx context.Context, uploadID string, fn func(upload *entity.Upload)) error
	GetUpload(ctx context.Context, uploadID string) (entity.Upload, error)
}

// Display is the set of render targets an ingestion drives. Failed reverts
// to the pre-upload state; an empty alert reverts silently.
type Display interface {
	Processing(fileName string, sizeMB float64)
	Alert(msg string)
	Succeeded(msg, overviewHTML string)
	Failed(alert string)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.IngestedEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error) bool
}

type Clock interface {
	Now() time.Time
}

type Observer interface {
	UploadFinished(status entity.UploadStatus, kind entity.ErrorKind)
	StorageAttempt(outcome entity.AttemptOutcome)
	Stored(rows int, truncated bool)
	Parsed(d time.Duration, rows int)
}

type Dependency struct {
	KV       KV
	Uploads  UploadStore
	Display  Display
	Events   EventPublisher
	Runner   Runner
	Parsers  Runner
	Clock    Clock
	ID       pkguid.StringID
	EventID  pkguid.StringID
	Observer Observer
	RootCtx  context.Context
	Options  Options
}

type Usecase struct {
	kv       KV
	uploads  UploadStore
	display  Display
	events   EventPublisher
	runner   Runner
	parsers  Runner
	clock    Clock
	id       pkguid.StringID
	eventID  pkguid.StringID
	observer Observer
	rootCtx  context.Context
	opts     Options
	sentinel any
	render   func(entity.Summary) (string, error)

	busy atomic.Bool
}

func New(dep Dependency) (*Usecase, error) {
	opts := dep.Options
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if len(opts.Ladder) == 0 {
		opts.Ladder = DefaultLadder()
	}
	if opts.LabelField == "" {
		opts.LabelField = DefaultLabelField
	}
	if opts.FraudValue == "" {
		opts.FraudValue = DefaultFraudValue
	}
	if opts.BackgroundThreshold <= 0 {
		opts.BackgroundThreshold = DefaultBackgroundThreshold
	}
	if err := validateLadder(opts.Ladder, opts.LastResort); err != nil {
		return nil, err
	}

	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	observer := dep.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	eventID := dep.EventID
	if eventID == nil {
		eventID = dep.ID
	}

	return &Usecase{
		kv:       dep.KV,
		uploads:  dep.Uploads,
		display:  dep.Display,
		events:   dep.Events,
		runner:   dep.Runner,
		parsers:  dep.Parsers,
		clock:    clock,
		id:       dep.ID,
		eventID:  eventID,
		observer: observer,
		rootCtx:  root,
		opts:     opts,
		sentinel: inferScalar(opts.FraudValue),
		render:   renderOverview,
	}, nil
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type noopObserver struct{}

func (noopObserver) UploadFinished(entity.UploadStatus, entity.ErrorKind) {}
func (noopObserver) StorageAttempt(entity.AttemptOutcome) {}
func (noopObserver) Stored(int, bool) {}
func (noopObserver) Parsed(time.Duration, int) {}

// Busy reports whether an ingestion is in flight.
func (u *Usecase) Busy() bool {
	return u.busy.Load()
}

// Start begins ingesting file and returns right away. A second call while an
// ingestion is in flight is rejected with a conflict error.
func (u *Usecase) Start(ctx context.Context, file File) (*Handle, error) {
	if file.Name == "" && len(file.Content) == 0 {
		return nil, pkgerror.NewInvalidInput(ErrNoFile)
	}

	if u.kv == nil || u.uploads == nil || u.display == nil || u.runner == nil || u.id == nil {
		return nil, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if !u.busy.CompareAndSwap(false, true) {
		return nil, pkgerror.NewConflict("an upload is already being processed")
	}

	uploadID := u.id.Generate()
	if err := u.uploads.CreateUpload(ctx, entity.Upload{
		ID:        uploadID,
		FileName:  file.Name,
		SizeBytes: file.Size(),
		Status:    entity.UploadStatusQueued,
	}); err != nil {
		u.busy.Store(false)
		return nil, normalizeErr(err)
	}

	u.display.Processing(file.Name, file.SizeMB())
	slog.InfoContext(ctx, "processing csv file", "upload_id", uploadID, "file", file.Name, "size_mb", fmt.Sprintf("%.2f", file.SizeMB()))

	h := newHandle(uploadID)
	runCtx := pkglog.SetUploadID(u.rootCtx, uploadID)
	runCtx = pkglog.SetCorrelationID(runCtx, pkglog.GetCorrelationID(ctx))

	if !u.runner.Go(runCtx, func(ctx context.Context) error {
		u.process(ctx, h, file)
		return nil
	}) {
		u.display.Failed("")
		u.complete(runCtx, h, Outcome{UploadID: uploadID, Status: entity.UploadStatusFailed, Err: runCtx.Err()})
	}

	return h, nil
}

// Upload starts an ingestion without waiting for it.
func (u *Usecase) Upload(ctx context.Context, file File) (UploadResult, error) {
	h, err := u.Start(ctx, file)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{UploadID: h.UploadID}, nil
}

// Ingest starts an ingestion and waits for its outcome.
func (u *Usecase) Ingest(ctx context.Context, file File) (Outcome, error) {
	h, err := u.Start(ctx, file)
	if err != nil {
		return Outcome{}, err
	}
	return h.Await(ctx)
}

func (u *Usecase) Status(ctx context.Context, uploadID string) (entity.Upload, error) {
	if uploadID == "" {
		return entity.Upload{}, pkgerror.NewInvalidInput(errors.New("upload_id is required"))
	}

	upload, err := u.uploads.GetUpload(ctx, uploadID)
	if err != nil {
		return entity.Upload{}, mapStoreErr(err)
	}

	return upload, nil
}

// Persisted returns the subset currently held under the storage key. An empty
// store yields an empty list.
func (u *Usecase) Persisted(ctx context.Context) (PersistedResult, error) {
	res := PersistedResult{Key: u.opts.StorageKey, Rows: json.RawMessage("[]")}

	raw, err := u.kv.GetItem(ctx, u.opts.StorageKey)
	switch {
	case errors.Is(err, pkgerror.ErrNotFound):
	case err != nil:
		return PersistedResult{}, normalizeErr(err)
	default:
		var rows []json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			return PersistedResult{}, pkgerror.NewServer(fmt.Errorf("decode stored records: %w", err))
		}
		res.Rows = raw
		res.Count = len(rows)
	}

	usage, err := u.kv.Usage(ctx)
	if err != nil {
		return PersistedResult{}, normalizeErr(err)
	}
	res.Usage = usage

	return res, nil
}

// ClearPersisted removes the stored subset.
func (u *Usecase) ClearPersisted(ctx context.Context) error {
	if err := u.kv.RemoveItem(ctx, u.opts.StorageKey); err != nil && !errors.Is(err, pkgerror.ErrNotFound) {
		return normalizeErr(err)
	}
	slog.InfoContext(ctx, "cleared stored records", "key", u.opts.StorageKey)
	return nil
}

func (u *Usecase) process(ctx context.Context, h *Handle, file File) {
	defer u.recoverProcess(ctx, h)

	out := Outcome{UploadID: h.UploadID, Status: entity.UploadStatusFailed}

	startedAt := u.clock.Now().Unix()
	if err := u.uploads.UpdateUpload(ctx, h.UploadID, func(upload *entity.Upload) {
		upload.Status = entity.UploadStatusProcessing
		upload.StartedAt = startedAt
	}); err != nil {
		slog.ErrorContext(ctx, "failed to mark upload as processing", "error", err)
	}

	if err := sleepCtx(ctx, u.opts.ParseDelay); err != nil {
		out.Err = err
		u.fail(ctx, h, out)
		return
	}

	began := u.clock.Now()
	rs, err := u.parse(ctx, file)
	if err != nil {
		out.Err = err
		u.fail(ctx, h, out)
		return
	}
	u.observer.Parsed(u.clock.Now().Sub(began), rs.Len())
	slog.InfoContext(ctx, "csv parsed successfully", "rows", rs.Len(), "fields", len(rs.Fields))
	out.Rows = rs.Len()

	summary, overview, err := u.postProcess(rs)
	if err != nil {
		out.Err = err
		u.fail(ctx, h, out)
		return
	}

	out.Storage = u.persist(ctx, rs)
	if !out.Storage.Persisted {
		u.display.Alert(storageWarning)
	}

	u.display.Succeeded(successMessage, overview)
	out.Status = entity.UploadStatusDone
	out.Summary = summary
	out.OverviewHTML = overview
	u.complete(ctx, h, out)
}

// parse runs on the calling goroutine, or on the parser pool when the file is
// above the background threshold.
func (u *Usecase) parse(ctx context.Context, file File) (entity.RecordSet, error) {
	if u.parsers == nil || file.Size() <= u.opts.BackgroundThreshold {
		return parseCSV(ctx, file.Content)
	}

	slog.InfoContext(ctx, "dispatching parse to background worker", "bytes", file.Size())

	type result struct {
		rs  entity.RecordSet
		err error
	}
	results := make(chan result, 1)

	if !u.parsers.Go(ctx, func(ctx context.Context) error {
		defer func() {
			if rvr := recover(); rvr != nil {
				results <- result{err: &ParseError{Err: fmt.Errorf("parse worker: %v", rvr)}}
			}
		}()
		rs, err := parseCSV(ctx, file.Content)
		results <- result{rs: rs, err: err}
		return nil
	}) {
		return entity.RecordSet{}, ctx.Err()
	}

	select {
	case res := <-results:
		return res.rs, res.err
	case <-ctx.Done():
		return entity.RecordSet{}, ctx.Err()
	}
}

func (u *Usecase) postProcess(rs entity.RecordSet) (summary entity.Summary, overview string, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = &PostProcessingError{Err: fmt.Errorf("%v", rvr)}
		}
	}()

	summary = summarize(rs, u.opts.LabelField, u.sentinel)
	overview, err = u.render(summary)
	if err != nil {
		return entity.Summary{}, "", &PostProcessingError{Err: err}
	}

	return summary, overview, nil
}

// recoverProcess turns a panic anywhere in process into a post-processing
// failure so the page reverts and the busy flag is released.
func (u *Usecase) recoverProcess(ctx context.Context, h *Handle) {
	rvr := recover()
	if rvr == nil {
		return
	}

	slog.ErrorContext(ctx, "panic during csv ingestion", "panic", rvr, "stack", string(debug.Stack()))
	if h.finished.Load() {
		return
	}

	u.fail(ctx, h, Outcome{UploadID: h.UploadID, Err: &PostProcessingError{Err: fmt.Errorf("panic: %v", rvr)}})
}

func (u *Usecase) fail(ctx context.Context, h *Handle, out Outcome) {
	out.Status = entity.UploadStatusFailed
	defer u.complete(ctx, h, out)

	switch kind := errorKind(out.Err); kind {
	case entity.ErrorKindParse:
		slog.ErrorContext(ctx, "csv parsing error", "error", out.Err)
		u.display.Failed("Error parsing CSV file: " + out.Err.Error())
	case entity.ErrorKindPostProcessing:
		slog.ErrorContext(ctx, "error processing csv", "error", out.Err)
		u.display.Failed("Error processing CSV file: " + out.Err.Error() + "\nPlease check the file format.")
	default:
		slog.WarnContext(ctx, "csv ingestion canceled", "error", out.Err)
		u.display.Failed("")
	}
}

// complete records the terminal state, releases the busy flag, and delivers
// the outcome. Only the first call per handle has any effect.
func (u *Usecase) complete(ctx context.Context, h *Handle, out Outcome) {
	if !h.finished.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		u.busy.Store(false)
		h.done <- out
	}()

	kind := out.ErrKind()
	errMsg := ""
	if out.Err != nil {
		errMsg = out.Err.Error()
	}

	u.observer.UploadFinished(out.Status, kind)

	endedAt := u.clock.Now().Unix()
	if err := u.uploads.UpdateUpload(ctx, h.UploadID, func(upload *entity.Upload) {
		upload.Status = out.Status
		upload.Err = errMsg
		upload.ErrKind = kind
		upload.EndedAt = endedAt
		upload.Rows = out.Rows
		upload.Storage = out.Storage
		upload.Summary = out.Summary
	}); err != nil {
		slog.ErrorContext(ctx, "failed to record upload result", "error", err)
	}

	u.publish(ctx, out, kind)
}

func (u *Usecase) publish(ctx context.Context, out Outcome, kind entity.ErrorKind) {
	if u.events == nil {
		return
	}

	event := entity.IngestedEvent{
		EventID:    u.eventID.Generate(),
		UploadID:   out.UploadID,
		Status:     out.Status,
		ErrKind:    kind,
		Rows:       out.Rows,
		StoredRows: out.Storage.StoredRows,
		Truncated:  out.Storage.Truncated,
		Persisted:  out.Storage.Persisted,
		FraudCount: out.Summary.FraudCount,
	}

	// the root context may already be canceled on shutdown; the bus still
	// takes the event if it has room
	pubCtx := context.WithoutCancel(ctx)
	pubCtx, cancel := context.WithTimeout(pubCtx, time.Second)
	defer cancel()

	if err := u.events.Publish(pubCtx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "event_id", event.EventID, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
