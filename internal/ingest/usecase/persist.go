package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

// validateLadder checks that sizes are positive and strictly descending, and
// that an enabled last resort is below the final rung.
func validateLadder(ladder []int, lastResort int) error {
	if len(ladder) == 0 {
		return fmt.Errorf("%w: no sizes", ErrInvalidLadder)
	}
	for i, size := range ladder {
		if size < 1 {
			return fmt.Errorf("%w: size %d at position %d is not positive", ErrInvalidLadder, size, i)
		}
		if i > 0 && size >= ladder[i-1] {
			return fmt.Errorf("%w: %d does not descend from %d", ErrInvalidLadder, size, ladder[i-1])
		}
	}
	if lastResort < 0 {
		return fmt.Errorf("%w: last resort %d is negative", ErrInvalidLadder, lastResort)
	}
	if lastResort > 0 && lastResort >= ladder[len(ladder)-1] {
		return fmt.Errorf("%w: last resort %d must be below %d", ErrInvalidLadder, lastResort, ladder[len(ladder)-1])
	}
	return nil
}

// persist walks the ladder from the largest size down, writing the first
// prefix of rs the store accepts. Any store rejection moves to the next size;
// only a marshal failure stops the walk. At most one write succeeds.
func (u *Usecase) persist(ctx context.Context, rs entity.RecordSet) entity.StorageResult {
	var res entity.StorageResult

	for _, size := range u.opts.Ladder {
		done, abort := u.tryStore(ctx, rs, size, &res)
		if done {
			return res
		}
		if abort {
			slog.ErrorContext(ctx, "stopped storage ladder after serialization failure", "size", size)
			return res
		}
	}

	if u.opts.LastResort > 0 {
		slog.WarnContext(ctx, "every ladder size was rejected, trying last resort", "size", u.opts.LastResort)
		if done, _ := u.tryStore(ctx, rs, u.opts.LastResort, &res); done {
			res.LastResort = true
			return res
		}
	}

	slog.ErrorContext(ctx, "failed to store records, storage quota exceeded", "rows", rs.Len(), "attempts", len(res.Attempts))
	return res
}

func (u *Usecase) tryStore(ctx context.Context, rs entity.RecordSet, size int, res *entity.StorageResult) (done, abort bool) {
	prefix := rs.Prefix(size)
	attempt := entity.StorageAttempt{Size: size, Rows: prefix.Len()}

	payload, err := json.Marshal(prefix)
	if err != nil {
		attempt.Outcome = entity.AttemptError
		attempt.Err = err.Error()
		res.Attempts = append(res.Attempts, attempt)
		u.observer.StorageAttempt(attempt.Outcome)
		slog.ErrorContext(ctx, "failed to serialize records", "size", size, "error", err)
		return false, true
	}
	attempt.Bytes = len(payload)

	err = u.kv.SetItem(ctx, u.opts.StorageKey, payload)
	switch {
	case err == nil:
		attempt.Outcome = entity.AttemptStored
	case errors.Is(err, pkgerror.ErrQuotaExceeded):
		attempt.Outcome = entity.AttemptQuota
		attempt.Err = err.Error()
	default:
		attempt.Outcome = entity.AttemptError
		attempt.Err = err.Error()
	}
	res.Attempts = append(res.Attempts, attempt)
	u.observer.StorageAttempt(attempt.Outcome)

	switch attempt.Outcome {
	case entity.AttemptStored:
		res.Persisted = true
		res.StoredRows = prefix.Len()
		res.LadderSize = size
		res.Truncated = rs.Len() > size
		u.observer.Stored(res.StoredRows, res.Truncated)

		slog.InfoContext(ctx, "stored records", "rows", prefix.Len(), "bytes", attempt.Bytes, "key", u.opts.StorageKey)
		if res.Truncated {
			slog.WarnContext(ctx, "file has more rows than were stored due to storage limits", "rows", rs.Len(), "stored", size)
		}
		return true, false
	case entity.AttemptQuota:
		slog.WarnContext(ctx, "failed to store records, trying smaller dataset", "size", size, "bytes", attempt.Bytes)
		return false, false
	default:
		slog.ErrorContext(ctx, "failed to store records, trying smaller dataset", "size", size, "error", err)
		return false, false
	}
}
