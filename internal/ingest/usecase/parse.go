package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

// maxSafeInteger is the largest integer a float64 holds exactly (2^53-1).
const maxSafeInteger = 1<<53 - 1

const ctxCheckEvery = 4096

var (
	utf8BOM      = []byte("\xef\xbb\xbf")
	floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)
)

// parseCSV reads content as CSV with a header row. Cells are typed with
// inferScalar, blank lines are skipped, and quoting errors abort the parse.
func parseCSV(ctx context.Context, content []byte) (entity.RecordSet, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return entity.RecordSet{}, nil
	}
	if err != nil {
		return entity.RecordSet{}, toParseError(err)
	}

	rs := entity.RecordSet{Fields: uniqueFields(header)}
	for n := 1; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return entity.RecordSet{}, err
			}
		}

		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entity.RecordSet{}, toParseError(err)
		}

		if len(cells) == 1 && cells[0] == "" {
			continue
		}
		rs.Rows = append(rs.Rows, buildRecord(rs.Fields, cells))
	}

	return rs, nil
}

func buildRecord(fields, cells []string) entity.Record {
	rec := make(entity.Record, len(fields))
	var extra []any
	for i, cell := range cells {
		if i < len(fields) {
			rec[fields[i]] = inferScalar(cell)
			continue
		}
		extra = append(extra, inferScalar(cell))
	}
	if extra != nil {
		rec[entity.ExtraField] = extra
	}
	return rec
}

// uniqueFields renames repeated header names with _1, _2, ... suffixes.
func uniqueFields(header []string) []string {
	fields := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int)

	for i, name := range header {
		candidate := name
		for used[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s_%d", name, counts[name])
		}
		used[candidate] = true
		fields[i] = candidate
	}

	return fields
}

// inferScalar types a raw cell: booleans, finite numbers within the safe
// integer range, nil for an empty cell, and the raw string otherwise.
func inferScalar(cell string) any {
	switch cell {
	case "":
		return nil
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}

	if floatPattern.MatchString(cell) {
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err == nil && f >= -maxSafeInteger && f <= maxSafeInteger {
			return f
		}
	}

	return cell
}

func toParseError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.Line, Err: err}
	}
	return &ParseError{Err: err}
}
