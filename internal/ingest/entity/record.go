package entity

import (
	"bytes"
	"encoding/json"
)

// ExtraField holds the cells of a row that has more values than the header.
const ExtraField = "__parsed_extra"

// Record is one parsed CSV row. Values are float64, string, bool or nil;
// ExtraField holds a []any of the surplus cells.
type Record map[string]any

// RecordSet is the ordered result of parsing one file.
type RecordSet struct {
	Fields []string
	Rows   []Record
}

func (rs RecordSet) Len() int {
	return len(rs.Rows)
}

// Prefix returns the first n rows, or all of them when n exceeds Len.
// The rows are shared, not copied.
func (rs RecordSet) Prefix(n int) RecordSet {
	if n < 0 {
		n = 0
	}
	if n > len(rs.Rows) {
		n = len(rs.Rows)
	}
	return RecordSet{Fields: rs.Fields, Rows: rs.Rows[:n]}
}

// MarshalJSON encodes the rows as an array of objects keeping the header
// column order. Missing cells are omitted; ExtraField comes last.
func (rs RecordSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rs.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeRow(&buf, rs.Fields, row); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, fields []string, row Record) error {
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, field := range fields {
		value, ok := row[field]
		if !ok {
			continue
		}
		if err := write(field, value); err != nil {
			return err
		}
	}
	if extra, ok := row[ExtraField]; ok {
		if err := write(ExtraField, extra); err != nil {
			return err
		}
	}

	buf.WriteByte('}')
	return nil
}
