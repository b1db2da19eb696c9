package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

func TestParseCSVTypesCells(t *testing.T) {
	content := "a,b,c,d,e,f,g,h\n1,2.5,true,,hello,-1e3, 7 ,9007199254740993\n0,.5,FALSE,x,True,1.,TRUE,false\n"

	rs, err := parseCSV(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	want := entity.RecordSet{
		Fields: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		Rows: []entity.Record{
			{"a": 1.0, "b": 2.5, "c": true, "d": nil, "e": "hello", "f": -1000.0, "g": 7.0, "h": "9007199254740993"},
			{"a": 0.0, "b": 0.5, "c": false, "d": "x", "e": "True", "f": 1.0, "g": true, "h": false},
		},
	}
	if diff := cmp.Diff(want, rs); diff != "" {
		t.Fatalf("parseCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVSkipsBlankLinesAndBOM(t *testing.T) {
	content := "\xef\xbb\xbfAmount,Class\n10,0\n\n20,1\n\n"

	rs, err := parseCSV(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"Amount", "Class"}, rs.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if rs.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", rs.Len())
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	content := "a,b\n1\n2,3,4,x\n"

	rs, err := parseCSV(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	want := []entity.Record{
		{"a": 1.0},
		{"a": 2.0, "b": 3.0, entity.ExtraField: []any{4.0, "x"}},
	}
	if diff := cmp.Diff(want, rs.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVRenamesDuplicateFields(t *testing.T) {
	rs, err := parseCSV(context.Background(), []byte("x,x,x,y\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "x_1", "x_2", "y"}, rs.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := rs.Rows[0]["x_2"]; got != 3.0 {
		t.Fatalf("expected x_2=3, got %v", got)
	}
}

func TestParseCSVEmptyInputs(t *testing.T) {
	for name, content := range map[string]string{
		"empty file":  "",
		"header only": "Amount,Class\n",
	} {
		t.Run(name, func(t *testing.T) {
			rs, err := parseCSV(context.Background(), []byte(content))
			if err != nil {
				t.Fatalf("parseCSV: %v", err)
			}
			if rs.Len() != 0 {
				t.Fatalf("expected no rows, got %d", rs.Len())
			}
		})
	}
}

func TestParseCSVMalformedQuote(t *testing.T) {
	_, err := parseCSV(context.Background(), []byte("a,b\n1,\"2\"x\n"))
	if !errors.Is(err, ErrMalformedCSV) {
		t.Fatalf("expected ErrMalformedCSV, got %v", err)
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 2 {
		t.Fatalf("expected error on line 2, got %d", perr.Line)
	}
}

func TestParseCSVHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parseCSV(ctx, []byte(generateCSV(ctxCheckEvery+10)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
