package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

func TestSummarizeExample(t *testing.T) {
	rs, err := parseCSV(context.Background(), []byte("Amount,Class\n10,0\n20,1\n30,0\n40,1\n"))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	s := summarize(rs, "Class", inferScalar("1"))
	if s.Total != 4 || s.FraudCount != 2 || s.LegitCount != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if got := s.FraudRateText(); got != "50.0000" {
		t.Fatalf("expected 50.0000, got %q", got)
	}
}

func TestSummarizeCountsAddUp(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1234} {
		rs, err := parseCSV(context.Background(), []byte(generateCSV(n)))
		if err != nil {
			t.Fatalf("parseCSV(%d): %v", n, err)
		}

		s := summarize(rs, "Class", 1.0)
		if s.FraudCount+s.LegitCount != s.Total {
			t.Fatalf("n=%d: fraud %d + legit %d != total %d", n, s.FraudCount, s.LegitCount, s.Total)
		}
		if s.Total != n {
			t.Fatalf("n=%d: total %d", n, s.Total)
		}
		if n > 0 {
			want := float64(s.FraudCount) / float64(s.Total) * 100
			if s.FraudRate != want || !s.RateDefined {
				t.Fatalf("n=%d: rate %v, want %v", n, s.FraudRate, want)
			}
		}
	}
}

func TestSummarizeEmptyIsNA(t *testing.T) {
	s := summarize(entity.RecordSet{}, "Class", 1.0)
	if s.RateDefined || s.FraudRate != 0 {
		t.Fatalf("expected undefined rate, got %+v", s)
	}

	html, err := renderOverview(s)
	if err != nil {
		t.Fatalf("renderOverview: %v", err)
	}
	if !strings.Contains(html, "<li><strong>Fraud Rate:</strong> N/A</li>") {
		t.Fatalf("expected N/A in overview:\n%s", html)
	}
}

func TestSummarizeIsStrict(t *testing.T) {
	rs := entity.RecordSet{
		Fields: []string{"Class"},
		Rows: []entity.Record{
			{"Class": 1.0},
			{"Class": "1"},
			{"Class": true},
			{},
			{"Class": nil},
		},
	}

	if got := summarize(rs, "Class", 1.0).FraudCount; got != 1 {
		t.Fatalf("numeric sentinel: expected 1, got %d", got)
	}
	if got := summarize(rs, "Class", true).FraudCount; got != 1 {
		t.Fatalf("bool sentinel: expected 1, got %d", got)
	}
	if got := summarize(rs, "Class", "1").FraudCount; got != 1 {
		t.Fatalf("string sentinel: expected 1, got %d", got)
	}
	if got := summarize(rs, "Class", nil).FraudCount; got != 2 {
		t.Fatalf("nil sentinel: expected missing and null to match, got %d", got)
	}
}

func TestRenderOverview(t *testing.T) {
	html, err := renderOverview(entity.Summary{Total: 3, FraudCount: 1, LegitCount: 2, FraudRate: 100.0 / 3, RateDefined: true})
	if err != nil {
		t.Fatalf("renderOverview: %v", err)
	}

	for _, want := range []string{
		"<li><strong>Total Transactions:</strong> 3</li>",
		"<li><strong>Fraudulent Transactions:</strong> 1</li>",
		"<li><strong>Legitimate Transactions:</strong> 2</li>",
		"<li><strong>Fraud Rate:</strong> 33.3333%</li>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in overview:\n%s", want, html)
		}
	}
}
