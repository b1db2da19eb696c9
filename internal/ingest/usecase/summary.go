package usecase

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

var overviewTemplate = template.Must(template.New("overview").Parse(`
<ul>
  <li><strong>Total Transactions:</strong> {{.Total}}</li>
  <li><strong>Fraudulent Transactions:</strong> {{.FraudCount}}</li>
  <li><strong>Legitimate Transactions:</strong> {{.LegitCount}}</li>
  <li><strong>Fraud Rate:</strong> {{.FraudRateText}}{{if .RateDefined}}%{{end}}</li>
</ul>
`))

func summarize(rs entity.RecordSet, labelField string, sentinel any) entity.Summary {
	s := entity.Summary{Total: rs.Len()}
	for _, row := range rs.Rows {
		if sameScalar(row[labelField], sentinel) {
			s.FraudCount++
		}
	}
	s.LegitCount = s.Total - s.FraudCount

	if s.Total > 0 {
		s.FraudRate = float64(s.FraudCount) / float64(s.Total) * 100
		s.RateDefined = true
	}

	return s
}

// sameScalar is strict equality: a number never matches its string form.
func sameScalar(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

func renderOverview(s entity.Summary) (string, error) {
	var buf bytes.Buffer
	if err := overviewTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render overview: %w", err)
	}
	return buf.String(), nil
}
