package entity

import "strconv"

// Summary is the overview computed over the full RecordSet.
//
// RateDefined is false when Total is zero; FraudRate is then 0 and the
// rendered text is "N/A".
type Summary struct {
	Total       int
	FraudCount  int
	LegitCount  int
	FraudRate   float64
	RateDefined bool
}

// FraudRateText renders the fraud rate with 4 decimal digits, without the
// percent sign.
func (s Summary) FraudRateText() string {
	if !s.RateDefined {
		return "N/A"
	}
	return strconv.FormatFloat(s.FraudRate, 'f', 4, 64)
}
