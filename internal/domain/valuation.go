package domain

import "time"

// ValuationHistory maps a day-key ("yyyy-MM-dd") to the total portfolio value of that day.
// There is at most one value per day; writing the same day again overwrites it.
type ValuationHistory map[string]float64

// Clone returns a copy of the history
func (h ValuationHistory) Clone() ValuationHistory {
	cp := make(ValuationHistory, len(h))
	for k, v := range h {
		cp[k] = v
	}
	return cp
}

// ValuePoint is one day of the valuation history, used by chart consumers
type ValuePoint struct {
	Key   string
	Date  time.Time
	Value float64
}

// SeriesSummary describes a valuation series the way a chart header shows it:
// the latest value against the first one, plus the value range.
type SeriesSummary struct {
	Points        int
	FirstKey      string
	LastKey       string
	First         float64
	Last          float64
	Change        float64
	ChangePercent float64 // 0 when First is 0
	Min           float64
	Max           float64
}

// IsUp reports whether the series closed at or above where it opened
func (s SeriesSummary) IsUp() bool {
	return s.Last >= s.First
}
