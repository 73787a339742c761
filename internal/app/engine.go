package app

import (
	"directboost/internal/domain"
)

// Options are the engine knobs that are not part of a segment's business rules.
type Options struct {
	// FilterCritical restricts matching to forecast rows whose gap exceeds CriticalGapThreshold.
	FilterCritical       bool
	CriticalGapThreshold float64
}

// Stats counts what happened to rows during one run.
type Stats struct {
	ForecastRows   int            `json:"forecast_rows"`
	RowsConsidered int            `json:"rows_considered"`
	RowsFiltered   int            `json:"rows_filtered"`
	UnknownGap     int            `json:"unknown_gap"`
	Skipped        map[string]int `json:"skipped,omitempty"`
	Candidates     int            `json:"candidates"`
	NoneOffers     int            `json:"none_offers"`
	Offers         int            `json:"offers"`
}

func (s *Stats) skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = map[string]int{}
	}
	s.Skipped[reason]++
}

// Generate runs feature extraction, matching, rules, deduplication and formatting over
// already loaded inputs. It is deterministic for identical inputs.
func Generate(bookings []domain.Booking, forecasts []domain.ForecastRow, segments []domain.SegmentConfig, opts Options) ([]domain.FinalOffer, Stats, error) {
	var st Stats
	enriched := AddFeatures(bookings)
	cands := Match(enriched, forecasts, opts, &st)
	ApplyRules(cands, domain.NewSegments(segments), &st)
	best := Deduplicate(dropNone(cands))
	offers, err := FormatOffers(best)
	if err != nil {
		return nil, st, err
	}
	st.Offers = len(offers)
	return offers, st, nil
}
