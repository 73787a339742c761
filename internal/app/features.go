package app

import (
	"sort"
	"strings"

	"directboost/internal/domain"
)

var priceSensitiveSegments = map[string]struct{}{
	"online ta":     {},
	"offline ta/to": {},
}

const (
	lastMinuteDays = 3
	earlyBirdDays  = 60
)

// AddFeatures returns a copy of bookings with derived signals filled in. It does not
// modify its input.
func AddFeatures(bookings []domain.Booking) []domain.Booking {
	median, hasMedian := medianADR(bookings)

	out := make([]domain.Booking, len(bookings))
	for i, b := range bookings {
		count := b.Amenities.Count()
		_, sensitive := priceSensitiveSegments[strings.ToLower(strings.TrimSpace(b.MarketSegment))]
		b.Features = domain.Features{
			AmenityCount:    count,
			AmenityPrefHigh: count >= 2,
			PriceSensitive:  sensitive,
			LastMinute:      b.LeadTime <= lastMinuteDays,
			EarlyBird:       b.LeadTime >= earlyBirdDays,
			TotalStayLength: b.WeekendNights + b.WeekNights,
			HighSpender:     hasMedian && b.ADR != nil && *b.ADR > median,
		}
		out[i] = b
	}
	return out
}

func medianADR(bookings []domain.Booking) (float64, bool) {
	vals := make([]float64, 0, len(bookings))
	for _, b := range bookings {
		if b.ADR != nil {
			vals = append(vals, *b.ADR)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}
