package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"directboost/internal/domain"
)

/********** tiny helpers **********/

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func normKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// parseNumber coerces "123.5", "8,5" or "62%" to a float. Anything else yields nil.
func parseNumber(p *string) *float64 {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(*p, ",", "."))
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func cost(p *float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return 0
	}
	return *p
}

/********** bookings **********/

// LoadBookings validates the required booking fields and normalizes join keys.
// Missing required fields on any row fail the whole load.
func LoadBookings(raw []domain.RawBooking) ([]domain.Booking, error) {
	missing := fieldSet{}
	for i := range raw {
		if err := missing.check(&raw[i]); err != nil {
			return nil, fmt.Errorf("validate booking %d: %w", i, err)
		}
	}
	if err := missing.toError("bookings", fmt.Sprintf("%d rows", len(raw))); err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(raw))
	for _, r := range raw {
		month, _ := domain.ParseMonth(*r.ArrivalMonth)
		b := domain.Booking{
			ID:            strings.TrimSpace(*r.BookingID),
			GuestID:       strings.TrimSpace(deref(r.GuestID)),
			Email:         normKey(*r.Email),
			Name:          strings.TrimSpace(deref(r.Name)),
			Phone:         strings.TrimSpace(deref(r.Phone)),
			Hotel:         strings.TrimSpace(*r.Hotel),
			HotelKey:      normKey(*r.Hotel),
			ArrivalYear:   *r.ArrivalYear,
			ArrivalMonth:  month,
			WeekendNights: derefInt(r.WeekendNights),
			WeekNights:    derefInt(r.WeekNights),
			Adults:        derefInt(r.Adults),
			Children:      derefInt(r.Children),
			RoomType:      strings.TrimSpace(*r.RoomType),
			Meal:          trimmedPtr(r.Meal),
			Country:       trimmedPtr(r.Country),
			ADR:           parseNumber(r.ADR),
			MarketSegment: strings.TrimSpace(*r.MarketSegment),
			LeadTime:      *r.LeadTime,
			Repeat:        r.RepeatedGuest != nil && *r.RepeatedGuest,
			Amenities:     usageOf(r),
			Cluster:       *r.SegmentCluster,
		}
		out = append(out, b)
	}
	return out, nil
}

func usageOf(r domain.RawBooking) domain.AmenityUsage {
	flags := map[domain.Perk]*bool{
		domain.PerkSpa:          r.SpaUsed,
		domain.PerkGym:          r.GymUsed,
		domain.PerkKidsClub:     r.KidsClubUsed,
		domain.PerkBarCredit:    r.BarUsed,
		domain.PerkSwimmingPool: r.SwimmingPoolUsed,
		domain.PerkWorkDesk:     r.WorkDeskUsed,
		domain.PerkMeetingRoom:  r.MeetingRoomUsed,
	}
	u := domain.AmenityUsage{}
	for p, v := range flags {
		if v != nil && *v {
			u[p] = true
		}
	}
	return u
}

/********** forecasts **********/

// LoadForecasts validates and normalizes forecast rows. Unparseable months and
// percentages are kept (as 0 / nil) so the matcher can skip just that row.
func LoadForecasts(raw []domain.RawForecast) ([]domain.ForecastRow, error) {
	missing := fieldSet{}
	for i := range raw {
		if err := missing.check(&raw[i]); err != nil {
			return nil, fmt.Errorf("validate forecast %d: %w", i, err)
		}
	}
	if err := missing.toError("forecasts", fmt.Sprintf("%d rows", len(raw))); err != nil {
		return nil, err
	}

	out := make([]domain.ForecastRow, 0, len(raw))
	for i, r := range raw {
		id := int64(i + 1)
		if r.ID != nil {
			id = *r.ID
		}
		month, _ := domain.ParseMonth(*r.Month)
		out = append(out, domain.ForecastRow{
			ID:          id,
			Hotel:       strings.TrimSpace(*r.Hotel),
			HotelKey:    normKey(*r.Hotel),
			RoomType:    strings.TrimSpace(*r.RoomType),
			Month:       month,
			Year:        *r.Year,
			TargetPct:   parseNumber(r.TargetPct),
			ForecastPct: parseNumber(r.ForecastPct),
			CurrentPct:  parseNumber(r.CurrentPct),
			Costs: domain.PerkCosts{
				domain.PerkSpa:          cost(r.SpaCost),
				domain.PerkGym:          cost(r.GymCost),
				domain.PerkKidsClub:     cost(r.KidsCost),
				domain.PerkBarCredit:    cost(r.BarCost),
				domain.PerkSwimmingPool: cost(r.PoolCost),
				domain.PerkWorkDesk:     cost(r.DeskCost),
				domain.PerkMeetingRoom:  cost(r.MeetingCost),
			},
		})
	}
	return out, nil
}

/********** segment configs **********/

// LoadSegments turns manager-supplied configs into typed rules. Unknown perks,
// unknown season bands and fractions outside [0,1) are rejected.
func LoadSegments(raw []domain.RawSegment) ([]domain.SegmentConfig, error) {
	missing := fieldSet{}
	for i := range raw {
		if err := missing.check(&raw[i]); err != nil {
			return nil, fmt.Errorf("validate segment %d: %w", i, err)
		}
	}
	if err := missing.toError("segments", ""); err != nil {
		return nil, err
	}

	invalid := fieldSet{}
	var problems []string
	out := make([]domain.SegmentConfig, 0, len(raw))
	for _, r := range raw {
		sc := domain.SegmentConfig{
			ClusterID:     *r.ClusterID,
			BusinessLabel: strings.TrimSpace(*r.BusinessLabel),
			Baseline:      make(map[domain.SeasonBand]float64, len(r.Baseline)),
			MaxPerkCost:   *r.MaxPerkCost,
		}
		for band, v := range r.Baseline {
			b := domain.SeasonBand(normKey(band))
			if !b.Valid() || !isFraction(v) {
				invalid["baseline"] = struct{}{}
				problems = append(problems, fmt.Sprintf("cluster %d baseline %q=%v", sc.ClusterID, band, v))
				continue
			}
			sc.Baseline[b] = v
		}
		if r.BoostIfHighGap != nil {
			if !isFraction(*r.BoostIfHighGap) {
				invalid["boost_if_high_gap"] = struct{}{}
				problems = append(problems, fmt.Sprintf("cluster %d boost=%v", sc.ClusterID, *r.BoostIfHighGap))
			}
			sc.BoostIfHighGap = *r.BoostIfHighGap
		}
		if sc.MaxPerkCost < 0 || math.IsNaN(sc.MaxPerkCost) {
			invalid["max_perk_cost"] = struct{}{}
			problems = append(problems, fmt.Sprintf("cluster %d max_perk_cost=%v", sc.ClusterID, sc.MaxPerkCost))
		}
		seen := map[domain.Perk]bool{}
		for _, name := range r.PerkPriority {
			p, err := domain.ParsePerk(name)
			if err != nil {
				invalid["perk_priority"] = struct{}{}
				problems = append(problems, fmt.Sprintf("cluster %d: %v", sc.ClusterID, err))
				continue
			}
			if !seen[p] {
				seen[p] = true
				sc.PerkPriority = append(sc.PerkPriority, p)
			}
		}
		out = append(out, sc)
	}
	if err := invalid.toError("segments", strings.Join(problems, "; ")); err != nil {
		return nil, err
	}
	return out, nil
}

func isFraction(v float64) bool { return v >= 0 && v < 1 }
