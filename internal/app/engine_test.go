package app_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"directboost/internal/app"
	"directboost/internal/domain"
)

// fixture is a small portfolio: two hotels, two room types, guests spread over months and years.
func fixture() ([]domain.Booking, []domain.ForecastRow, []domain.SegmentConfig) {
	hotels := []string{"City Hotel", "Resort Hotel"}
	rooms := []string{"A", "D"}
	markets := []string{"Direct", "Online TA", "Corporate", "Offline TA/TO"}

	var bookings []domain.Booking
	n := 0
	for g := 0; g < 12; g++ {
		email := fmt.Sprintf("guest%02d@x.io", g)
		for s := 0; s < 3; s++ {
			n++
			opts := []bookingOpt{withCluster(g % 3), withMarket(markets[(g+s)%len(markets)]), withLead((g * 7) % 40)}
			if n%4 != 0 {
				opts = append(opts, withADR(float64(60+n*7%150)))
			}
			if g%5 == 0 {
				opts = append(opts, withRepeat())
			}
			if s%2 == 0 {
				opts = append(opts, withUsed(domain.AllPerks[(g+s)%len(domain.AllPerks)]))
			}
			bookings = append(bookings, booking(fmt.Sprintf("B%03d", n), email,
				hotels[(g+s)%2], rooms[g%2], 2022+s%2, time.Month(1+(g+s)%6), opts...))
		}
	}

	var forecasts []domain.ForecastRow
	id := int64(0)
	for _, h := range hotels {
		for _, r := range rooms {
			for m := time.January; m <= time.June; m++ {
				for _, y := range []int{2025, 2026} {
					id++
					forecasts = append(forecasts, forecast(id, h, r, y, m,
						float64(60+int(m)*4), float64(40+int(id)%35),
						withCost(domain.PerkSpa, 35), withCost(domain.PerkGym, 12),
						withCost(domain.PerkKidsClub, 18), withCost(domain.PerkBarCredit, 25),
						withCost(domain.PerkSwimmingPool, 8), withCost(domain.PerkWorkDesk, 5),
						withCost(domain.PerkMeetingRoom, 40)))
				}
			}
		}
	}

	segments := []domain.SegmentConfig{
		segment(0, "Budget", 0.10, 0.05, 0.0, 0.05, 50, domain.PerkGym, domain.PerkSpa),
		segment(1, "Family", 0.12, 0.08, 0.04, 0.06, 60, domain.PerkKidsClub, domain.PerkSwimmingPool, domain.PerkSpa),
		segment(2, "Business", 0.08, 0.06, 0.02, 0.03, 45, domain.PerkWorkDesk, domain.PerkMeetingRoom, domain.PerkBarCredit),
	}
	return bookings, forecasts, segments
}

func TestGenerate_Deterministic(t *testing.T) {
	b, f, s := fixture()
	first, _, err := app.Generate(b, f, s, app.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b2, f2, s2 := fixture()
	second, _, err := app.Generate(b2, f2, s2, app.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	j1, _ := json.Marshal(first)
	j2, _ := json.Marshal(second)
	if string(j1) != string(j2) {
		t.Fatalf("runs differ")
	}
	if len(first) == 0 {
		t.Fatalf("fixture should produce offers")
	}
}

func TestGenerate_Properties(t *testing.T) {
	bookings, forecasts, segments := fixture()
	offers, st, err := app.Generate(bookings, forecasts, segments, app.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if st.Offers != len(offers) || st.Candidates < len(offers) {
		t.Fatalf("stats %+v for %d offers", st, len(offers))
	}

	byID := map[string]domain.Booking{}
	for _, b := range bookings {
		byID[b.ID] = b
	}
	segByID := domain.NewSegments(segments)
	costs := forecasts[0].Costs // every row lists the same costs

	seen := map[string]bool{}
	for _, o := range offers {
		if seen[o.Email] {
			t.Fatalf("two offers for %s", o.Email)
		}
		seen[o.Email] = true

		if o.DiscountPct < 0 || o.DiscountPct > 100 {
			t.Fatalf("discount out of bounds: %v", o.DiscountPct)
		}
		if (o.DiscountPct > 0) != (o.OfferType == domain.OfferDiscount) {
			t.Fatalf("type %s with discount %v", o.OfferType, o.DiscountPct)
		}

		total := 0.0
		for _, p := range o.Perks {
			perk, err := domain.ParsePerk(p)
			if err != nil {
				t.Fatalf("perk %q: %v", p, err)
			}
			total += costs.Cost(perk)
		}
		seg, _ := segByID.Lookup(o.SegmentID)
		if total > seg.MaxPerkCost {
			t.Fatalf("perk total %v over budget %v", total, seg.MaxPerkCost)
		}

		hist := byID[o.BookingID]
		if o.TargetYear <= hist.ArrivalYear {
			t.Fatalf("target year %d not after stay %d", o.TargetYear, hist.ArrivalYear)
		}
		if m, _ := domain.ParseMonth(o.TargetMonth); m != hist.ArrivalMonth {
			t.Fatalf("target month %s differs from stay month %v", o.TargetMonth, hist.ArrivalMonth)
		}
	}
}

func TestGenerate_RowWithoutHistoryDoesNotFailRun(t *testing.T) {
	bookings := []domain.Booking{booking("B1", "a@x.io", "City Hotel", "A", 2024, time.May)}
	forecasts := []domain.ForecastRow{
		forecast(1, "Resort Hotel", "C", 2025, time.May, 90, 30),
		forecast(2, "City Hotel", "A", 2025, time.May, 80, 60),
	}
	segs := []domain.SegmentConfig{segment(0, "Leisure", 0.1, 0.1, 0.1, 0, 0)}

	offers, st, err := app.Generate(bookings, forecasts, segs, app.Options{})
	if err != nil || len(offers) != 1 {
		t.Fatalf("offers=%d err=%v", len(offers), err)
	}
	if st.Skipped["no_history"] != 1 {
		t.Fatalf("stats %+v", st)
	}
}

func TestGenerate_EmptyIsNotAnError(t *testing.T) {
	offers, _, err := app.Generate(nil, nil, nil, app.Options{})
	if err != nil || len(offers) != 0 {
		t.Fatalf("offers=%v err=%v", offers, err)
	}
}

func TestGenerate_MissingTargetStillOffers(t *testing.T) {
	bookings := []domain.Booking{booking("B1", "a@x.io", "City Hotel", "A", 2024, time.June)}
	row := forecast(1, "City Hotel", "A", 2025, time.June, 0, 0, withCurrent(40))
	row.TargetPct = nil
	segs := []domain.SegmentConfig{segment(0, "Leisure", 0.10, 0.15, 0.20, 0.05, 0)}

	offers, st, err := app.Generate(bookings, []domain.ForecastRow{row}, segs, app.Options{})
	if err != nil || len(offers) != 1 {
		t.Fatalf("offers=%d err=%v stats=%+v", len(offers), err, st)
	}
	// occupancy 40 is low season; no gap means no boost
	if offers[0].DiscountPct != 10 || offers[0].OfferType != domain.OfferDiscount {
		t.Fatalf("offer: %+v", offers[0])
	}
	if len(st.Skipped) != 0 || st.UnknownGap != 1 {
		t.Fatalf("stats %+v", st)
	}
}
