package app

import (
	"math"

	"github.com/rs/zerolog/log"

	"directboost/internal/domain"
)

const (
	highGapThreshold = 10.0 // percentage points; strictly greater triggers the boost
	loyaltyThreshold = 0.05 // discount must be strictly greater to trade off
	loyaltyTradeoff  = 0.02
	guardrailRatio   = 0.8
)

// ApplyRules fills the offer fields of every candidate in place.
func ApplyRules(cands []domain.CandidateOffer, segments domain.Segments, st *Stats) {
	for i := range cands {
		applyRule(&cands[i], segments)
		if cands[i].Type == domain.OfferNone {
			st.NoneOffers++
			st.skip("no_segment")
			log.Debug().Str("booking_id", cands[i].Booking.ID).Int("cluster", cands[i].Booking.Cluster).
				Msg("no segment config for cluster")
		}
	}
}

func applyRule(c *domain.CandidateOffer, segments domain.Segments) {
	b := c.Booking
	seg, ok := segments.Lookup(b.Cluster)
	if !ok {
		c.Segment = nil
		c.Type = domain.OfferNone
		c.DiscountPct = 0
		c.Perks = nil
		c.PerkCost = 0
		return
	}
	c.Segment = &seg

	disc := seg.BaselineFor(c.Season)
	if !c.GapUnknown && c.Gap > highGapThreshold {
		disc += seg.BoostIfHighGap
	}
	if b.Features.PriceSensitive {
		if floor := seg.BaselineFor(domain.SeasonLow); disc < floor {
			disc = floor
		}
	}
	// applied after the floor; the result may drop below it again
	if b.Repeat && disc > loyaltyThreshold {
		disc -= loyaltyTradeoff
	}

	perks, total := choosePerks(b.Amenities, seg, c.Forecast.Costs)

	// ADR × fraction against 80% of the perk total, compared literally (see DESIGN.md).
	if b.ADR != nil && total > 0 && *b.ADR*disc > guardrailRatio*total {
		disc = 0
	}

	disc = math.Min(math.Max(disc, 0), 1)
	c.DiscountPct = math.Round(disc*1000) / 10
	c.Perks = perks
	c.PerkCost = total
	if c.DiscountPct > 0 {
		c.Type = domain.OfferDiscount
	} else {
		c.Type = domain.OfferPerk
	}
}

// choosePerks orders the segment's priority perks with previously used ones first, then
// greedily keeps each perk whose cost still fits the budget.
func choosePerks(used domain.AmenityUsage, seg domain.SegmentConfig, costs domain.PerkCosts) ([]domain.Perk, float64) {
	ordered := make([]domain.Perk, 0, len(seg.PerkPriority))
	for _, p := range seg.PerkPriority {
		if used.Used(p) {
			ordered = append(ordered, p)
		}
	}
	for _, p := range seg.PerkPriority {
		if !used.Used(p) {
			ordered = append(ordered, p)
		}
	}

	chosen := []domain.Perk{}
	total := 0.0
	for _, p := range ordered {
		c := math.Max(costs.Cost(p), 0)
		if total+c <= seg.MaxPerkCost {
			chosen = append(chosen, p)
			total += c
		}
	}
	return chosen, total
}
