package app

import (
	"sort"

	"directboost/internal/domain"
)

// rankLess orders candidates best first:
// gap desc (unknown last), target year asc, target month asc, room-type familiarity desc, ADR desc (present first).
// Changing this order changes which offer a guest receives.
func rankLess(a, b *domain.CandidateOffer) bool {
	if a.GapUnknown != b.GapUnknown {
		return !a.GapUnknown
	}
	if !a.GapUnknown && a.Gap != b.Gap {
		return a.Gap > b.Gap
	}
	if a.TargetYear != b.TargetYear {
		return a.TargetYear < b.TargetYear
	}
	if a.TargetMonth != b.TargetMonth {
		return a.TargetMonth < b.TargetMonth
	}
	if a.RoomTypeStays != b.RoomTypeStays {
		return a.RoomTypeStays > b.RoomTypeStays
	}
	aa, ba := a.Booking.ADR, b.Booking.ADR
	switch {
	case aa != nil && ba != nil:
		return *aa > *ba
	case aa != nil:
		return true
	default:
		return false
	}
}

// Deduplicate keeps the best ranked candidate per guest email, in ranked order.
// The input slice is not reordered.
func Deduplicate(cands []domain.CandidateOffer) []domain.CandidateOffer {
	ranked := make([]domain.CandidateOffer, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool { return rankLess(&ranked[i], &ranked[j]) })

	seen := make(map[string]struct{}, len(ranked))
	out := make([]domain.CandidateOffer, 0, len(ranked))
	for _, c := range ranked {
		if _, dup := seen[c.Booking.Email]; dup {
			continue
		}
		seen[c.Booking.Email] = struct{}{}
		out = append(out, c)
	}
	return out
}

func dropNone(cands []domain.CandidateOffer) []domain.CandidateOffer {
	out := make([]domain.CandidateOffer, 0, len(cands))
	for _, c := range cands {
		if c.Type != domain.OfferNone {
			out = append(out, c)
		}
	}
	return out
}
