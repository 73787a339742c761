package app

import (
	"fmt"

	"directboost/internal/domain"
)

// FormatOffers projects deduplicated candidates to the output schema. Any record missing a
// required output field fails the whole batch.
func FormatOffers(cands []domain.CandidateOffer) ([]domain.FinalOffer, error) {
	missing := fieldSet{}
	var firstBad string
	out := make([]domain.FinalOffer, 0, len(cands))
	for _, c := range cands {
		fo := toFinalOffer(c)
		before := len(missing)
		if err := missing.check(&fo); err != nil {
			return nil, fmt.Errorf("validate offer %s: %w", fo.BookingID, err)
		}
		if len(missing) > before && firstBad == "" {
			firstBad = fo.BookingID
		}
		out = append(out, fo)
	}
	if len(missing) > 0 {
		return nil, missing.toError("offers", fmt.Sprintf("first offending booking %q", firstBad))
	}
	return out, nil
}

func toFinalOffer(c domain.CandidateOffer) domain.FinalOffer {
	b := c.Booking
	fo := domain.FinalOffer{
		BookingID:           b.ID,
		GuestID:             b.GuestID,
		Email:               b.Email,
		Name:                b.Name,
		Phone:               b.Phone,
		Hotel:               b.Hotel,
		RoomType:            b.RoomType,
		Meal:                b.Meal,
		Country:             b.Country,
		SegmentID:           b.Cluster,
		TargetMonth:         domain.MonthName(c.TargetMonth),
		TargetYear:          c.TargetYear,
		DiscountPct:         c.DiscountPct,
		OfferType:           c.Type,
		Perks:               make([]string, 0, len(c.Perks)),
		AmenitiesUsedBefore: []string{},
	}
	if c.Segment != nil {
		fo.BusinessLabel = c.Segment.BusinessLabel
	}
	for _, p := range c.Perks {
		fo.Perks = append(fo.Perks, string(p))
	}
	for _, p := range b.Amenities.UsedPerks() {
		fo.AmenitiesUsedBefore = append(fo.AmenitiesUsedBefore, p.HistoryLabel())
	}
	return fo
}
