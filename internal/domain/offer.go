package domain

import "time"

type OfferType string

const (
	OfferDiscount OfferType = "Discount"
	OfferPerk     OfferType = "Perk"
	OfferNone     OfferType = "None"
)

// CandidateOffer pairs one booking with one forecast row. Rule fields are filled by the rule engine.
type CandidateOffer struct {
	Booking       *Booking
	Forecast      *ForecastRow
	TargetMonth   time.Month
	TargetYear    int
	Season        SeasonBand
	Gap           float64
	GapUnknown    bool // target or forecast occupancy missing; Gap is 0 and never boosts
	RoomTypeStays int  // guest's past stays in this room type

	Segment     *SegmentConfig
	DiscountPct float64
	Type        OfferType
	Perks       []Perk
	PerkCost    float64
}

// FinalOffer is the one offer kept per guest, shaped for downstream consumers.
type FinalOffer struct {
	BookingID           string    `json:"booking_id" validate:"required,notblank"`
	GuestID             string    `json:"guest_id,omitempty"`
	Email               string    `json:"email" validate:"required,notblank"`
	Name                string    `json:"name,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Hotel               string    `json:"hotel" validate:"required,notblank"`
	RoomType            string    `json:"room_type" validate:"required,notblank"`
	Meal                *string   `json:"meal" validate:"required"`
	Country             *string   `json:"country" validate:"required"`
	SegmentID           int       `json:"segment_id"`
	BusinessLabel       string    `json:"business_label" validate:"required,notblank"`
	TargetMonth         string    `json:"target_month" validate:"required,notblank"`
	TargetYear          int       `json:"target_year" validate:"required"`
	DiscountPct         float64   `json:"discount_pct" validate:"gte=0,lte=100"`
	OfferType           OfferType `json:"offer_type" validate:"required,oneof=Discount Perk"`
	Perks               []string  `json:"perks"`
	AmenitiesUsedBefore []string  `json:"amenities_used_before"`
}
