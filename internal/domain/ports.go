package domain

import "context"

type UserDirectory interface {
	// ResolveUser maps an email to the internal user id; ErrNotFound when absent.
	ResolveUser(ctx context.Context, email string) (string, error)
}

type BookingStore interface {
	ActiveBookings(ctx context.Context, userID string) ([]RawBooking, error)
}

type ForecastStore interface {
	ActiveForecasts(ctx context.Context, userID string) ([]RawForecast, error)
}

type SegmentStore interface {
	ActiveSegments(ctx context.Context, userID string) ([]RawSegment, error)
}

type OfferStore interface {
	// Write path: deactivate prior active offers and insert the new set atomically.
	ReplaceOffers(ctx context.Context, userID string, offers []FinalOffer) (int, error)

	// Read path
	ListOffers(ctx context.Context, userID string, q OfferQuery) ([]FinalOffer, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// OfferQuery filters active offers by target year and, optionally, target months.
type OfferQuery struct {
	Year   int
	Months []int
}

type MonthSummary struct {
	Month          int     `json:"month"`
	MonthName      string  `json:"month_name"`
	Total          int     `json:"total"`
	Discounts      int     `json:"discounts"`
	Perks          int     `json:"perks"`
	AvgDiscountPct float64 `json:"avg_discount_pct"`
}

type OfferSummary struct {
	Year   int            `json:"year"`
	Months []MonthSummary `json:"months"`
}
