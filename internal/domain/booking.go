package domain

import "time"

// RawBooking is one booking_history row as read from storage, before validation and coercion.
type RawBooking struct {
	BookingID      *string `json:"booking_id" validate:"required,notblank"`
	GuestID        *string `json:"guest_id"`
	Email          *string `json:"email" validate:"required,notblank"`
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Hotel          *string `json:"hotel" validate:"required,notblank"`
	ArrivalYear    *int    `json:"arrival_date_year" validate:"required"`
	ArrivalMonth   *string `json:"arrival_date_month" validate:"required,notblank"`
	WeekendNights  *int    `json:"stays_in_weekend_nights"`
	WeekNights     *int    `json:"stays_in_week_nights"`
	Adults         *int    `json:"adults"`
	Children       *int    `json:"children"`
	RoomType       *string `json:"reserved_room_type" validate:"required,notblank"`
	Meal           *string `json:"meal"`
	Country        *string `json:"country"`
	ADR            *string `json:"adr"`
	MarketSegment  *string `json:"market_segment" validate:"required,notblank"`
	LeadTime       *int    `json:"lead_time" validate:"required"`
	RepeatedGuest  *bool   `json:"is_repeated_guest"`
	SegmentCluster *int    `json:"segment_cluster" validate:"required"`

	// amenity usage flags; nil when the column is absent
	SpaUsed          *bool `json:"is_spa_used"`
	GymUsed          *bool `json:"is_gym_used"`
	KidsClubUsed     *bool `json:"is_kids_club_used"`
	BarUsed          *bool `json:"is_bar_used"`
	SwimmingPoolUsed *bool `json:"is_swimming_pool_used"`
	WorkDeskUsed     *bool `json:"is_work_desk_used"`
	MeetingRoomUsed  *bool `json:"is_meeting_room_used"`
}

// Booking is a validated, normalized historical stay.
type Booking struct {
	ID            string
	GuestID       string
	Email         string // lowercased, trimmed; dedup key
	Name          string
	Phone         string
	Hotel         string // as loaded, for display
	HotelKey      string // lowercased, trimmed; join key
	ArrivalYear   int
	ArrivalMonth  time.Month // 0 when the month could not be parsed
	WeekendNights int
	WeekNights    int
	Adults        int
	Children      int
	RoomType      string
	Meal          *string
	Country       *string
	ADR           *float64
	MarketSegment string
	LeadTime      int
	Repeat        bool
	Amenities     AmenityUsage
	Cluster       int

	Features Features
}

// Features are derived per-booking signals consumed by the rule engine.
type Features struct {
	AmenityCount    int
	AmenityPrefHigh bool
	PriceSensitive  bool
	LastMinute      bool
	EarlyBird       bool
	TotalStayLength int
	HighSpender     bool
}
