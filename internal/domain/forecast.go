package domain

import "time"

// RawForecast is one financials row as read from storage.
type RawForecast struct {
	ID          *int64   `json:"id"`
	Hotel       *string  `json:"hotel_name" validate:"required,notblank"`
	RoomType    *string  `json:"room_type" validate:"required,notblank"`
	Month       *string  `json:"month" validate:"required,notblank"`
	Year        *int     `json:"year" validate:"required"`
	TargetPct   *string  `json:"target_booking_%"`
	ForecastPct *string  `json:"forecast_booking_%"`
	CurrentPct  *string  `json:"booking_%"`
	SpaCost     *float64 `json:"spa_cost"`
	GymCost     *float64 `json:"gym_cost"`
	KidsCost    *float64 `json:"kids_club_cost"`
	BarCost     *float64 `json:"bar_credit_cost"`
	PoolCost    *float64 `json:"swimming_pool_cost"`
	DeskCost    *float64 `json:"work_desk_cost"`
	MeetingCost *float64 `json:"meeting_room_cost"`
}

// ForecastRow is one hotel × room type × month × year planning record.
type ForecastRow struct {
	ID          int64
	Hotel       string
	HotelKey    string
	RoomType    string
	Month       time.Month // 0 when the month could not be parsed
	Year        int
	TargetPct   *float64
	ForecastPct *float64
	CurrentPct  *float64
	Costs       PerkCosts
}

// Gap is target minus forecast occupancy in percentage points. Negative means overbooked.
func (f ForecastRow) Gap() (float64, bool) {
	if f.TargetPct == nil || f.ForecastPct == nil {
		return 0, false
	}
	return *f.TargetPct - *f.ForecastPct, true
}

// Occupancy prefers the current booking percentage and falls back to the forecast.
func (f ForecastRow) Occupancy() *float64 {
	if f.CurrentPct != nil {
		return f.CurrentPct
	}
	return f.ForecastPct
}

func (f ForecastRow) Season() SeasonBand { return ClassifySeason(f.Occupancy()) }
