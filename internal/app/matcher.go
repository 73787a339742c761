package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"directboost/internal/domain"
)

type stayKey struct {
	hotel string
	room  string
	month time.Month
}

type guestRoomKey struct {
	email string
	room  string
}

// Match pairs every eligible forecast row with the guests who stayed in the same hotel,
// room type and calendar month in a year before the row's target period.
//
// The target period of a row is the earliest (year, month) among all forecast rows for
// the same hotel, room type and month. A row with no matching history yields nothing.
// A row without a gap still matches; it gets no boost and ranks last. Rows with an
// unparseable month are skipped and counted; they never abort the run.
func Match(bookings []domain.Booking, forecasts []domain.ForecastRow, opts Options, st *Stats) []domain.CandidateOffer {
	earliest := make(map[stayKey]int, len(forecasts))
	for _, f := range forecasts {
		if f.Month == 0 {
			continue
		}
		k := stayKey{f.HotelKey, f.RoomType, f.Month}
		if y, ok := earliest[k]; !ok || f.Year < y {
			earliest[k] = f.Year
		}
	}

	stays := make(map[stayKey][]int, len(bookings))
	familiarity := make(map[guestRoomKey]int, len(bookings))
	for i, b := range bookings {
		familiarity[guestRoomKey{b.Email, b.RoomType}]++
		if b.ArrivalMonth == 0 {
			continue
		}
		k := stayKey{b.HotelKey, b.RoomType, b.ArrivalMonth}
		stays[k] = append(stays[k], i)
	}

	var out []domain.CandidateOffer
	for i := range forecasts {
		f := &forecasts[i]
		st.ForecastRows++

		if f.Month == 0 {
			st.skip("bad_month")
			log.Warn().Int64("forecast_id", f.ID).Str("hotel", f.Hotel).Str("room_type", f.RoomType).
				Msg("forecast row skipped: unparseable month")
			continue
		}
		gap, known := f.Gap()
		if !known {
			st.UnknownGap++
			log.Warn().Int64("forecast_id", f.ID).Str("hotel", f.Hotel).Str("room_type", f.RoomType).
				Msg("forecast row has no occupancy gap: missing target or forecast occupancy")
		}
		if opts.FilterCritical && !(known && gap > opts.CriticalGapThreshold) {
			st.RowsFiltered++
			continue
		}

		k := stayKey{f.HotelKey, f.RoomType, f.Month}
		targetYear, ok := earliest[k]
		if !ok {
			st.skip("no_target_period")
			continue
		}
		st.RowsConsidered++

		season := f.Season()
		matched := 0
		for _, bi := range stays[k] {
			b := &bookings[bi]
			if b.ArrivalYear >= targetYear {
				continue
			}
			out = append(out, domain.CandidateOffer{
				Booking:       b,
				Forecast:      f,
				TargetMonth:   f.Month,
				TargetYear:    targetYear,
				Season:        season,
				Gap:           gap,
				GapUnknown:    !known,
				RoomTypeStays: familiarity[guestRoomKey{b.Email, b.RoomType}],
			})
			matched++
		}
		if matched == 0 {
			st.skip("no_history")
			log.Debug().Int64("forecast_id", f.ID).Str("hotel", f.Hotel).Str("room_type", f.RoomType).
				Str("month", f.Month.String()).Int("target_year", targetYear).
				Msg("no past guests for forecast row")
			continue
		}
		st.Candidates += matched
	}
	return out
}
