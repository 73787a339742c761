package mysql

const resolveUserSQL = `SELECT user_id FROM users WHERE email = ? LIMIT 1`

// Bookings joined with their segment assignment; rows without one come back with a NULL cluster.
const activeBookingsSQL = `
SELECT
  b.booking_id,
  b.guest_id,
  b.email,
  b.name,
  b.phone,
  b.hotel,
  b.arrival_date_year,
  b.arrival_date_month,
  b.stays_in_weekend_nights,
  b.stays_in_week_nights,
  b.adults,
  b.children,
  b.reserved_room_type,
  b.meal,
  b.country,
  b.adr,
  b.market_segment,
  b.lead_time,
  b.is_repeated_guest,
  s.segment_cluster,
  b.is_spa_used,
  b.is_gym_used,
  b.is_kids_club_used,
  b.is_bar_used,
  b.is_swimming_pool_used,
  b.is_work_desk_used,
  b.is_meeting_room_used
FROM booking_history b
LEFT JOIN booking_segments s
  ON s.user_id = b.user_id AND s.booking_id = b.booking_id
WHERE b.user_id = ? AND b.is_active = 1
ORDER BY b.id
`

const activeForecastsSQL = `
SELECT
  id,
  hotel_name,
  room_type,
  month,
  year,
  target_booking_pct,
  forecast_booking_pct,
  booking_pct,
  spa_cost,
  gym_cost,
  kids_club_cost,
  bar_credit_cost,
  swimming_pool_cost,
  work_desk_cost,
  meeting_room_cost
FROM financials
WHERE user_id = ? AND is_active = 1
ORDER BY id
`

// ORDER BY id keeps "first config per cluster wins" stable.
const activeSegmentsSQL = `
SELECT cluster_id, business_label, baseline, boost_if_high_gap, max_perk_cost, perk_priority
FROM segment_configs
WHERE user_id = ? AND is_active = 1
ORDER BY id
`

const deactivateOffersSQL = `UPDATE discount_offers SET is_active = 0 WHERE user_id = ? AND is_active = 1`

const insertOffersPrefix = "INSERT INTO discount_offers\n" +
	"  (id, user_id, booking_id, guest_id, email, name, phone, hotel, room_type, meal, country,\n" +
	"   segment_id, business_label, target_month, target_month_num, target_year, discount_pct,\n" +
	"   offer_type, perks, amenities_used_before)\nVALUES "

const insertOfferRow = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

const (
	insertOfferParams = 20
	// MySQL allows 65535 placeholders per prepared statement
	insertOffersChunk = 500
)

// listOffersBaseSQL is completed by the repo with an optional month filter and the ORDER BY.
const listOffersBaseSQL = `
SELECT
  booking_id,
  guest_id,
  email,
  name,
  phone,
  hotel,
  room_type,
  meal,
  country,
  segment_id,
  business_label,
  target_month,
  target_year,
  discount_pct,
  offer_type,
  perks,
  amenities_used_before
FROM discount_offers
WHERE user_id = ? AND is_active = 1 AND target_year = ?
`

const listOffersOrderSQL = ` ORDER BY target_month_num, email`
