package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"directboost/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valStrPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// jsonList encodes a string list, writing [] for nil so the NOT NULL JSON columns always hold an array.
func jsonList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

// Repo implements every storage port on one MySQL database.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ResolveUser(ctx context.Context, email string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, resolveUserSQL, strings.ToLower(strings.TrimSpace(email))).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve user: %w", err)
	}
	return id, nil
}

func (r *Repo) ActiveBookings(ctx context.Context, userID string) ([]domain.RawBooking, error) {
	rows, err := r.db.QueryContext(ctx, activeBookingsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	out := []domain.RawBooking{}
	for rows.Next() {
		var b domain.RawBooking
		// database/sql allocates pointer targets and leaves them nil for NULL columns
		if err := rows.Scan(
			&b.BookingID, &b.GuestID, &b.Email, &b.Name, &b.Phone,
			&b.Hotel, &b.ArrivalYear, &b.ArrivalMonth,
			&b.WeekendNights, &b.WeekNights, &b.Adults, &b.Children,
			&b.RoomType, &b.Meal, &b.Country, &b.ADR,
			&b.MarketSegment, &b.LeadTime, &b.RepeatedGuest, &b.SegmentCluster,
			&b.SpaUsed, &b.GymUsed, &b.KidsClubUsed, &b.BarUsed,
			&b.SwimmingPoolUsed, &b.WorkDeskUsed, &b.MeetingRoomUsed,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ActiveForecasts(ctx context.Context, userID string) ([]domain.RawForecast, error) {
	rows, err := r.db.QueryContext(ctx, activeForecastsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	out := []domain.RawForecast{}
	for rows.Next() {
		var f domain.RawForecast
		if err := rows.Scan(
			&f.ID, &f.Hotel, &f.RoomType, &f.Month, &f.Year,
			&f.TargetPct, &f.ForecastPct, &f.CurrentPct,
			&f.SpaCost, &f.GymCost, &f.KidsCost, &f.BarCost,
			&f.PoolCost, &f.DeskCost, &f.MeetingCost,
		); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repo) ActiveSegments(ctx context.Context, userID string) ([]domain.RawSegment, error) {
	rows, err := r.db.QueryContext(ctx, activeSegmentsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("query segment configs: %w", err)
	}
	defer rows.Close()

	out := []domain.RawSegment{}
	for rows.Next() {
		var s domain.RawSegment
		var baseline, priority []byte
		if err := rows.Scan(&s.ClusterID, &s.BusinessLabel, &baseline, &s.BoostIfHighGap, &s.MaxPerkCost, &priority); err != nil {
			return nil, fmt.Errorf("scan segment config: %w", err)
		}
		if len(baseline) > 0 {
			if err := json.Unmarshal(baseline, &s.Baseline); err != nil {
				return nil, fmt.Errorf("segment config baseline: %w", err)
			}
		}
		if len(priority) > 0 {
			if err := json.Unmarshal(priority, &s.PerkPriority); err != nil {
				return nil, fmt.Errorf("segment config perk_priority: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceOffers deactivates the user's active offers and inserts the new set in one transaction.
func (r *Repo) ReplaceOffers(ctx context.Context, userID string, offers []domain.FinalOffer) (n int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deactivateOffersSQL, userID); err != nil {
		return 0, fmt.Errorf("deactivate offers: %w", err)
	}
	if len(offers) == 0 {
		return 0, tx.Commit()
	}

	for start := 0; start < len(offers); start += insertOffersChunk {
		end := min(start+insertOffersChunk, len(offers))
		if err = insertOffers(ctx, tx, userID, offers[start:end]); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(offers), nil
}

// insertOffers writes one multi-row INSERT; callers keep batches under the placeholder limit.
func insertOffers(ctx context.Context, tx *sql.Tx, userID string, offers []domain.FinalOffer) error {
	values := make([]string, 0, len(offers))
	args := make([]any, 0, len(offers)*insertOfferParams)
	for _, o := range offers {
		m, ok := domain.ParseMonth(o.TargetMonth)
		if !ok {
			return fmt.Errorf("offer %s: bad target month %q", o.BookingID, o.TargetMonth)
		}
		perks, err := jsonList(o.Perks)
		if err != nil {
			return err
		}
		used, err := jsonList(o.AmenitiesUsedBefore)
		if err != nil {
			return err
		}
		values = append(values, insertOfferRow)
		args = append(args,
			uuid.NewString(), userID, o.BookingID, valStr(o.GuestID), o.Email,
			valStr(o.Name), valStr(o.Phone), o.Hotel, o.RoomType,
			valStrPtr(o.Meal), valStrPtr(o.Country),
			o.SegmentID, o.BusinessLabel, o.TargetMonth, int(m), o.TargetYear,
			o.DiscountPct, string(o.OfferType), perks, used,
		)
	}
	if _, err := tx.ExecContext(ctx, insertOffersPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("insert offers: %w", err)
	}
	return nil
}

func (r *Repo) ListOffers(ctx context.Context, userID string, q domain.OfferQuery) ([]domain.FinalOffer, error) {
	query := listOffersBaseSQL
	args := []any{userID, q.Year}
	if len(q.Months) > 0 {
		query += " AND target_month_num IN (?" + strings.Repeat(",?", len(q.Months)-1) + ")"
		for _, m := range q.Months {
			args = append(args, m)
		}
	}
	query += listOffersOrderSQL

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	out := []domain.FinalOffer{}
	for rows.Next() {
		var o domain.FinalOffer
		var guestID, name, phone sql.NullString
		var offerType string
		var perks, used []byte
		if err := rows.Scan(
			&o.BookingID, &guestID, &o.Email, &name, &phone,
			&o.Hotel, &o.RoomType, &o.Meal, &o.Country,
			&o.SegmentID, &o.BusinessLabel, &o.TargetMonth, &o.TargetYear,
			&o.DiscountPct, &offerType, &perks, &used,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		o.GuestID, o.Name, o.Phone = guestID.String, name.String, phone.String
		o.OfferType = domain.OfferType(offerType)
		if err := json.Unmarshal(perks, &o.Perks); err != nil {
			return nil, fmt.Errorf("offer perks: %w", err)
		}
		if err := json.Unmarshal(used, &o.AmenitiesUsedBefore); err != nil {
			return nil, fmt.Errorf("offer amenities: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
