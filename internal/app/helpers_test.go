package app_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"directboost/internal/domain"
)

func ptr[T any](v T) *T { return &v }

type bookingOpt func(*domain.Booking)

func withADR(v float64) bookingOpt   { return func(b *domain.Booking) { b.ADR = &v } }
func withRepeat() bookingOpt         { return func(b *domain.Booking) { b.Repeat = true } }
func withMarket(s string) bookingOpt { return func(b *domain.Booking) { b.MarketSegment = s } }
func withCluster(c int) bookingOpt   { return func(b *domain.Booking) { b.Cluster = c } }
func withLead(d int) bookingOpt      { return func(b *domain.Booking) { b.LeadTime = d } }
func withUsed(ps ...domain.Perk) bookingOpt {
	return func(b *domain.Booking) {
		for _, p := range ps {
			b.Amenities[p] = true
		}
	}
}

func booking(id, email, hotel, room string, year int, month time.Month, opts ...bookingOpt) domain.Booking {
	b := domain.Booking{
		ID:            id,
		Email:         email,
		Hotel:         hotel,
		HotelKey:      normalize(hotel),
		ArrivalYear:   year,
		ArrivalMonth:  month,
		RoomType:      room,
		Meal:          ptr("BB"),
		Country:       ptr("PRT"),
		MarketSegment: "Direct",
		LeadTime:      30,
		Amenities:     domain.AmenityUsage{},
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

type forecastOpt func(*domain.ForecastRow)

func withCost(p domain.Perk, c float64) forecastOpt {
	return func(f *domain.ForecastRow) { f.Costs[p] = c }
}
func withCurrent(v float64) forecastOpt { return func(f *domain.ForecastRow) { f.CurrentPct = &v } }

// forecast builds a row with the given target and forecast occupancy.
func forecast(id int64, hotel, room string, year int, month time.Month, target, fc float64, opts ...forecastOpt) domain.ForecastRow {
	f := domain.ForecastRow{
		ID:          id,
		Hotel:       hotel,
		HotelKey:    normalize(hotel),
		RoomType:    room,
		Month:       month,
		Year:        year,
		TargetPct:   ptr(target),
		ForecastPct: ptr(fc),
		Costs:       domain.PerkCosts{},
	}
	for _, o := range opts {
		o(&f)
	}
	return f
}

func segment(cluster int, label string, low, shoulder, high, boost, maxCost float64, perks ...domain.Perk) domain.SegmentConfig {
	return domain.SegmentConfig{
		ClusterID:      cluster,
		BusinessLabel:  label,
		Baseline:       map[domain.SeasonBand]float64{domain.SeasonLow: low, domain.SeasonShoulder: shoulder, domain.SeasonHigh: high},
		BoostIfHighGap: boost,
		MaxPerkCost:    maxCost,
		PerkPriority:   perks,
	}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ---- fakes ----

// jsonCache stores JSON bytes so any value type round-trips like it would through Redis.
type jsonCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
}

func newJSONCache() *jsonCache { return &jsonCache{store: map[string][]byte{}} }

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = b
	c.sets++
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

type fakeUsers map[string]string

func (f fakeUsers) ResolveUser(ctx context.Context, email string) (string, error) {
	if id, ok := f[email]; ok {
		return id, nil
	}
	return "", domain.ErrNotFound
}

type fakeStore struct {
	bookings  []domain.RawBooking
	forecasts []domain.RawForecast
	segments  []domain.RawSegment
	err       error

	segmentReads int
	replaced     [][]domain.FinalOffer
	listed       int
	list         []domain.FinalOffer
}

func (f *fakeStore) ActiveBookings(ctx context.Context, userID string) ([]domain.RawBooking, error) {
	return f.bookings, f.err
}

func (f *fakeStore) ActiveForecasts(ctx context.Context, userID string) ([]domain.RawForecast, error) {
	return f.forecasts, nil
}

func (f *fakeStore) ActiveSegments(ctx context.Context, userID string) ([]domain.RawSegment, error) {
	f.segmentReads++
	return f.segments, nil
}

func (f *fakeStore) ReplaceOffers(ctx context.Context, userID string, offers []domain.FinalOffer) (int, error) {
	f.replaced = append(f.replaced, offers)
	f.list = offers
	return len(offers), nil
}

func (f *fakeStore) ListOffers(ctx context.Context, userID string, q domain.OfferQuery) ([]domain.FinalOffer, error) {
	f.listed++
	var out []domain.FinalOffer
	for _, o := range f.list {
		if o.TargetYear != q.Year {
			continue
		}
		m, _ := domain.ParseMonth(o.TargetMonth)
		if len(q.Months) > 0 && !containsInt(q.Months, int(m)) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
