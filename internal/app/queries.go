package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"directboost/internal/domain"
)

type OfferQueryService struct {
	users    domain.UserDirectory
	offers   domain.OfferStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewOfferQueryService(u domain.UserDirectory, o domain.OfferStore, c domain.Cache, ttl time.Duration) *OfferQueryService {
	return &OfferQueryService{users: u, offers: o, cache: c, cacheTTL: ttl}
}

// ListOffers returns active offers for a target year, optionally restricted to months (1..12).
// Invalid months are ignored; an empty month list means the whole year.
func (s *OfferQueryService) ListOffers(ctx context.Context, email string, year int, months []int) ([]domain.FinalOffer, error) {
	userID, err := s.users.ResolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	q := domain.OfferQuery{Year: year, Months: normalizeMonths(months)}

	key := s.listKey(ctx, userID, q)
	var out []domain.FinalOffer
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	rows, err := s.offers.ListOffers(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	// copy to avoid aliasing the store's backing array
	out = make([]domain.FinalOffer, len(rows))
	copy(out, rows)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// Summary counts active offers per target month of a year.
func (s *OfferQueryService) Summary(ctx context.Context, email string, year int) (domain.OfferSummary, error) {
	offers, err := s.ListOffers(ctx, email, year, nil)
	if err != nil {
		return domain.OfferSummary{}, err
	}
	return summarize(year, offers), nil
}

func summarize(year int, offers []domain.FinalOffer) domain.OfferSummary {
	sum := domain.OfferSummary{Year: year, Months: make([]domain.MonthSummary, 12)}
	discountTotals := make([]float64, 12)
	for i := range sum.Months {
		m := time.Month(i + 1)
		sum.Months[i] = domain.MonthSummary{Month: int(m), MonthName: m.String()}
	}
	for _, o := range offers {
		m, ok := domain.ParseMonth(o.TargetMonth)
		if !ok {
			continue
		}
		ms := &sum.Months[m-1]
		ms.Total++
		switch o.OfferType {
		case domain.OfferDiscount:
			ms.Discounts++
			discountTotals[m-1] += o.DiscountPct
		case domain.OfferPerk:
			ms.Perks++
		}
	}
	for i := range sum.Months {
		if n := sum.Months[i].Discounts; n > 0 {
			avg := discountTotals[i] / float64(n)
			sum.Months[i].AvgDiscountPct = math.Round(avg*10) / 10
		}
	}
	return sum
}

func normalizeMonths(in []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, m := range in {
		if m >= 1 && m <= 12 && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Ints(out)
	return out
}

func (s *OfferQueryService) listKey(ctx context.Context, userID string, q domain.OfferQuery) string {
	ver := "0"
	if s.cache != nil {
		var v string
		if ok, _ := s.cache.Get(ctx, offersVersionKey(userID), &v); ok && v != "" {
			ver = v
		}
	}
	months := "all"
	if len(q.Months) > 0 {
		parts := make([]string, len(q.Months))
		for i, m := range q.Months {
			parts[i] = strconv.Itoa(m)
		}
		months = strings.Join(parts, ",")
	}
	return fmt.Sprintf("offers:%s:%s:%d:%s", userID, ver, q.Year, months)
}
