package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"directboost/internal/app"
	"directboost/internal/domain"
)

func stored(email, month string, typ domain.OfferType, pct float64) domain.FinalOffer {
	return domain.FinalOffer{BookingID: "B-" + email, Email: email, TargetYear: 2025, TargetMonth: month, OfferType: typ, DiscountPct: pct}
}

func queryFixture() (*fakeStore, *jsonCache, *app.OfferQueryService) {
	st := &fakeStore{list: []domain.FinalOffer{
		stored("a@x.io", "July", domain.OfferDiscount, 20),
		stored("b@x.io", "July", domain.OfferDiscount, 17.5),
		stored("c@x.io", "July", domain.OfferPerk, 0),
		stored("d@x.io", "March", domain.OfferDiscount, 8),
	}}
	cache := newJSONCache()
	return st, cache, app.NewOfferQueryService(fakeUsers{"a@x.io": "u1"}, st, cache, time.Minute)
}

func TestListOffers_CacheAside(t *testing.T) {
	st, _, q := queryFixture()
	ctx := context.Background()

	first, err := q.ListOffers(ctx, "a@x.io", 2025, []int{7})
	if err != nil || len(first) != 3 {
		t.Fatalf("first: %d %v", len(first), err)
	}
	second, err := q.ListOffers(ctx, "a@x.io", 2025, []int{7, 7, 13})
	if err != nil || len(second) != 3 {
		t.Fatalf("second: %d %v", len(second), err)
	}
	if st.listed != 1 {
		t.Fatalf("store reads: %d, want 1", st.listed)
	}
}

func TestListOffers_VersionBumpInvalidates(t *testing.T) {
	st, cache, q := queryFixture()
	ctx := context.Background()

	if _, err := q.ListOffers(ctx, "a@x.io", 2025, nil); err != nil {
		t.Fatal(err)
	}
	_ = cache.Set(ctx, "offers:u1:ver", "v2", 0)
	st.list = st.list[:1]

	got, err := q.ListOffers(ctx, "a@x.io", 2025, nil)
	if err != nil || len(got) != 1 || st.listed != 2 {
		t.Fatalf("got %d offers after %d reads, err %v", len(got), st.listed, err)
	}
}

func TestListOffers_UnknownUser(t *testing.T) {
	_, _, q := queryFixture()
	if _, err := q.ListOffers(context.Background(), "zz@x.io", 2025, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestListOffers_WithoutCache(t *testing.T) {
	st, _, _ := queryFixture()
	q := app.NewOfferQueryService(fakeUsers{"a@x.io": "u1"}, st, nil, time.Minute)
	got, err := q.ListOffers(context.Background(), "a@x.io", 2025, []int{3})
	if err != nil || len(got) != 1 || got[0].Email != "d@x.io" {
		t.Fatalf("got %+v err %v", got, err)
	}
}

func TestSummary(t *testing.T) {
	_, _, q := queryFixture()
	sum, err := q.Summary(context.Background(), "a@x.io", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Year != 2025 || len(sum.Months) != 12 {
		t.Fatalf("summary: %+v", sum)
	}
	jul := sum.Months[6]
	if jul.MonthName != "July" || jul.Total != 3 || jul.Discounts != 2 || jul.Perks != 1 {
		t.Fatalf("july: %+v", jul)
	}
	// (20 + 17.5) / 2 = 18.75
	if jul.AvgDiscountPct != 18.8 {
		t.Fatalf("avg: %v", jul.AvgDiscountPct)
	}
	if mar := sum.Months[2]; mar.Total != 1 || mar.AvgDiscountPct != 8 {
		t.Fatalf("march: %+v", mar)
	}
	if jan := sum.Months[0]; jan.Total != 0 || jan.AvgDiscountPct != 0 {
		t.Fatalf("january: %+v", jan)
	}
}
