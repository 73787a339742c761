package httpserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	httpserver "directboost/internal/adapters/http_server"
	"directboost/internal/app"
	"directboost/internal/domain"
)

type fakeRunner struct {
	res app.Result
	err error
	got string
}

func (f *fakeRunner) Run(ctx context.Context, email string) (app.Result, error) {
	f.got = email
	return f.res, f.err
}

type fakeReader struct {
	offers []domain.FinalOffer
	err    error
	year   int
	months []int
}

func (f *fakeReader) ListOffers(ctx context.Context, email string, year int, months []int) ([]domain.FinalOffer, error) {
	f.year, f.months = year, months
	return f.offers, f.err
}

func (f *fakeReader) Summary(ctx context.Context, email string, year int) (domain.OfferSummary, error) {
	if f.err != nil {
		return domain.OfferSummary{}, f.err
	}
	return domain.OfferSummary{Year: year, Months: []domain.MonthSummary{{Month: 7, MonthName: "July", Total: len(f.offers)}}}, nil
}

func newServer(r httpserver.OfferRunner, q httpserver.OfferReader, rps int) http.Handler {
	s := httpserver.New(rps)
	s.MountHandlers(&httpserver.Handlers{Runner: r, Q: q})
	return s.Mux()
}

func do(t *testing.T, h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGenerate_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		res  app.Result
		want int
	}{
		{"generated", app.Result{Status: app.StatusGenerated, Success: true, Inserted: 1,
			Offers: []domain.FinalOffer{{BookingID: "B1"}}}, http.StatusOK},
		{"no offers", app.Result{Status: app.StatusNoOffers, Success: true, Offers: []domain.FinalOffer{}}, http.StatusOK},
		{"unknown user", app.Result{Status: app.StatusFailed, Err: domain.ErrNotFound}, http.StatusNotFound},
		{"validation", app.Result{Status: app.StatusFailed,
			Err: &domain.ValidationError{Stage: "bookings", Fields: []string{"email"}}}, http.StatusUnprocessableEntity},
		{"store failure", app.Result{Status: app.StatusFailed, Err: context.DeadlineExceeded}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fr := &fakeRunner{res: tc.res}
			rr := do(t, newServer(fr, &fakeReader{}, 0), "POST", "/v1/users/a@x.io/offers:generate", nil)
			if rr.Code != tc.want {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tc.want, rr.Body.String())
			}
			if fr.got != "a@x.io" {
				t.Fatalf("runner got email %q", fr.got)
			}
			if tc.want != http.StatusOK && rr.Header().Get("Content-Type") != "application/problem+json" {
				t.Fatalf("expected problem+json, got %q", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestGenerate_BodyCarriesStatus(t *testing.T) {
	fr := &fakeRunner{res: app.Result{Status: app.StatusNoOffers, Success: true, Message: "no offers generated", Offers: []domain.FinalOffer{}}}
	rr := do(t, newServer(fr, &fakeReader{}, 0), "POST", "/v1/users/a@x.io/offers:generate", nil)
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "no_offers" || body["success"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGenerate_RunnerGaveUp(t *testing.T) {
	fr := &fakeRunner{err: context.Canceled}
	rr := do(t, newServer(fr, &fakeReader{}, 0), "POST", "/v1/users/a@x.io/offers:generate", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestListOffers_ParamsAndETag(t *testing.T) {
	q := &fakeReader{offers: []domain.FinalOffer{{BookingID: "B1", TargetMonth: "July", TargetYear: 2025}}}
	h := newServer(&fakeRunner{}, q, 0)

	rr := do(t, h, "GET", "/v1/users/a@x.io/offers?year=2025&months=7,August", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if q.year != 2025 || len(q.months) != 2 || q.months[0] != 7 || q.months[1] != 8 {
		t.Fatalf("query params not passed: year=%d months=%v", q.year, q.months)
	}
	etag := rr.Header().Get("ETag")
	if etag == "" || !strings.Contains(rr.Body.String(), `"count":1`) {
		t.Fatalf("etag=%q body=%s", etag, rr.Body.String())
	}

	rr = do(t, h, "GET", "/v1/users/a@x.io/offers?year=2025&months=7,August", map[string]string{"If-None-Match": etag})
	if rr.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rr.Code)
	}
}

func TestListOffers_BadInput(t *testing.T) {
	h := newServer(&fakeRunner{}, &fakeReader{}, 0)
	for _, target := range []string{
		"/v1/users/a@x.io/offers",
		"/v1/users/a@x.io/offers?year=abc",
		"/v1/users/a@x.io/offers?year=2025&months=13",
		"/v1/users/not-an-email/offers?year=2025",
	} {
		if rr := do(t, h, "GET", target, nil); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d", target, rr.Code)
		}
	}
}

func TestQueries_UnknownUser(t *testing.T) {
	h := newServer(&fakeRunner{}, &fakeReader{err: domain.ErrNotFound}, 0)
	if rr := do(t, h, "GET", "/v1/users/a@x.io/offers?year=2025", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("list status=%d", rr.Code)
	}
	if rr := do(t, h, "GET", "/v1/users/a@x.io/offers/summary?year=2025", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("summary status=%d", rr.Code)
	}
}

func TestSummary_OK(t *testing.T) {
	h := newServer(&fakeRunner{}, &fakeReader{offers: []domain.FinalOffer{{}, {}}}, 0)
	rr := do(t, h, "GET", "/v1/users/a@x.io/offers/summary?year=2025", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"month_name":"July"`) {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	h := newServer(&fakeRunner{}, &fakeReader{}, 1)
	if rr := do(t, h, "GET", "/v1/users/a@x.io/offers?year=2025", nil); rr.Code != http.StatusOK {
		t.Fatalf("first request status=%d", rr.Code)
	}
	rr := do(t, h, "GET", "/v1/users/a@x.io/offers?year=2025", nil)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/healthz", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz must not be limited, got %d", rr.Code)
	}
}
