package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"directboost/internal/adapters/observability"
	"directboost/internal/domain"
)

type Status string

const (
	StatusGenerated Status = "generated"
	StatusNoOffers  Status = "no_offers"
	StatusFailed    Status = "failed"
)

// Result is the tagged outcome of one pipeline run. Failures are reported here, never panicked.
type Result struct {
	Status   Status              `json:"status"`
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	RunID    string              `json:"run_id"`
	UserID   string              `json:"user_id,omitempty"`
	Offers   []domain.FinalOffer `json:"offers"`
	Inserted int                 `json:"inserted"`
	Stats    Stats               `json:"stats"`
	Err      error               `json:"-"`
}

// Stores groups the collaborators a pipeline run reads from and writes to.
type Stores struct {
	Users     domain.UserDirectory
	Bookings  domain.BookingStore
	Forecasts domain.ForecastStore
	Segments  domain.SegmentStore
	Offers    domain.OfferStore
}

type OfferService struct {
	st    Stores
	cache domain.Cache
	opts  Options
}

func NewOfferService(st Stores, cache domain.Cache, opts Options) *OfferService {
	return &OfferService{st: st, cache: cache, opts: opts}
}

// GenerateOffers runs load → features → match → rules → dedup → format → persist for one user.
func (s *OfferService) GenerateOffers(ctx context.Context, email string) Result {
	start := time.Now()
	res := s.run(ctx, email)
	observability.ObservePipeline(string(res.Status), time.Since(start))
	observability.ObserveRowSkips(res.Stats.Skipped)
	observability.ObserveFailure(res.Err)

	ev := log.Info()
	if res.Status == StatusFailed {
		ev = log.Warn().Err(res.Err)
	}
	ev.Str("run_id", res.RunID).
		Str("user_id", res.UserID).
		Str("status", string(res.Status)).
		Int("forecast_rows", res.Stats.ForecastRows).
		Int("candidates", res.Stats.Candidates).
		Int("offers", res.Stats.Offers).
		Int("inserted", res.Inserted).
		Dur("duration", time.Since(start)).
		Msg("offer generation finished")
	return res
}

func (s *OfferService) run(ctx context.Context, email string) Result {
	res := Result{RunID: uuid.NewString(), Offers: []domain.FinalOffer{}}
	fail := func(err error, msg string) Result {
		res.Status, res.Success, res.Err = StatusFailed, false, err
		res.Message = msg + ": " + err.Error()
		return res
	}

	// 1) Resolve user. Unknown email ends the run as NotFound.
	userID, err := s.st.Users.ResolveUser(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res.Status, res.Success, res.Err = StatusFailed, false, err
			res.Message = fmt.Sprintf("no user found with email: %s", email)
			return res
		}
		return fail(err, "resolve user")
	}
	res.UserID = userID

	// 2) Load inputs; structural problems are fatal.
	rawBookings, err := s.st.Bookings.ActiveBookings(ctx, userID)
	if err != nil {
		return fail(err, "read bookings")
	}
	rawForecasts, err := s.st.Forecasts.ActiveForecasts(ctx, userID)
	if err != nil {
		return fail(err, "read forecasts")
	}
	rawSegments, err := s.st.Segments.ActiveSegments(ctx, userID)
	if err != nil {
		return fail(err, "read segment configs")
	}

	bookings, err := LoadBookings(rawBookings)
	if err != nil {
		return fail(err, "load bookings")
	}
	forecasts, err := LoadForecasts(rawForecasts)
	if err != nil {
		return fail(err, "load forecasts")
	}
	segments, err := LoadSegments(rawSegments)
	if err != nil {
		return fail(err, "load segment configs")
	}
	log.Debug().Str("run_id", res.RunID).Str("user_id", userID).
		Int("bookings", len(bookings)).Int("forecasts", len(forecasts)).Int("segments", len(segments)).
		Msg("inputs loaded")

	// 3) Pure core.
	offers, st, err := Generate(bookings, forecasts, segments, s.opts)
	res.Stats = st
	if err != nil {
		return fail(err, "format offers")
	}
	if len(offers) == 0 {
		res.Status, res.Success = StatusNoOffers, true
		res.Message = "no offers generated"
		return res
	}

	// 4) Persist: prior active offers are deactivated by the store.
	n, err := s.st.Offers.ReplaceOffers(ctx, userID, offers)
	if err != nil {
		return fail(err, "persist offers")
	}
	observability.ObserveOffers(offers)
	if s.cache != nil {
		s.invalidateOffers(ctx, userID)
	}

	res.Status, res.Success = StatusGenerated, true
	res.Offers, res.Inserted = offers, n
	res.Message = fmt.Sprintf("%d offers generated", n)
	return res
}

// invalidateOffers bumps the user's listing version so every cached offer view goes stale.
func (s *OfferService) invalidateOffers(ctx context.Context, userID string) {
	if err := s.cache.Set(ctx, offersVersionKey(userID), uuid.NewString(), 0); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("offer cache invalidation failed")
	}
}

func offersVersionKey(userID string) string { return "offers:" + userID + ":ver" }
