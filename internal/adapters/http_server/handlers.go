package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"directboost/internal/app"
	"directboost/internal/domain"
)

type OfferRunner interface {
	Run(ctx context.Context, email string) (app.Result, error)
}

type OfferReader interface {
	ListOffers(ctx context.Context, email string, year int, months []int) ([]domain.FinalOffer, error)
	Summary(ctx context.Context, email string, year int) (domain.OfferSummary, error)
}

type Handlers struct {
	Runner OfferRunner
	Q      OfferReader
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type offersResponse struct {
	Email  string              `json:"email"`
	Year   int                 `json:"year"`
	Months []int               `json:"months,omitempty"`
	Count  int                 `json:"count"`
	Offers []domain.FinalOffer `json:"offers"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/users/{email}/offers:generate", h.generateOffers)
	s.mux.Get("/v1/users/{email}/offers", h.listOffers)
	s.mux.Get("/v1/users/{email}/offers/summary", h.offerSummary)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func emailParam(r *http.Request) (string, bool) {
	e := strings.TrimSpace(chi.URLParam(r, "email"))
	return e, e != "" && strings.Contains(e, "@")
}

func (h *Handlers) generateOffers(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid email", "path must carry the account email")
		return
	}

	res, err := h.Runner.Run(r.Context(), email)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "offer generation did not start or finish in time")
		return
	}

	if res.Status == app.StatusFailed {
		switch {
		case errors.Is(res.Err, domain.ErrNotFound):
			writeProblem(w, http.StatusNotFound, "Not Found", res.Message)
		case domain.IsValidation(res.Err):
			writeProblem(w, http.StatusUnprocessableEntity, "Invalid input data", res.Err.Error())
		default:
			log.Error().Err(res.Err).Str("run_id", res.RunID).Msg("offer generation failed")
			writeProblem(w, http.StatusInternalServerError, "Offer generation failed", "run "+res.RunID)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseYear(r *http.Request) (int, bool) {
	y, err := strconv.Atoi(r.URL.Query().Get("year"))
	return y, err == nil && y >= 1900 && y <= 9999
}

// parseMonths accepts a comma separated list of month numbers or names.
func parseMonths(raw string) ([]int, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	var out []int
	for _, p := range strings.Split(raw, ",") {
		m, ok := domain.ParseMonth(p)
		if !ok {
			return nil, false
		}
		out = append(out, int(m))
	}
	return out, true
}

func (h *Handlers) queryError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no user with this email")
		return
	}
	log.Error().Err(err).Msg("offer query failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "offer query failed")
}

func (h *Handlers) listOffers(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid email", "path must carry the account email")
		return
	}
	year, ok := parseYear(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid year", "year must be a four digit number")
		return
	}
	months, ok := parseMonths(r.URL.Query().Get("months"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid months", "months must be month numbers or names separated by commas")
		return
	}

	offers, err := h.Q.ListOffers(r.Context(), email, year, months)
	if err != nil {
		h.queryError(w, err)
		return
	}
	writeCached(w, r, offersResponse{Email: email, Year: year, Months: months, Count: len(offers), Offers: offers})
}

func (h *Handlers) offerSummary(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid email", "path must carry the account email")
		return
	}
	year, ok := parseYear(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid year", "year must be a four digit number")
		return
	}
	sum, err := h.Q.Summary(r.Context(), email, year)
	if err != nil {
		h.queryError(w, err)
		return
	}
	writeCached(w, r, sum)
}
