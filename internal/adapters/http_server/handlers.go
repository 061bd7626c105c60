package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"roomrate/internal/domain"
)

// PriceService is the slice of the pricing engine the HTTP layer needs.
type PriceService interface {
	CalculatePrice(ctx context.Context, req domain.PricingRequest) (domain.PricingResult, error)
}

type Handlers struct{ Pricing PriceService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/price", h.calculatePrice)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

type priceRequest struct {
	HotelID  int64  `json:"hotelId"`
	RoomType string `json:"roomType"`
	CheckIn  string `json:"checkIn"`  // 2006-01-02
	CheckOut string `json:"checkOut"` // 2006-01-02
	Guests   int    `json:"guests"`
	Strategy string `json:"strategy"`
	Currency string `json:"currency"`
}

func (h *Handlers) calculatePrice(w http.ResponseWriter, r *http.Request) {
	var in priceRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be JSON")
		return
	}
	checkIn, err := time.Parse("2006-01-02", in.CheckIn)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid checkIn", "checkIn must be a 2006-01-02 date")
		return
	}
	checkOut, err := time.Parse("2006-01-02", in.CheckOut)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid checkOut", "checkOut must be a 2006-01-02 date")
		return
	}

	res, err := h.Pricing.CalculatePrice(r.Context(), domain.PricingRequest{
		HotelID:  in.HotelID,
		RoomType: domain.RoomType(in.RoomType),
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   in.Guests,
		Strategy: domain.Strategy(in.Strategy),
		Currency: in.Currency,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	case errors.Is(err, domain.ErrHotelNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	case errors.Is(err, domain.ErrBasePriceUnavailable):
		writeProblem(w, http.StatusUnprocessableEntity, "No base price", "no base price available for this room")
		return
	case err != nil:
		writeProblem(w, http.StatusInternalServerError, "Pricing failed", "unexpected error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("failed to write price response")
	}
}
