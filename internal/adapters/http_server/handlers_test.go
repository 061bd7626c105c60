package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "roomrate/internal/adapters/http_server"
	"roomrate/internal/domain"
)

type fakePricing struct {
	res domain.PricingResult
	err error
	got domain.PricingRequest
}

func (f *fakePricing) CalculatePrice(_ context.Context, req domain.PricingRequest) (domain.PricingResult, error) {
	f.got = req
	return f.res, f.err
}

func newTestServer(svc *fakePricing) http.Handler {
	srv := httpserver.New(time.Second)
	srv.MountHandlers(&httpserver.Handlers{Pricing: svc})
	return srv.Mux()
}

const validBody = `{
	"hotelId": 1,
	"roomType": "DOUBLE",
	"checkIn": "2026-05-19",
	"checkOut": "2026-05-22",
	"guests": 2,
	"strategy": "MODERATE",
	"currency": "USD"
}`

func postPrice(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/price", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCalculatePriceOK(t *testing.T) {
	svc := &fakePricing{res: domain.PricingResult{
		HotelID: 1, RoomType: domain.RoomDouble, Currency: "USD",
		BasePrice: 280, DynamicPrice: 281.4, TotalPrice: 844.2, Nights: 3,
		Confidence: 100, CacheSource: "calculated",
	}}
	rr := postPrice(t, newTestServer(svc), validBody)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var out domain.PricingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 844.2, out.TotalPrice)
	assert.Equal(t, "calculated", out.CacheSource)

	// the handler forwarded what the client sent
	assert.Equal(t, int64(1), svc.got.HotelID)
	assert.Equal(t, domain.RoomDouble, svc.got.RoomType)
	assert.Equal(t, "USD", svc.got.Currency)
	assert.Equal(t, time.Date(2026, time.May, 19, 0, 0, 0, 0, time.UTC), svc.got.CheckIn)
}

func TestCalculatePriceBadBody(t *testing.T) {
	rr := postPrice(t, newTestServer(&fakePricing{}), "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestCalculatePriceBadDates(t *testing.T) {
	h := newTestServer(&fakePricing{})

	rr := postPrice(t, h, `{"hotelId":1,"roomType":"DOUBLE","checkIn":"19-05-2026","checkOut":"2026-05-22"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postPrice(t, h, `{"hotelId":1,"roomType":"DOUBLE","checkIn":"2026-05-19","checkOut":"never"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculatePriceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidRequest, http.StatusBadRequest},
		{domain.ErrHotelNotFound, http.StatusNotFound},
		{domain.ErrBasePriceUnavailable, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := postPrice(t, newTestServer(&fakePricing{err: tc.err}), validBody)
		assert.Equalf(t, tc.want, rr.Code, "error %v", tc.err)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var p struct {
			Status int    `json:"status"`
			Title  string `json:"title"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
		assert.Equal(t, tc.want, p.Status)
		assert.NotEmpty(t, p.Title)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(&fakePricing{})
	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
