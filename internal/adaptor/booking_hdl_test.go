package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTicketing struct {
	createFn func(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingConfirmation, error)
	cancelFn func(ctx context.Context, userID, bookingID uuid.UUID) (*response.CancellationResult, error)
	listFn   func(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error)
}

func (s *stubTicketing) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingConfirmation, error) {
	return s.createFn(ctx, userID, req)
}

func (s *stubTicketing) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.CancellationResult, error) {
	return s.cancelFn(ctx, userID, bookingID)
}

func (s *stubTicketing) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error) {
	return s.listFn(ctx, userID)
}

func newTestRouter(t *testing.T, pattern, method string, h http.HandlerFunc) *chi.Mux {
	t.Helper()

	router := chi.NewRouter()
	router.Method(method, pattern, h)
	return router
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := utils.SetUserContext(req.Context(), uuid.New(), false)
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()

	var envelope utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestCreateBookingHandler(t *testing.T) {
	service := &stubTicketing{
		createFn: func(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingConfirmation, error) {
			return &response.BookingConfirmation{
				BookingResponse: response.BookingResponse{
					ID:           uuid.NewString(),
					EventID:      req.EventID,
					TicketsCount: req.TicketsCount,
				},
			}, nil
		},
	}
	handler := NewBookingHandler(service, zap.NewNop())

	body := fmt.Sprintf(`{"event_id": %q, "tickets_count": 2}`, uuid.NewString())
	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, authedRequest(http.MethodPost, "/api/bookings", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Status)
}

func TestCreateBookingHandlerRequiresAuth(t *testing.T) {
	handler := NewBookingHandler(&stubTicketing{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingHandlerBadBody(t *testing.T) {
	handler := NewBookingHandler(&stubTicketing{}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, authedRequest(http.MethodPost, "/api/bookings", "{not-json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingHandlerMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"insufficient tickets", fmt.Errorf("%w: 2 remaining", usecase.ErrInsufficientTickets), http.StatusBadRequest},
		{"ticket limit", usecase.ErrTicketLimitExceeded, http.StatusBadRequest},
		{"event missing", usecase.ErrEventNotFound, http.StatusNotFound},
		{"storage busy", fmt.Errorf("%w: transaction failed after 3 attempts", repository.ErrBusy), http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubTicketing{
				createFn: func(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingConfirmation, error) {
					return nil, tc.err
				},
			}
			handler := NewBookingHandler(service, zap.NewNop())

			body := fmt.Sprintf(`{"event_id": %q, "tickets_count": 2}`, uuid.NewString())
			rec := httptest.NewRecorder()
			handler.CreateBooking(rec, authedRequest(http.MethodPost, "/api/bookings", body))

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestCancelBookingHandler(t *testing.T) {
	bookingID := uuid.New()
	service := &stubTicketing{
		cancelFn: func(ctx context.Context, userID, id uuid.UUID) (*response.CancellationResult, error) {
			assert.Equal(t, bookingID, id)
			return &response.CancellationResult{
				BookingID:       id.String(),
				TicketsReturned: 2,
				RefundAmount:    50.0,
			}, nil
		},
	}
	handler := NewBookingHandler(service, zap.NewNop())

	router := newTestRouter(t, "/api/bookings/{id}/cancel", http.MethodPut, handler.CancelBooking)
	req := authedRequest(http.MethodPut, "/api/bookings/"+bookingID.String()+"/cancel", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelBookingHandlerNotOwner(t *testing.T) {
	service := &stubTicketing{
		cancelFn: func(ctx context.Context, userID, id uuid.UUID) (*response.CancellationResult, error) {
			return nil, usecase.ErrNotBookingOwner
		},
	}
	handler := NewBookingHandler(service, zap.NewNop())

	router := newTestRouter(t, "/api/bookings/{id}/cancel", http.MethodPut, handler.CancelBooking)
	req := authedRequest(http.MethodPut, "/api/bookings/"+uuid.NewString()+"/cancel", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUserBookingsHandler(t *testing.T) {
	service := &stubTicketing{
		listFn: func(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error) {
			return []response.BookingResponse{{ID: uuid.NewString(), TicketsCount: 2}}, nil
		},
	}
	handler := NewBookingHandler(service, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.GetUserBookings(rec, authedRequest(http.MethodGet, "/api/user/bookings", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Status)
}
