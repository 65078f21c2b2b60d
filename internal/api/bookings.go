package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tourism-app/internal/domain"
)

func (c *HTTPClient) CreateBooking(ctx context.Context, input domain.CreateBookingInput) (domain.Booking, error) {
	input.DestinationID = strings.TrimSpace(input.DestinationID)
	input.Date = strings.TrimSpace(input.Date)
	switch {
	case input.DestinationID == "":
		return domain.Booking{}, domain.InvalidInputf("destination id is required")
	case input.Date == "":
		return domain.Booking{}, domain.InvalidInputf("booking date is required")
	case input.NumberOfGuests < 1:
		return domain.Booking{}, domain.InvalidInputf("at least one guest is required")
	}
	var out domain.Booking
	err := c.do(ctx, http.MethodPost, "/bookings", input, &out)
	return out, err
}

func (c *HTTPClient) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Booking{}, domain.InvalidInputf("booking id is required")
	}
	var out domain.Booking
	err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *HTTPClient) CancelBooking(ctx context.Context, id string) (domain.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Booking{}, domain.InvalidInputf("booking id is required")
	}
	var out domain.Booking
	err := c.do(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id)+"/cancel", nil, &out)
	return out, err
}
