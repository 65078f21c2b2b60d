package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourism-app/internal/apitest"
	"tourism-app/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newFakeAPI(t *testing.T) (*apitest.Server, *HTTPClient) {
	t.Helper()
	srv := apitest.New(zap.NewNop())
	t.Cleanup(srv.Close)
	return srv, NewHTTPClient(srv.URL(), 5*time.Second, zap.NewNop())
}

func signup(t *testing.T, c *HTTPClient) domain.AuthResponse {
	t.Helper()
	out, err := c.Signup(context.Background(), domain.SignupInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret123",
		Phone:    "+34 600 000 000",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return out
}

func TestHTTPClient_NoAuthorizationWithoutToken(t *testing.T) {
	srv, c := newFakeAPI(t)

	if _, err := c.ListDestinations(context.Background()); err != nil {
		t.Fatalf("list destinations: %v", err)
	}
	c.SetTokenSource(staticToken("  "))
	if _, err := c.ListDestinations(context.Background()); err != nil {
		t.Fatalf("list destinations: %v", err)
	}

	reqs := srv.RequestsTo(http.MethodGet, "/destinations")
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	for _, r := range reqs {
		if r.Authorization != "" {
			t.Fatalf("expected no Authorization header, got %q", r.Authorization)
		}
	}
}

func TestHTTPClient_SendsBearerAndRequestID(t *testing.T) {
	srv, c := newFakeAPI(t)
	auth := signup(t, c)
	c.SetTokenSource(staticToken(auth.Token))

	if _, err := c.ListBookings(context.Background()); err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if _, err := c.ListBookings(context.Background()); err != nil {
		t.Fatalf("list bookings: %v", err)
	}

	reqs := srv.RequestsTo(http.MethodGet, "/bookings")
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	for _, r := range reqs {
		if r.Authorization != "Bearer "+auth.Token {
			t.Fatalf("unexpected Authorization header %q", r.Authorization)
		}
		if _, err := uuid.Parse(r.RequestID); err != nil {
			t.Fatalf("expected uuid request id, got %q", r.RequestID)
		}
	}
	if reqs[0].RequestID == reqs[1].RequestID {
		t.Fatalf("expected distinct request ids")
	}
}

func TestHTTPClient_LoginInvalidCredentials(t *testing.T) {
	_, c := newFakeAPI(t)
	signup(t, c)

	_, err := c.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "invalid credentials" {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
	if UserMessage(err) != "invalid credentials" {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestHTTPClient_ErrorKinds(t *testing.T) {
	srv, c := newFakeAPI(t)
	auth := signup(t, c)

	_, err := c.Signup(context.Background(), domain.SignupInput{
		Name: "Ana", Email: "ana@example.com", Password: "x", Phone: "1",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if _, err := c.GetDestination(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := c.ListFavorites(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without token, got %v", err)
	}

	c.SetTokenSource(staticToken(auth.Token))
	srv.SetHook(http.MethodGet, "/users/favorites", func(ctx *gin.Context) {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "database down"})
	})
	_, err = c.ListFavorites(context.Background())
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if UserMessage(err) != "database down" {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestHTTPClient_DecodeFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second, zap.NewNop())
	_, err := c.GetDestination(context.Background(), "d1")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestHTTPClient_TransportFailureIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, 50*time.Millisecond, zap.NewNop())
	_, err := c.ListDestinations(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestHTTPClient_ClosedServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewHTTPClient(url, time.Second, zap.NewNop())
	err := c.ForgotPassword(context.Background(), "ana@example.com")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if UserMessage(err) != "could not reach the server" {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListDestinations(ctx)
	if !errors.Is(err, ErrTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected transport error wrapping context.Canceled, got %v", err)
	}
}

func TestHTTPClient_ValidationSkipsNetwork(t *testing.T) {
	srv, c := newFakeAPI(t)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
	}{
		{"empty destination id", func() error { _, err := c.GetDestination(ctx, " "); return err }},
		{"empty category", func() error { _, err := c.ListDestinationsByCategory(ctx, ""); return err }},
		{"booking without guests", func() error {
			_, err := c.CreateBooking(ctx, domain.CreateBookingInput{DestinationID: "dest-kyoto", Date: "2026-12-01"})
			return err
		}},
		{"booking without date", func() error {
			_, err := c.CreateBooking(ctx, domain.CreateBookingInput{DestinationID: "dest-kyoto", NumberOfGuests: 1})
			return err
		}},
		{"rating out of range", func() error {
			_, err := c.CreateReview(ctx, domain.CreateReviewInput{DestinationID: "dest-kyoto", Rating: 6})
			return err
		}},
		{"empty profile update", func() error { _, err := c.UpdateProfile(ctx, domain.ProfileUpdate{}); return err }},
		{"empty settings update", func() error { _, err := c.UpdateSettings(ctx, domain.SettingsUpdate{}); return err }},
		{"empty favorite id", func() error { return c.AddFavorite(ctx, "") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
}

func TestHTTPClient_EscapesPathAndQuery(t *testing.T) {
	srv, c := newFakeAPI(t)

	got, err := c.SearchDestinations(context.Background(), "lisbon & more")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
	got, err = c.SearchDestinations(context.Background(), "Peru")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "dest-cusco" {
		t.Fatalf("unexpected search result: %+v", got)
	}

	reqs := srv.RequestsTo(http.MethodGet, "/destinations/search")
	if len(reqs) != 2 || reqs[0].RawQuery != "q=lisbon+%26+more" {
		t.Fatalf("unexpected recorded query: %+v", reqs)
	}

	if _, err := c.GetDestination(context.Background(), "a/b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for escaped id, got %v", err)
	}
}

func TestHTTPClient_DestinationsByCategory(t *testing.T) {
	_, c := newFakeAPI(t)
	got, err := c.ListDestinationsByCategory(context.Background(), "culture")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(got) != 1 || got[0].ID != "dest-kyoto" {
		t.Fatalf("unexpected destinations: %+v", got)
	}
	if got[0].Location.Country != "Japan" || len(got[0].Images) != 1 {
		t.Fatalf("expected nested fields to decode, got %+v", got[0])
	}
}

func TestHTTPClient_BookingsReviewsAndFavorites(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()
	auth := signup(t, c)
	c.SetTokenSource(staticToken(auth.Token))

	booking, err := c.CreateBooking(ctx, domain.CreateBookingInput{
		DestinationID: "dest-kyoto", Date: "2026-12-01", NumberOfGuests: 3,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.TotalPrice != 540 {
		t.Fatalf("unexpected total price %v", booking.TotalPrice)
	}
	cancelled, err := c.CancelBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancelled.Status != domain.BookingCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	fetched, err := c.GetBooking(ctx, booking.ID)
	if err != nil || fetched.Status != domain.BookingCancelled {
		t.Fatalf("get booking: %+v %v", fetched, err)
	}

	review, err := c.CreateReview(ctx, domain.CreateReviewInput{
		DestinationID: "dest-kyoto", Rating: 5, Title: "Great", Content: "Loved it",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.UserID != auth.User.ID || review.CreatedAt.IsZero() {
		t.Fatalf("unexpected review: %+v", review)
	}
	mine, err := c.ListUserReviews(ctx)
	if err != nil || len(mine) != 1 {
		t.Fatalf("user reviews: %+v %v", mine, err)
	}
	byDest, err := c.ListDestinationReviews(ctx, "dest-kyoto")
	if err != nil || len(byDest) != 1 {
		t.Fatalf("destination reviews: %+v %v", byDest, err)
	}

	if err := c.AddFavorite(ctx, "dest-lisbon"); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	favs, err := c.ListFavorites(ctx)
	if err != nil || len(favs) != 1 || favs[0].ID != "dest-lisbon" {
		t.Fatalf("favorites: %+v %v", favs, err)
	}
	if err := c.RemoveFavorite(ctx, "dest-lisbon"); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favs, err = c.ListFavorites(ctx)
	if err != nil || len(favs) != 0 {
		t.Fatalf("expected empty favorites: %+v %v", favs, err)
	}
}

func TestHTTPClient_ProfileAndSettings(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()
	auth := signup(t, c)
	c.SetTokenSource(staticToken(auth.Token))

	name := "Ana Maria"
	user, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.Name != name || user.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	dark := true
	settings, err := c.UpdateSettings(ctx, domain.SettingsUpdate{DarkMode: &dark})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if !settings.DarkMode || !settings.Notifications {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestHTTPClient_LogoutRevokesRemoteSession(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()
	auth := signup(t, c)
	c.SetTokenSource(staticToken(auth.Token))

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.ListBookings(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestHTTPClient_PasswordReset(t *testing.T) {
	srv, c := newFakeAPI(t)
	ctx := context.Background()
	signup(t, c)

	if err := c.ForgotPassword(ctx, "ana@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	token := srv.ResetTokenFor("ana@example.com")
	if err := c.ResetPassword(ctx, token, "changed"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := c.Login(ctx, "ana@example.com", "changed"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := c.ResetPassword(ctx, "bogus", "changed"); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote for invalid token, got %v", err)
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Method: http.MethodGet, Path: "/bookings", StatusCode: 404, Kind: ErrNotFound, Message: "booking not found"}
	want := "GET /bookings: not found (status 404): booking not found"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}

	wrapped := fmt.Errorf("load: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to match kind")
	}
	if !strings.Contains(UserMessage(errors.New("plain")), "plain") {
		t.Fatalf("expected plain errors to pass through")
	}
}
