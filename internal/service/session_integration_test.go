package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourism-app/internal/api"
	"tourism-app/internal/apitest"
	"tourism-app/internal/domain"
	"tourism-app/internal/repository"
)

type liveStack struct {
	srv     *apitest.Server
	client  *api.HTTPClient
	records *repository.SessionRecordStore
	svc     *SessionService
}

func newLiveStack(t *testing.T, kv repository.KeyValueStore, opts SessionOptions) liveStack {
	t.Helper()
	srv := apitest.New(zap.NewNop())
	t.Cleanup(srv.Close)
	if _, err := srv.SeedUser(domain.SignupInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret123",
		Phone:    "+34 600 000 000",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	client := api.NewHTTPClient(srv.URL(), 5*time.Second, zap.NewNop())
	records := repository.NewSessionRecordStore(kv)
	svc := NewSessionService(zap.NewNop(), client, records, opts)
	client.SetTokenSource(svc)
	return liveStack{srv: srv, client: client, records: records, svc: svc}
}

func TestSessionLive_CredentialFollowsState(t *testing.T) {
	st := newLiveStack(t, repository.NewMemoryKeyValueStore(), SessionOptions{})
	ctx := context.Background()
	st.svc.Restore(ctx)

	if _, err := st.client.ListDestinations(ctx); err != nil {
		t.Fatalf("list destinations: %v", err)
	}
	session, err := st.svc.Login(ctx, "Ana@Example.com ", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := st.client.ListBookings(ctx); err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if err := st.svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := st.client.ListBookings(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}

	reqs := st.srv.Requests()
	// destinations, login, bookings, bookings
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requests, got %d: %+v", len(reqs), reqs)
	}
	if reqs[0].Authorization != "" || reqs[1].Authorization != "" {
		t.Fatalf("expected anonymous requests without credential: %+v", reqs[:2])
	}
	if reqs[2].Authorization != "Bearer "+session.Token {
		t.Fatalf("expected bearer token while authenticated, got %q", reqs[2].Authorization)
	}
	if reqs[3].Authorization != "" {
		t.Fatalf("expected no credential after logout, got %q", reqs[3].Authorization)
	}
}

func TestSessionLive_RestoreFromFileAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	st := newLiveStack(t, repository.NewFileKeyValueStore(path), SessionOptions{})
	ctx := context.Background()
	st.svc.Restore(ctx)

	session, err := st.svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	restarted := NewSessionService(zap.NewNop(), st.client, repository.NewSessionRecordStore(repository.NewFileKeyValueStore(path)), SessionOptions{})
	st.client.SetTokenSource(restarted)
	snap := restarted.Restore(ctx)
	if !snap.Authenticated() || snap.Session.Token != session.Token || snap.Session.User.ID != session.User.ID {
		t.Fatalf("expected restored session, got %+v", snap)
	}
	if _, err := st.client.ListFavorites(ctx); err != nil {
		t.Fatalf("authenticated call after restart: %v", err)
	}
}

func TestSessionLive_CorruptFileDoesNotBlockLogin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	st := newLiveStack(t, repository.NewFileKeyValueStore(path), SessionOptions{})
	ctx := context.Background()

	if snap := st.svc.Restore(ctx); snap.State != StateAnonymous {
		t.Fatalf("expected anonymous restore from corrupt file, got %v", snap.State)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected corrupt file cleared on restore, stat err=%v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	session, err := st.svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login over corrupt file: %v", err)
	}

	restarted := NewSessionService(zap.NewNop(), st.client, repository.NewSessionRecordStore(repository.NewFileKeyValueStore(path)), SessionOptions{})
	if snap := restarted.Restore(ctx); !snap.Authenticated() || snap.Session.Token != session.Token {
		t.Fatalf("expected persisted session after login, got %+v", snap)
	}

	if err := st.svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no session file after logout, stat err=%v", err)
	}
}

func TestSessionLive_RemoteLogoutRevokesToken(t *testing.T) {
	st := newLiveStack(t, repository.NewMemoryKeyValueStore(), SessionOptions{RemoteLogout: true})
	ctx := context.Background()
	st.svc.Restore(ctx)

	session, err := st.svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := st.svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	logouts := st.srv.RequestsTo(http.MethodPost, "/auth/logout")
	if len(logouts) != 1 || logouts[0].Authorization != "Bearer "+session.Token {
		t.Fatalf("expected one authenticated remote logout, got %+v", logouts)
	}

	other := api.NewHTTPClient(st.srv.URL(), time.Second, zap.NewNop())
	other.SetTokenSource(staticTokenSource(session.Token))
	if _, err := other.ListBookings(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected revoked token, got %v", err)
	}
}

func TestSessionLive_RemoteLogoutFailureStillClears(t *testing.T) {
	st := newLiveStack(t, repository.NewMemoryKeyValueStore(), SessionOptions{RemoteLogout: true, LogoutTimeout: 50 * time.Millisecond})
	ctx := context.Background()
	st.svc.Restore(ctx)
	if _, err := st.svc.Login(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	st.srv.SetHook(http.MethodPost, "/auth/logout", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
		case <-time.After(time.Second):
		}
		c.AbortWithStatus(http.StatusServiceUnavailable)
	})
	if err := st.svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if st.svc.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", st.svc.State())
	}
	if _, _, err := st.records.Load(ctx); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Fatalf("expected cleared record, got %v", err)
	}
}

func TestSessionLive_SlowLoginSupersededByLogout(t *testing.T) {
	st := newLiveStack(t, repository.NewMemoryKeyValueStore(), SessionOptions{})
	ctx := context.Background()
	st.svc.Restore(ctx)

	entered := make(chan struct{})
	st.srv.SetHook(http.MethodPost, "/auth/login", func(c *gin.Context) {
		close(entered)
		<-c.Request.Context().Done()
		c.Abort()
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := st.svc.Login(ctx, "ana@example.com", "secret123")
		errCh <- err
	}()
	<-entered
	if err := st.svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("login did not return after logout")
	}
	if st.svc.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", st.svc.State())
	}
}

type staticTokenSource string

func (s staticTokenSource) Token() string { return string(s) }
