package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
)

type fakeAPI struct {
	refreshes    atomic.Int32
	taskRequests atomic.Int32
	// validAccess is the only access token /api/tasks accepts.
	validAccess string
	// refreshStatus, when non-zero, makes /api/auth/refresh fail.
	refreshStatus int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		if f.refreshStatus != 0 {
			writeJSON(w, f.refreshStatus, map[string]string{"detail": "Invalid or expired refresh token"})
			return
		}
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "refresh-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid or expired refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, models.AuthTokens{
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
			TokenType:    models.TokenTypeBearer,
		})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.taskRequests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+f.validAccess {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		writeJSON(w, http.StatusOK, []models.Task{{ID: "t1", Title: "Buy milk"}})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenStore) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(zerolog.Nop(), srv.Client(), srv.URL, tokens)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func storeWith(t *testing.T, access, refresh string) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	if err := s.SetTokens(access, refresh); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	return s
}

func TestDoRefreshesOnceAndRetries(t *testing.T) {
	api := &fakeAPI{validAccess: "access-2"}
	store := storeWith(t, "access-1", "refresh-1")
	c := newTestClient(t, api.handler(), store)

	tasks, err := NewTaskService(c).List(context.Background(), TaskQuery{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if got := api.refreshes.Load(); got != 1 {
		t.Fatalf("expected 1 refresh, got %d", got)
	}
	if got := api.taskRequests.Load(); got != 2 {
		t.Fatalf("expected original request plus one retry, got %d", got)
	}
	if got := store.Tokens(); got.AccessToken != "access-2" || got.RefreshToken != "refresh-2" {
		t.Fatalf("tokens not persisted: %+v", got)
	}
}

func TestDoRetriedFailurePropagatesWithoutSecondRefresh(t *testing.T) {
	api := &fakeAPI{validAccess: "never"}
	c := newTestClient(t, api.handler(), storeWith(t, "access-1", "refresh-1"))

	err := c.Do(context.Background(), http.MethodGet, "/api/tasks", nil, nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if apiErr.Detail != "Could not validate credentials" {
		t.Fatalf("unexpected detail %q", apiErr.Detail)
	}
	if got := api.refreshes.Load(); got != 1 {
		t.Fatalf("expected exactly 1 refresh, got %d", got)
	}
	if got := api.taskRequests.Load(); got != 2 {
		t.Fatalf("expected 2 task requests, got %d", got)
	}
}

func TestDoWithoutRefreshTokenReturnsOriginalError(t *testing.T) {
	api := &fakeAPI{validAccess: "access-2"}
	c := newTestClient(t, api.handler(), NewMemoryStore())

	err := c.Do(context.Background(), http.MethodGet, "/api/tasks", nil, nil, nil)
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("missing refresh token must not report an expired session")
	}
	if got := api.refreshes.Load(); got != 0 {
		t.Fatalf("expected no refresh, got %d", got)
	}
}

func TestRefreshFailureClearsTokensAndNotifies(t *testing.T) {
	api := &fakeAPI{validAccess: "access-2", refreshStatus: http.StatusUnauthorized}
	store := storeWith(t, "access-1", "refresh-1")
	c := newTestClient(t, api.handler(), store)

	var expired atomic.Int32
	c.OnSessionExpired(func() { expired.Add(1) })

	err := c.Do(context.Background(), http.MethodGet, "/api/tasks", nil, nil, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if got := store.Tokens(); got.AccessToken != "" || got.RefreshToken != "" {
		t.Fatalf("expected cleared tokens, got %+v", got)
	}
	if got := expired.Load(); got != 1 {
		t.Fatalf("expected hook called once, got %d", got)
	}
	if got := api.taskRequests.Load(); got != 1 {
		t.Fatalf("request must not be retried after failed refresh, got %d", got)
	}
}

func TestConcurrentUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	api := &fakeAPI{validAccess: "access-2"}
	c := newTestClient(t, api.handler(), storeWith(t, "access-1", "refresh-1"))
	tasks := NewTaskService(c)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tasks.List(context.Background(), TaskQuery{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
	}
	if got := api.refreshes.Load(); got != 1 {
		t.Fatalf("expected a single refresh, got %d", got)
	}
}

func TestPublicCallsSkipRefresh(t *testing.T) {
	api := &fakeAPI{validAccess: "access-2"}
	c := newTestClient(t, api.handler(), storeWith(t, "access-1", "refresh-1"))

	_, err := NewAuthService(c).Login(context.Background(), models.UserLogin{Email: "a@b.c", Password: "secret"})
	if ErrorDetail(err) != "Incorrect email or password" {
		t.Fatalf("unexpected login error: %v", err)
	}
	if got := api.refreshes.Load(); got != 0 {
		t.Fatalf("login must not trigger a refresh, got %d", got)
	}
}

func TestAPIErrorDetailFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusNotFound, `{"detail":"Task not found"}`, "Task not found"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"empty body", http.StatusInternalServerError, ``, "request failed with status 500"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			c := newTestClient(t, handler, nil)

			err := c.Do(context.Background(), http.MethodGet, "/anything", nil, nil, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.status || apiErr.Detail != tc.want {
				t.Fatalf("got %d %q, want %d %q", apiErr.Status, apiErr.Detail, tc.status, tc.want)
			}
		})
	}
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	if _, err := New(zerolog.Nop(), nil, "localhost:8000", nil); !errors.Is(err, ErrInvalidBaseURL) {
		t.Fatalf("expected ErrInvalidBaseURL, got %v", err)
	}
}

func TestTaskQueryValues(t *testing.T) {
	completed := false
	q := TaskQuery{
		Priority:  models.PriorityHigh,
		Completed: &completed,
		LabelIDs:  []string{"a", "b"},
		SortBy:    "deadline",
		Order:     "asc",
	}
	got := q.Values().Encode()
	want := "completed=false&labels=a%2Cb&order=asc&priority=High&sort_by=deadline"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if (TaskQuery{}).Values().Encode() != "" {
		t.Fatal("zero query must encode to nothing")
	}
}
