package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	replies  map[string]func(w http.ResponseWriter)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{replies: map[string]func(w http.ResponseWriter){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		reply, ok := api.replies[r.Method+" "+r.URL.Path]
		api.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		reply(w)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) on(method, path string, status int, body any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (a *fakeAPI) count(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, r := range a.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (a *fakeAPI) last() recorded {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[len(a.requests)-1]
}

func TestClient_BookingsCachedUntilMutation(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.on(http.MethodGet, "/api/bookings", http.StatusOK, []map[string]any{
		{"bookingid": 1, "booking_notes": "first", "Client": map[string]any{"companyname": "Acme"}},
	})
	api.on(http.MethodPut, "/api/bookings", http.StatusOK, map[string]any{"bookingid": 1, "booking_notes": "edited"})

	c := New(srv.URL, WithToken("tok"), WithCacheTTL(time.Minute))
	ctx := context.Background()

	bookings, err := c.Bookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "first", bookings[0].BookingNotes)
	assert.Equal(t, "Acme", bookings[0].CompanyName())
	assert.Equal(t, "Bearer tok", api.last().Auth)

	_, err = c.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count(http.MethodGet, "/api/bookings"))

	updated, err := c.UpdateBooking(ctx, 1, map[string]any{"booking_notes": "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.BookingNotes)
	assert.Equal(t, "id=1", api.last().Query)
	assert.JSONEq(t, `{"booking_notes":"edited"}`, api.last().Body)

	_, err = c.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count(http.MethodGet, "/api/bookings"))
}

func TestClient_FailedMutationKeepsCache(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.on(http.MethodGet, "/api/clients", http.StatusOK, []map[string]any{{"clientid": 1, "companyname": "Acme"}})
	api.on(http.MethodPost, "/api/clients", http.StatusConflict, map[string]any{"error": "Resource already exists"})

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Clients(ctx)
	require.NoError(t, err)

	_, err = c.CreateClient(ctx, map[string]any{"companyname": "Acme"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Resource already exists", apiErr.Message)

	_, err = c.Clients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count(http.MethodGet, "/api/clients"))
}

func TestClient_ValidationError(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.on(http.MethodPost, "/api/bookings", http.StatusBadRequest, map[string]any{
		"error": "Validation error",
		"details": []map[string]any{
			{"path": []any{"clientid"}, "code": "required", "message": "Required"},
		},
	})

	c := New(srv.URL)
	_, err := c.CreateBooking(context.Background(), map[string]any{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Validation error", apiErr.Message)
	issues := apiErr.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "clientid", issues[0].PathString())
	assert.Equal(t, "api error 400: Validation error", apiErr.Error())
}

func TestClient_NonJSONError(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL)

	_, err := c.ExceptionStatuses(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Nil(t, apiErr.Issues())

	snap := c.Cache().Snapshot(KeyExceptionStatuses)
	assert.Error(t, snap.Err)
	assert.Nil(t, snap.Data)
}

func TestClient_ExceptionFilterKeys(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.on(http.MethodGet, "/api/exceptions", http.StatusOK, []map[string]any{{"exceptionlogid": 3, "resolved": true}})
	api.on(http.MethodPut, "/api/exceptions", http.StatusOK, map[string]any{"exceptionlogid": 3, "resolved": false})

	c := New(srv.URL)
	ctx := context.Background()
	resolved := true

	_, err := c.Exceptions(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "", api.last().Query)

	rows, err := c.Exceptions(ctx, &resolved)
	require.NoError(t, err)
	assert.Equal(t, "resolved=true", api.last().Query)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsResolved())
	assert.Equal(t, 2, api.count(http.MethodGet, "/api/exceptions"))

	_, err = c.UpdateException(ctx, 3, map[string]any{"resolved": false})
	require.NoError(t, err)

	_, err = c.Exceptions(ctx, &resolved)
	require.NoError(t, err)
	assert.Equal(t, 3, api.count(http.MethodGet, "/api/exceptions"))
}

func TestClient_SingleResources(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.on(http.MethodGet, "/api/bookings", http.StatusOK, map[string]any{"bookingid": 9})
	api.on(http.MethodGet, "/api/clients", http.StatusOK, map[string]any{"clientid": 4, "hasbooking": true})

	c := New(srv.URL)
	ctx := context.Background()

	b, err := c.Booking(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), b.BookingID)
	assert.Equal(t, "id=9", api.last().Query)

	cl, err := c.Client(ctx, 4)
	require.NoError(t, err)
	assert.True(t, cl.HasBooking)

	api.on(http.MethodGet, "/api/bookings", http.StatusOK, []map[string]any{{"bookingid": 9}})
	rows, err := c.BookingsByClient(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "clientId=4", api.last().Query)
}

func TestClient_Login(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.on(http.MethodPost, "/api/auth/login", http.StatusOK, map[string]any{"token": "issued"})
	api.on(http.MethodGet, "/api/booking-statuses", http.StatusOK, []map[string]any{{"bookingstatus_shortdesc": "Confirmed"}})

	c := New(srv.URL)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "staff@example.com", "secret"))
	assert.JSONEq(t, `{"email":"staff@example.com","password":"secret"}`, api.last().Body)

	statuses, err := c.BookingStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Bearer issued", api.last().Auth)
}
