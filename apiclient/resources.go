package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sittawut/coverage-admin/models"
)

const (
	KeyBookings          = "bookings"
	KeyClients           = "clients"
	KeyExceptions        = "exceptions"
	KeyBookingStatuses   = "booking-statuses"
	KeyCoverageConfigs   = "coverage-configs"
	KeyExceptionStatuses = "exception-statuses"
)

func BookingKey(id int64) string { return KeyBookings + "/" + itoa(id) }

func ClientBookingsKey(clientID int64) string { return KeyBookings + "/client/" + itoa(clientID) }

func ClientKey(id int64) string { return KeyClients + "/" + itoa(id) }

func ExceptionKey(id int64) string { return KeyExceptions + "/" + itoa(id) }

// ExceptionsKey is the key of an exception list, optionally filtered by
// resolution state.
func ExceptionsKey(resolved *bool) string {
	if resolved == nil {
		return KeyExceptions
	}
	return KeyExceptions + "?resolved=" + strconv.FormatBool(*resolved)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func (c *Client) Login(ctx context.Context, email, password string) error {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return err
	}
	c.SetToken(out.Token)
	return nil
}

func (c *Client) Bookings(ctx context.Context) ([]models.Booking, error) {
	return query[[]models.Booking](ctx, c, KeyBookings, "/api/bookings", nil)
}

func (c *Client) Booking(ctx context.Context, id int64) (*models.Booking, error) {
	return query[*models.Booking](ctx, c, BookingKey(id), "/api/bookings", map[string]string{"id": itoa(id)})
}

func (c *Client) BookingsByClient(ctx context.Context, clientID int64) ([]models.Booking, error) {
	return query[[]models.Booking](ctx, c, ClientBookingsKey(clientID), "/api/bookings", map[string]string{"clientId": itoa(clientID)})
}

func (c *Client) CreateBooking(ctx context.Context, payload any) (*models.Booking, error) {
	return mutate[*models.Booking](ctx, c, http.MethodPost, "/api/bookings", nil, payload, KeyBookings)
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, payload any) (*models.Booking, error) {
	return mutate[*models.Booking](ctx, c, http.MethodPut, "/api/bookings", map[string]string{"id": itoa(id)}, payload,
		KeyBookings, BookingKey(id))
}

func (c *Client) Clients(ctx context.Context) ([]models.Client, error) {
	return query[[]models.Client](ctx, c, KeyClients, "/api/clients", nil)
}

func (c *Client) Client(ctx context.Context, id int64) (*models.Client, error) {
	return query[*models.Client](ctx, c, ClientKey(id), "/api/clients", map[string]string{"id": itoa(id)})
}

func (c *Client) CreateClient(ctx context.Context, payload any) (*models.Client, error) {
	return mutate[*models.Client](ctx, c, http.MethodPost, "/api/clients", nil, payload, KeyClients)
}

func (c *Client) UpdateClient(ctx context.Context, id int64, payload any) (*models.Client, error) {
	return mutate[*models.Client](ctx, c, http.MethodPut, "/api/clients", map[string]string{"id": itoa(id)}, payload, KeyClients)
}

// Exceptions lists exceptions; a nil resolved returns all of them.
func (c *Client) Exceptions(ctx context.Context, resolved *bool) ([]models.BookingException, error) {
	var params map[string]string
	if resolved != nil {
		params = map[string]string{"resolved": strconv.FormatBool(*resolved)}
	}
	return query[[]models.BookingException](ctx, c, ExceptionsKey(resolved), "/api/exceptions", params)
}

func (c *Client) Exception(ctx context.Context, id int64) (*models.BookingException, error) {
	return query[*models.BookingException](ctx, c, ExceptionKey(id), "/api/exceptions", map[string]string{"id": itoa(id)})
}

func (c *Client) CreateException(ctx context.Context, payload any) (*models.BookingException, error) {
	return mutate[*models.BookingException](ctx, c, http.MethodPost, "/api/exceptions", nil, payload, KeyExceptions)
}

func (c *Client) UpdateException(ctx context.Context, id int64, payload any) (*models.BookingException, error) {
	return mutate[*models.BookingException](ctx, c, http.MethodPut, "/api/exceptions", map[string]string{"id": itoa(id)}, payload, KeyExceptions)
}

func (c *Client) BookingStatuses(ctx context.Context) ([]models.BookingStatus, error) {
	return query[[]models.BookingStatus](ctx, c, KeyBookingStatuses, "/api/booking-statuses", nil)
}

func (c *Client) CoverageConfigs(ctx context.Context) ([]models.CoverageConfig, error) {
	return query[[]models.CoverageConfig](ctx, c, KeyCoverageConfigs, "/api/coverage-configs", nil)
}

func (c *Client) ExceptionStatuses(ctx context.Context) ([]models.BookingExceptionStatus, error) {
	return query[[]models.BookingExceptionStatus](ctx, c, KeyExceptionStatuses, "/api/exception-statuses", nil)
}
