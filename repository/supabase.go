package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sittawut/coverage-admin/models"
	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"
)

// Querier is the part of the supabase client the store needs. Both
// *supabase.Client and *postgrest.Client satisfy it.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

const (
	bookingSelect = "*,Client(clientid,companyname),BookingStatus(bookingstatus_shortdesc),CoverageConfig(coverage_name)," +
		"BookingDays(bookingdayid,bookingid,coverage_day,start_time,end_time,created_at)"
	exceptionSelect = "*,Booking(bookingid,clientid,cover_startdate,cover_enddate,primary_contact,primary_email,created_at," +
		"Client(clientid,companyname),BookingStatus(bookingstatusid,bookingstatus_shortdesc))," +
		"BookingExceptionStatus(bookingexceptionstatusid,exception_shortdesc,exception_longdesc)"
	coverageSelect = "*,CoverageDetailConfig(coveragedetail_name,coveragedetail_date,CoverageType(coveragetype_shortdesc))"
)

var (
	ascending  = &postgrest.OrderOpts{Ascending: true}
	descending = &postgrest.OrderOpts{Ascending: false}
	daysOrder  = &postgrest.OrderOpts{Ascending: true, ForeignTable: "BookingDays"}
)

// SupabaseStore talks to the database through PostgREST. PostgREST cannot
// span a transaction over several requests, so multi-table booking writes
// use compensating writes instead.
type SupabaseStore struct {
	db     Querier
	logger *zap.Logger
}

func NewSupabaseStore(db Querier, logger *zap.Logger) *SupabaseStore {
	return &SupabaseStore{db: db, logger: logger}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// execute runs q and decodes the returned rows into dst.
func execute(q *postgrest.FilterBuilder, dst any) error {
	data, _, err := q.Execute()
	if err != nil {
		if isDuplicate(err.Error()) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Ping(ctx context.Context) error {
	var rows []map[string]any
	return execute(s.db.From("Client").Select("clientid", "", false).Limit(1, ""), &rows)
}

func (s *SupabaseStore) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	q := s.db.From("Client").
		Select("*,Booking(bookingid)", "", false).
		Order("companyname", ascending)
	if err := execute(q, &clients); err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].DeriveHasBooking()
	}
	return clients, nil
}

// GetClientByID only matches clients with at least one booking.
func (s *SupabaseStore) GetClientByID(ctx context.Context, clientID int64) (*models.Client, error) {
	var clients []models.Client
	q := s.db.From("Client").
		Select("*,Booking!inner(bookingid)", "", false).
		Eq("clientid", id(clientID))
	if err := execute(q, &clients); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrNotFound
	}
	c := clients[0]
	c.DeriveHasBooking()
	return &c, nil
}

func (s *SupabaseStore) CreateClient(ctx context.Context, fields models.Fields) (*models.Client, error) {
	var created []models.Client
	if err := execute(s.db.From("Client").Insert(clientColumns(fields), false, "", "", ""), &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("insert Client returned no rows")
	}
	c := created[0]
	c.DeriveHasBooking()
	return &c, nil
}

func (s *SupabaseStore) UpdateClient(ctx context.Context, clientID int64, fields models.Fields) (*models.Client, error) {
	cols := clientColumns(fields)
	if len(cols) == 0 {
		return s.readClient(clientID)
	}
	var clients []models.Client
	q := s.db.From("Client").Update(cols, "", "").Eq("clientid", id(clientID))
	if err := execute(q, &clients); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrNotFound
	}
	// Re-read through the join so hasbooking reflects actual bookings.
	var refs []models.BookingRef
	if err := execute(s.db.From("Booking").Select("bookingid", "", false).Eq("clientid", id(clientID)), &refs); err != nil {
		return nil, err
	}
	c := clients[0]
	c.Bookings = refs
	c.DeriveHasBooking()
	return &c, nil
}

// readClient loads one client with its bookings left-joined, so clients
// without bookings are still found.
func (s *SupabaseStore) readClient(clientID int64) (*models.Client, error) {
	var clients []models.Client
	q := s.db.From("Client").Select("*,Booking(bookingid)", "", false).Eq("clientid", id(clientID))
	if err := execute(q, &clients); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrNotFound
	}
	c := clients[0]
	c.DeriveHasBooking()
	return &c, nil
}

func (s *SupabaseStore) bookings() *postgrest.FilterBuilder {
	return s.db.From("Booking").Select(bookingSelect, "", false)
}

func (s *SupabaseStore) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	q := s.bookings().Order("cover_startdate", ascending).Order("coverage_day", daysOrder)
	if err := execute(q, &bookings); err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}
	return bookings, nil
}

func (s *SupabaseStore) GetBookingByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	var bookings []models.Booking
	q := s.bookings().Eq("bookingid", id(bookingID)).Order("coverage_day", daysOrder)
	if err := execute(q, &bookings); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrNotFound
	}
	return &bookings[0], nil
}

func (s *SupabaseStore) ListBookingsByClient(ctx context.Context, clientID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	q := s.bookings().
		Eq("clientid", id(clientID)).
		Order("cover_startdate", ascending).
		Order("coverage_day", daysOrder)
	if err := execute(q, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *SupabaseStore) CreateBooking(ctx context.Context, w BookingWrite) (*models.Booking, error) {
	var created []models.Booking
	if err := execute(s.db.From("Booking").Insert(w.Fields, false, "", "", ""), &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("insert Booking returned no rows")
	}
	booking := created[0]

	if len(w.Days) == 0 {
		return &booking, nil
	}
	days := withBookingID(w.Days, booking.BookingID)
	if err := execute(s.db.From("BookingDays").Insert(days, false, "", "", ""), nil); err != nil {
		// Undo the parent insert so no booking is left without its days.
		if _, _, derr := s.db.From("Booking").Delete("", "").Eq("bookingid", id(booking.BookingID)).Execute(); derr != nil {
			s.logger.Error("rollback of booking insert failed",
				zap.Int64("booking_id", booking.BookingID),
				zap.Error(derr),
			)
		}
		return nil, fmt.Errorf("insert booking days: %w", err)
	}
	return &booking, nil
}

func (s *SupabaseStore) UpdateBooking(ctx context.Context, bookingID int64, w BookingWrite) (*models.Booking, error) {
	var rows []models.Booking
	var q *postgrest.FilterBuilder
	if len(w.Fields) > 0 {
		q = s.db.From("Booking").Update(w.Fields, "", "").Eq("bookingid", id(bookingID))
	} else {
		q = s.db.From("Booking").Select("*", "", false).Eq("bookingid", id(bookingID))
	}
	if err := execute(q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	if w.HasDays {
		if err := s.replaceDays(bookingID, w.Days); err != nil {
			return nil, err
		}
	}
	return &rows[0], nil
}

// replaceDays deletes every day of the booking and inserts days. If the
// insert fails the previous days are written back.
func (s *SupabaseStore) replaceDays(bookingID int64, days []models.Fields) error {
	var previous []models.BookingDay
	if err := execute(s.db.From("BookingDays").Delete("", "").Eq("bookingid", id(bookingID)), &previous); err != nil {
		return fmt.Errorf("delete booking days: %w", err)
	}
	if len(days) == 0 {
		return nil
	}
	if err := execute(s.db.From("BookingDays").Insert(withBookingID(days, bookingID), false, "", "", ""), nil); err != nil {
		if len(previous) > 0 {
			restore := make([]models.Fields, 0, len(previous))
			for _, d := range previous {
				restore = append(restore, models.Fields{
					"coverage_day": d.CoverageDay,
					"start_time":   d.StartTime,
					"end_time":     d.EndTime,
					"created_by":   d.CreatedBy,
				})
			}
			if _, _, rerr := s.db.From("BookingDays").Insert(withBookingID(restore, bookingID), false, "", "", "").Execute(); rerr != nil {
				s.logger.Error("restore of booking days failed",
					zap.Int64("booking_id", bookingID),
					zap.Int("days", len(previous)),
					zap.Error(rerr),
				)
			}
		}
		return fmt.Errorf("insert booking days: %w", err)
	}
	return nil
}

func (s *SupabaseStore) ListExceptions(ctx context.Context, filter ExceptionFilter) ([]models.BookingException, error) {
	q := s.db.From("BookingExceptionLog").Select(exceptionSelect, "", false)
	if filter.Resolved != nil {
		q = q.Eq("resolved", strconv.FormatBool(*filter.Resolved))
	}
	var exceptions []models.BookingException
	if err := execute(q.Order("created_at", descending), &exceptions); err != nil {
		return nil, fmt.Errorf("fetch exceptions: %w", err)
	}
	return exceptions, nil
}

func (s *SupabaseStore) GetExceptionByID(ctx context.Context, exceptionID int64) (*models.BookingException, error) {
	var exceptions []models.BookingException
	q := s.db.From("BookingExceptionLog").Select(exceptionSelect, "", false).Eq("exceptionlogid", id(exceptionID))
	if err := execute(q, &exceptions); err != nil {
		return nil, err
	}
	if len(exceptions) == 0 {
		return nil, ErrNotFound
	}
	return &exceptions[0], nil
}

func (s *SupabaseStore) CreateException(ctx context.Context, fields models.Fields) (*models.BookingException, error) {
	var created []models.BookingException
	if err := execute(s.db.From("BookingExceptionLog").Insert(fields, false, "", "", ""), &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("insert BookingExceptionLog returned no rows")
	}
	return s.GetExceptionByID(ctx, created[0].ExceptionLogID)
}

func (s *SupabaseStore) UpdateException(ctx context.Context, exceptionID int64, fields models.Fields) (*models.BookingException, error) {
	if len(fields) == 0 {
		return s.GetExceptionByID(ctx, exceptionID)
	}
	var updated []models.BookingException
	q := s.db.From("BookingExceptionLog").Update(fields, "", "").Eq("exceptionlogid", id(exceptionID))
	if err := execute(q, &updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return s.GetExceptionByID(ctx, exceptionID)
}

func (s *SupabaseStore) ListBookingStatuses(ctx context.Context) ([]models.BookingStatus, error) {
	var statuses []models.BookingStatus
	q := s.db.From("BookingStatus").Select("*", "", false).Order("bookingstatusid", ascending)
	if err := execute(q, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *SupabaseStore) ListCoverageConfigs(ctx context.Context) ([]models.CoverageConfig, error) {
	var configs []models.CoverageConfig
	q := s.db.From("CoverageConfig").Select(coverageSelect, "", false).Order("coverage_name", ascending)
	if err := execute(q, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func (s *SupabaseStore) ListExceptionStatuses(ctx context.Context) ([]models.BookingExceptionStatus, error) {
	var statuses []models.BookingExceptionStatus
	q := s.db.From("BookingExceptionStatus").Select("*", "", false).Order("bookingexceptionstatusid", ascending)
	if err := execute(q, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
