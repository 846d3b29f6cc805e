// Package repository is the persistence gateway: it translates domain reads
// and writes into queries against the relational store and attaches related
// rows through join projections.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sittawut/coverage-admin/models"
)

var (
	// ErrNotFound is returned when a lookup or update targets no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the store reports a unique violation.
	ErrConflict = errors.New("duplicate")
)

// BookingWrite is a booking payload with its day list split out. HasDays is
// true when the caller supplied a day list, even an empty one.
type BookingWrite struct {
	Fields  models.Fields
	Days    []models.Fields
	HasDays bool
}

// ExceptionFilter narrows ListExceptions. A nil Resolved returns every row.
type ExceptionFilter struct {
	Resolved *bool
}

type Store interface {
	Ping(ctx context.Context) error

	ListClients(ctx context.Context) ([]models.Client, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	CreateClient(ctx context.Context, fields models.Fields) (*models.Client, error)
	UpdateClient(ctx context.Context, id int64, fields models.Fields) (*models.Client, error)

	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	ListBookingsByClient(ctx context.Context, clientID int64) ([]models.Booking, error)
	CreateBooking(ctx context.Context, w BookingWrite) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, w BookingWrite) (*models.Booking, error)

	ListExceptions(ctx context.Context, filter ExceptionFilter) ([]models.BookingException, error)
	GetExceptionByID(ctx context.Context, id int64) (*models.BookingException, error)
	CreateException(ctx context.Context, fields models.Fields) (*models.BookingException, error)
	UpdateException(ctx context.Context, id int64, fields models.Fields) (*models.BookingException, error)

	ListBookingStatuses(ctx context.Context) ([]models.BookingStatus, error)
	ListCoverageConfigs(ctx context.Context) ([]models.CoverageConfig, error)
	ListExceptionStatuses(ctx context.Context) ([]models.BookingExceptionStatus, error)
}

// clientColumns strips keys that are derived at read time.
func clientColumns(fields models.Fields) models.Fields {
	out := make(models.Fields, len(fields))
	for k, v := range fields {
		if k == "hasbooking" {
			continue
		}
		out[k] = v
	}
	return out
}

// withBookingID attaches bookingID to every day row and gives all rows the
// same key set, which bulk inserts require.
func withBookingID(days []models.Fields, bookingID int64) []models.Fields {
	keys := map[string]struct{}{}
	for _, d := range days {
		for k := range d {
			keys[k] = struct{}{}
		}
	}
	rows := make([]models.Fields, 0, len(days))
	for _, d := range days {
		row := make(models.Fields, len(keys)+1)
		for k := range keys {
			row[k] = d[k]
		}
		row["bookingid"] = bookingID
		rows = append(rows, row)
	}
	return rows
}

func isDuplicate(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint")
}
