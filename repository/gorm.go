package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sittawut/coverage-admin/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table the service reads or writes, in migration order.
func Models() []any {
	return []any{
		&models.Client{},
		&models.BookingStatus{},
		&models.CoverageType{},
		&models.CoverageConfig{},
		&models.CoverageDetailConfig{},
		&models.Booking{},
		&models.BookingDay{},
		&models.BookingExceptionStatus{},
		&models.BookingException{},
	}
}

// SQLStore talks to Postgres (or SQLite in tests) directly through gorm.
// Booking writes that touch BookingDays run in a single transaction.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSQLStore(db *gorm.DB, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicate(err.Error()):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// decodeInto copies column-keyed fields onto a model through its json tags.
func decodeInto(fields models.Fields, dst any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// columns prepares fields for a map-based UPDATE. JSON columns are encoded
// up front since gorm cannot bind nested maps.
func columns(fields models.Fields) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "full_request" && v != nil {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode full_request: %w", err)
			}
			v = datatypes.JSON(raw)
		}
		out[k] = v
	}
	return out, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}

func (s *SQLStore) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).
		Preload("Bookings").
		Order("companyname ASC").
		Find(&clients).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range clients {
		clients[i].DeriveHasBooking()
	}
	return clients, nil
}

// GetClientByID only matches clients with at least one booking.
func (s *SQLStore) GetClientByID(ctx context.Context, clientID int64) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).
		Preload("Bookings").
		First(&c, "clientid = ?", clientID).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(c.Bookings) == 0 {
		return nil, ErrNotFound
	}
	c.DeriveHasBooking()
	return &c, nil
}

func (s *SQLStore) CreateClient(ctx context.Context, fields models.Fields) (*models.Client, error) {
	var c models.Client
	if err := decodeInto(clientColumns(fields), &c); err != nil {
		return nil, fmt.Errorf("decode client: %w", err)
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&c).Error; err != nil {
		return nil, translate(err)
	}
	c.DeriveHasBooking()
	return &c, nil
}

func (s *SQLStore) UpdateClient(ctx context.Context, clientID int64, fields models.Fields) (*models.Client, error) {
	cols := clientColumns(fields)
	db := s.db.WithContext(ctx)
	if len(cols) > 0 {
		res := db.Model(&models.Client{}).Where("clientid = ?", clientID).Updates(cols)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	var c models.Client
	if err := db.Preload("Bookings").First(&c, "clientid = ?", clientID).Error; err != nil {
		return nil, translate(err)
	}
	c.DeriveHasBooking()
	return &c, nil
}

func (s *SQLStore) bookings(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Client").
		Preload("BookingStatus").
		Preload("CoverageConfig").
		Preload("BookingDays", func(db *gorm.DB) *gorm.DB {
			return db.Order("coverage_day ASC, bookingdayid ASC")
		})
}

func (s *SQLStore) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.bookings(ctx).Order("cover_startdate ASC, bookingid ASC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", translate(err))
	}
	return bookings, nil
}

func (s *SQLStore) GetBookingByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	var b models.Booking
	if err := s.bookings(ctx).First(&b, "bookingid = ?", bookingID).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *SQLStore) ListBookingsByClient(ctx context.Context, clientID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.bookings(ctx).
		Where("clientid = ?", clientID).
		Order("cover_startdate ASC, bookingid ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

func (s *SQLStore) CreateBooking(ctx context.Context, w BookingWrite) (*models.Booking, error) {
	var b models.Booking
	cols, err := columns(w.Fields)
	if err != nil {
		return nil, err
	}
	if err := decodeInto(cols, &b); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&b).Error; err != nil {
			return err
		}
		return insertDays(tx, b.BookingID, w.Days)
	})
	if err != nil {
		s.logger.Warn("create booking rolled back", zap.Error(err))
		return nil, translate(err)
	}
	return &b, nil
}

func (s *SQLStore) UpdateBooking(ctx context.Context, bookingID int64, w BookingWrite) (*models.Booking, error) {
	cols, err := columns(w.Fields)
	if err != nil {
		return nil, err
	}

	var b models.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cols) > 0 {
			res := tx.Model(&models.Booking{}).Where("bookingid = ?", bookingID).Updates(cols)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		if err := tx.First(&b, "bookingid = ?", bookingID).Error; err != nil {
			return err
		}
		if !w.HasDays {
			return nil
		}
		if err := tx.Where("bookingid = ?", bookingID).Delete(&models.BookingDay{}).Error; err != nil {
			return fmt.Errorf("delete booking days: %w", err)
		}
		return insertDays(tx, bookingID, w.Days)
	})
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func insertDays(tx *gorm.DB, bookingID int64, days []models.Fields) error {
	if len(days) == 0 {
		return nil
	}
	rows := make([]models.BookingDay, len(days))
	for i, d := range withBookingID(days, bookingID) {
		if err := decodeInto(d, &rows[i]); err != nil {
			return fmt.Errorf("decode booking day %d: %w", i, err)
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert booking days: %w", err)
	}
	return nil
}

func (s *SQLStore) exceptions(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Booking.Client").
		Preload("Booking.BookingStatus").
		Preload("BookingExceptionStatus")
}

func (s *SQLStore) ListExceptions(ctx context.Context, filter ExceptionFilter) ([]models.BookingException, error) {
	q := s.exceptions(ctx)
	if filter.Resolved != nil {
		q = q.Where("resolved = ?", *filter.Resolved)
	}
	var exceptions []models.BookingException
	if err := q.Order("created_at DESC, exceptionlogid DESC").Find(&exceptions).Error; err != nil {
		return nil, fmt.Errorf("fetch exceptions: %w", translate(err))
	}
	return exceptions, nil
}

func (s *SQLStore) GetExceptionByID(ctx context.Context, exceptionID int64) (*models.BookingException, error) {
	var e models.BookingException
	if err := s.exceptions(ctx).First(&e, "exceptionlogid = ?", exceptionID).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *SQLStore) CreateException(ctx context.Context, fields models.Fields) (*models.BookingException, error) {
	var e models.BookingException
	if err := decodeInto(fields, &e); err != nil {
		return nil, fmt.Errorf("decode exception: %w", err)
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&e).Error; err != nil {
		return nil, translate(err)
	}
	return s.GetExceptionByID(ctx, e.ExceptionLogID)
}

func (s *SQLStore) UpdateException(ctx context.Context, exceptionID int64, fields models.Fields) (*models.BookingException, error) {
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).
			Model(&models.BookingException{}).
			Where("exceptionlogid = ?", exceptionID).
			Updates(map[string]any(fields))
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetExceptionByID(ctx, exceptionID)
}

func (s *SQLStore) ListBookingStatuses(ctx context.Context) ([]models.BookingStatus, error) {
	var statuses []models.BookingStatus
	if err := s.db.WithContext(ctx).Order("bookingstatusid ASC").Find(&statuses).Error; err != nil {
		return nil, translate(err)
	}
	return statuses, nil
}

func (s *SQLStore) ListCoverageConfigs(ctx context.Context) ([]models.CoverageConfig, error) {
	var configs []models.CoverageConfig
	err := s.db.WithContext(ctx).
		Preload("CoverageDetailConfig.CoverageType").
		Order("coverage_name ASC").
		Find(&configs).Error
	if err != nil {
		return nil, translate(err)
	}
	return configs, nil
}

func (s *SQLStore) ListExceptionStatuses(ctx context.Context) ([]models.BookingExceptionStatus, error) {
	var statuses []models.BookingExceptionStatus
	if err := s.db.WithContext(ctx).Order("bookingexceptionstatusid ASC").Find(&statuses).Error; err != nil {
		return nil, translate(err)
	}
	return statuses, nil
}
