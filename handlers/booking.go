package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/sittawut/coverage-admin/models"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/sittawut/coverage-admin/validation"
	"go.uber.org/zap"
)

type BookingHandler struct {
	store  repository.Store
	logger *zap.Logger
}

func NewBookingHandler(store repository.Store, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		store:  store,
		logger: logger,
	}
}

// GetBookings serves a single booking (?id=), the bookings of one client
// (?clientId=) or every booking.
func (h *BookingHandler) GetBookings(c *gin.Context) {
	ctx := c.Request.Context()

	bookingID, present, ok := queryID(c, "id", "Booking")
	if !ok {
		return
	}
	if present {
		booking, err := h.store.GetBookingByID(ctx, bookingID)
		if err != nil {
			respondError(c, h.logger, err, "Booking not found")
			return
		}
		c.JSON(http.StatusOK, booking)
		return
	}

	clientID, present, ok := queryID(c, "clientId", "Client")
	if !ok {
		return
	}
	var (
		bookings []models.Booking
		err      error
	)
	if present {
		bookings, err = h.store.ListBookingsByClient(ctx, clientID)
	} else {
		bookings, err = h.store.ListBookings(ctx)
	}
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	values, ok := decodeBody(c, h.logger, validation.CreateBooking)
	if !ok {
		return
	}

	w := splitBooking(values)
	stampCreator(c, w.Fields)
	for _, d := range w.Days {
		stampCreator(c, d)
	}

	booking, err := h.store.CreateBooking(c.Request.Context(), w)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	h.logger.Info("booking created",
		zap.Int64("booking_id", booking.BookingID),
		zap.Int("days", len(w.Days)),
	)
	c.JSON(http.StatusOK, booking)
}

// UpdateBooking applies a partial update. A bookingDays list, even an empty
// one, replaces every stored day of the booking.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, ok := requiredID(c, "Booking")
	if !ok {
		return
	}
	values, ok := decodeBody(c, h.logger, validation.UpdateBooking)
	if !ok {
		return
	}

	w := splitBooking(values)
	w.Fields["edited_at"] = time.Now().UTC()
	if actor := middleware.Actor(c); actor != "" {
		w.Fields["edited_by"] = actor
	}
	for _, d := range w.Days {
		stampCreator(c, d)
	}

	booking, err := h.store.UpdateBooking(c.Request.Context(), bookingID, w)
	if err != nil {
		respondError(c, h.logger, err, "Booking not found")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// splitBooking separates the nested day list from the booking columns.
func splitBooking(values validation.Values) repository.BookingWrite {
	w := repository.BookingWrite{Fields: make(models.Fields, len(values))}
	for k, v := range values {
		if k != "bookingDays" {
			w.Fields[k] = v
		}
	}
	raw, ok := values["bookingDays"]
	if !ok {
		return w
	}
	w.HasDays = true
	days, _ := raw.([]validation.Values)
	w.Days = make([]models.Fields, 0, len(days))
	for _, d := range days {
		w.Days = append(w.Days, models.Fields(d))
	}
	return w
}
