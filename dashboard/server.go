// Package dashboard serves the staff admin UI: server-rendered tables with
// search, filters, sorting, pagination, detail dialogs and xlsx export over
// data read through the cached API client.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/apiclient"
	"github.com/sittawut/coverage-admin/models"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// API is the data the dashboard reads and writes. *apiclient.Client
// implements it.
type API interface {
	Bookings(ctx context.Context) ([]models.Booking, error)
	BookingsByClient(ctx context.Context, clientID int64) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, payload any) (*models.Booking, error)
	Clients(ctx context.Context) ([]models.Client, error)
	Exceptions(ctx context.Context, resolved *bool) ([]models.BookingException, error)
	UpdateException(ctx context.Context, id int64, payload any) (*models.BookingException, error)
	BookingStatuses(ctx context.Context) ([]models.BookingStatus, error)
}

var _ API = (*apiclient.Client)(nil)

type Server struct {
	api        API
	logger     *zap.Logger
	now        func() time.Time
	bookings   *Table[models.Booking]
	clients    *Table[models.Client]
	exceptions *Table[models.BookingException]
}

func NewServer(api API, logger *zap.Logger) *Server {
	s := &Server{
		api:      api,
		logger:   logger,
		now:      time.Now,
		bookings: BookingTable(),
		clients:  ClientTable(),
	}
	s.exceptions = ExceptionTable(func() time.Time { return s.now() })
	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// Router builds the dashboard engine with middleware applied after recovery.
func (s *Server) Router(middleware ...gin.HandlerFunc) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	router.SetHTMLTemplate(tmpl)

	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/bookings") })

	router.GET("/bookings", s.bookingsPage)
	router.GET("/bookings/export", s.exportBookings)
	router.POST("/bookings/:id", s.updateBooking)

	router.GET("/clients", s.clientsPage)
	router.GET("/clients/export", s.exportClients)

	router.GET("/exceptions", s.exceptionsPage)
	router.GET("/exceptions/export", s.exportExceptions)
	router.POST("/exceptions/:id/resolve", s.resolveException)
	return router, nil
}

func (s *Server) render(c *gin.Context, status int, v listView) {
	c.HTML(status, "list.html", v)
}

// loadFailed renders the banner for a failed read. The rest of the page
// still renders so filters stay usable.
func (s *Server) loadFailed(c *gin.Context, v listView, what string, err error) {
	s.logger.Warn("dashboard read failed", zap.String("view", v.Kind), zap.Error(err))
	v.LoadError = "Failed to load " + what + ". Please try again later."
	s.render(c, http.StatusBadGateway, v)
}

type bookingDialog struct {
	Booking  models.Booking
	StatusID int64
	Statuses []models.BookingStatus
}

func (s *Server) bookingsView(ctx context.Context, st State) (listView, error) {
	rows, err := s.api.Bookings(ctx)
	v := buildList(s.bookings, "bookings", "Bookings", "/bookings", rows, st)
	if err != nil {
		return v, err
	}
	if st.Selected > 0 {
		if b, ok := s.bookings.Find(rows, st.Selected); ok {
			d := &bookingDialog{Booking: b}
			if b.BookingStatusID != nil {
				d.StatusID = *b.BookingStatusID
			}
			statuses, err := s.api.BookingStatuses(ctx)
			if err != nil {
				s.logger.Warn("booking statuses unavailable", zap.Error(err))
			}
			d.Statuses = statuses
			v.Dialog = d
		}
	}
	return v, nil
}

func (s *Server) bookingsPage(c *gin.Context) {
	st := StateFromQuery(c.Request.URL.Query(), s.bookings.FilterNames()...)
	v, err := s.bookingsView(c.Request.Context(), st)
	if err != nil {
		s.loadFailed(c, v, "bookings", err)
		return
	}
	s.render(c, http.StatusOK, v)
}

func (s *Server) exportBookings(c *gin.Context) {
	st := StateFromQuery(c.Request.URL.Query(), s.bookings.FilterNames()...)
	rows, err := s.api.Bookings(c.Request.Context())
	if err != nil {
		s.exportFailed(c, err)
		return
	}
	data, err := Export(s.bookings, "Bookings", s.bookings.Rows(rows, st))
	s.sendWorkbook(c, "bookings", data, err)
}

type clientDialog struct {
	Client    models.Client
	Bookings  []models.Booking
	LoadError string
}

func (s *Server) clientsPage(c *gin.Context) {
	ctx := c.Request.Context()
	st := StateFromQuery(c.Request.URL.Query(), s.clients.FilterNames()...)
	rows, err := s.api.Clients(ctx)
	v := buildList(s.clients, "clients", "Clients", "/clients", rows, st)
	if err != nil {
		s.loadFailed(c, v, "clients", err)
		return
	}
	if st.Selected > 0 {
		if cl, ok := s.clients.Find(rows, st.Selected); ok {
			d := &clientDialog{Client: cl}
			if cl.HasBooking {
				d.Bookings, err = s.api.BookingsByClient(ctx, cl.ClientID)
				if err != nil {
					s.logger.Warn("client bookings unavailable", zap.Int64("client_id", cl.ClientID), zap.Error(err))
					d.LoadError = "Failed to load bookings for this client."
				}
			}
			v.Dialog = d
		}
	}
	s.render(c, http.StatusOK, v)
}

func (s *Server) exportClients(c *gin.Context) {
	st := StateFromQuery(c.Request.URL.Query(), s.clients.FilterNames()...)
	rows, err := s.api.Clients(c.Request.Context())
	if err != nil {
		s.exportFailed(c, err)
		return
	}
	data, err := Export(s.clients, "Clients", s.clients.Rows(rows, st))
	s.sendWorkbook(c, "clients", data, err)
}

func (s *Server) exceptionsView(ctx context.Context, st State) (listView, error) {
	rows, err := s.api.Exceptions(ctx, nil)
	v := buildList(s.exceptions, "exceptions", "Exceptions", "/exceptions", rows, st)
	if err != nil {
		return v, err
	}
	if st.Selected > 0 {
		if e, ok := s.exceptions.Find(rows, st.Selected); ok {
			v.Dialog = &e
		}
	}
	return v, nil
}

func (s *Server) exceptionsPage(c *gin.Context) {
	st := StateFromQuery(c.Request.URL.Query(), s.exceptions.FilterNames()...)
	v, err := s.exceptionsView(c.Request.Context(), st)
	if err != nil {
		s.loadFailed(c, v, "exceptions", err)
		return
	}
	s.render(c, http.StatusOK, v)
}

func (s *Server) exportExceptions(c *gin.Context) {
	st := StateFromQuery(c.Request.URL.Query(), s.exceptions.FilterNames()...)
	rows, err := s.api.Exceptions(c.Request.Context(), nil)
	if err != nil {
		s.exportFailed(c, err)
		return
	}
	data, err := Export(s.exceptions, "Exceptions", s.exceptions.Rows(rows, st))
	s.sendWorkbook(c, "exceptions", data, err)
}

func (s *Server) sendWorkbook(c *gin.Context, name string, data []byte, err error) {
	if err != nil {
		s.logger.Error("export failed", zap.String("view", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to export "+name)
		return
	}
	filename := name + "-" + s.now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (s *Server) exportFailed(c *gin.Context, err error) {
	s.logger.Warn("export read failed", zap.Error(err))
	c.String(http.StatusBadGateway, "Failed to load data for export")
}

// returnState restores the table state a dialog form was opened from.
func returnState(c *gin.Context, filterNames []string, id int64) State {
	q, err := url.ParseQuery(c.PostForm("return"))
	if err != nil {
		q = url.Values{}
	}
	return StateFromQuery(q, filterNames...).Select(id)
}

func actionStatus(err error) (int, string) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if issues := apiErr.Issues(); len(issues) > 0 {
			parts := make([]string, len(issues))
			for i, is := range issues {
				parts[i] = is.PathString() + ": " + is.Message
			}
			msg += " (" + strings.Join(parts, "; ") + ")"
		}
		return apiErr.Status, msg
	}
	return http.StatusBadGateway, "Could not reach the API"
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// updateBooking saves notes and status from the booking dialog. On failure
// the page is rendered again with the dialog still open and an error banner.
func (s *Server) updateBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	st := returnState(c, s.bookings.FilterNames(), id)

	payload := map[string]any{"booking_notes": c.PostForm("booking_notes")}
	if raw := c.PostForm("bookingstatusid"); raw != "" {
		statusID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid status")
			return
		}
		payload["bookingstatusid"] = statusID
	}

	if _, err := s.api.UpdateBooking(ctx, id, payload); err != nil {
		status, msg := actionStatus(err)
		s.logger.Warn("booking update failed", zap.Int64("booking_id", id), zap.Error(err))
		v, loadErr := s.bookingsView(ctx, st)
		if loadErr != nil {
			s.loadFailed(c, v, "bookings", loadErr)
			return
		}
		v.ActionError = "Failed to save booking: " + msg
		s.render(c, status, v)
		return
	}
	c.Redirect(http.StatusSeeOther, link("/bookings", st.Query()))
}

func (s *Server) resolveException(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	st := returnState(c, s.exceptions.FilterNames(), id)
	resolved := c.PostForm("resolved") == "true"

	if _, err := s.api.UpdateException(ctx, id, map[string]any{"resolved": resolved}); err != nil {
		status, msg := actionStatus(err)
		s.logger.Warn("exception update failed", zap.Int64("exception_id", id), zap.Error(err))
		v, loadErr := s.exceptionsView(ctx, st)
		if loadErr != nil {
			s.loadFailed(c, v, "exceptions", loadErr)
			return
		}
		v.ActionError = "Failed to update exception: " + msg
		s.render(c, status, v)
		return
	}
	// a resolved row may leave a status-filtered list, so close the dialog
	c.Redirect(http.StatusSeeOther, link("/exceptions", st.ClearSelection().Query()))
}
