package handlers

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/sittawut/coverage-admin/models"
	"github.com/sittawut/coverage-admin/repository"
)

// fakeStore is an in-memory repository.Store. Setting err makes every call
// fail with it.
type fakeStore struct {
	mu         sync.Mutex
	err        error
	nextID     int64
	clients    map[int64]*models.Client
	bookings   map[int64]*models.Booking
	days       map[int64][]models.BookingDay
	exceptions map[int64]*models.BookingException
	lastWrite  repository.BookingWrite
	lastFields models.Fields
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:    map[int64]*models.Client{},
		bookings:   map[int64]*models.Booking{},
		days:       map[int64][]models.BookingDay{},
		exceptions: map[int64]*models.BookingException{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func decode(fields models.Fields, dst any) {
	raw, _ := json.Marshal(fields)
	_ = json.Unmarshal(raw, dst)
}

func (s *fakeStore) Ping(context.Context) error { return s.err }

func (s *fakeStore) withHasBooking(c models.Client) models.Client {
	c.Bookings = nil
	for _, b := range s.bookings {
		if b.ClientID != nil && *b.ClientID == c.ClientID {
			c.Bookings = append(c.Bookings, models.BookingRef{BookingID: b.BookingID, ClientID: b.ClientID})
		}
	}
	c.DeriveHasBooking()
	return c
}

func (s *fakeStore) ListClients(context.Context) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, s.withHasBooking(*c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (s *fakeStore) GetClientByID(_ context.Context, id int64) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.withHasBooking(*c)
	if !out.HasBooking {
		return nil, repository.ErrNotFound
	}
	return &out, nil
}

func (s *fakeStore) CreateClient(_ context.Context, fields models.Fields) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.lastFields = fields
	var c models.Client
	decode(fields, &c)
	c.ClientID = s.id()
	c.HasBooking = false
	s.clients[c.ClientID] = &c
	out := s.withHasBooking(c)
	return &out, nil
}

func (s *fakeStore) UpdateClient(_ context.Context, id int64, fields models.Fields) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	decode(fields, c)
	out := s.withHasBooking(*c)
	return &out, nil
}

func (s *fakeStore) booking(id int64) models.Booking {
	b := *s.bookings[id]
	b.BookingDays = append([]models.BookingDay(nil), s.days[id]...)
	return b
}

func (s *fakeStore) ListBookings(context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Booking, 0, len(s.bookings))
	for id := range s.bookings {
		out = append(out, s.booking(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingID < out[j].BookingID })
	return out, nil
}

func (s *fakeStore) GetBookingByID(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.bookings[id]; !ok {
		return nil, repository.ErrNotFound
	}
	b := s.booking(id)
	return &b, nil
}

func (s *fakeStore) ListBookingsByClient(ctx context.Context, clientID int64) ([]models.Booking, error) {
	all, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range all {
		if b.ClientID != nil && *b.ClientID == clientID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) setDays(bookingID int64, days []models.Fields) {
	rows := make([]models.BookingDay, 0, len(days))
	for _, d := range days {
		var day models.BookingDay
		decode(d, &day)
		day.BookingDayID = s.id()
		day.BookingID = &bookingID
		rows = append(rows, day)
	}
	s.days[bookingID] = rows
}

func (s *fakeStore) CreateBooking(_ context.Context, w repository.BookingWrite) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.lastWrite = w
	var b models.Booking
	decode(w.Fields, &b)
	b.BookingID = s.id()
	s.bookings[b.BookingID] = &b
	s.setDays(b.BookingID, w.Days)
	out := b
	return &out, nil
}

func (s *fakeStore) UpdateBooking(_ context.Context, id int64, w repository.BookingWrite) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.lastWrite = w
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	decode(w.Fields, b)
	if w.HasDays {
		s.setDays(id, w.Days)
	}
	out := *b
	return &out, nil
}

func (s *fakeStore) ListExceptions(_ context.Context, filter repository.ExceptionFilter) ([]models.BookingException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.BookingException{}
	for _, e := range s.exceptions {
		if filter.Resolved != nil && (e.Resolved == nil || *e.Resolved != *filter.Resolved) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExceptionLogID > out[j].ExceptionLogID })
	return out, nil
}

func (s *fakeStore) GetExceptionByID(_ context.Context, id int64) (*models.BookingException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.exceptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (s *fakeStore) CreateException(_ context.Context, fields models.Fields) (*models.BookingException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.lastFields = fields
	var e models.BookingException
	decode(fields, &e)
	e.ExceptionLogID = s.id()
	if e.BookingID != nil {
		if b, ok := s.bookings[*e.BookingID]; ok {
			e.Booking = &models.ExceptionBooking{BookingID: b.BookingID, ClientID: b.ClientID}
		}
	}
	s.exceptions[e.ExceptionLogID] = &e
	out := e
	return &out, nil
}

func (s *fakeStore) UpdateException(_ context.Context, id int64, fields models.Fields) (*models.BookingException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.exceptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	decode(fields, e)
	out := *e
	return &out, nil
}

func (s *fakeStore) ListBookingStatuses(context.Context) ([]models.BookingStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	confirmed, pending := "Confirmed", "Pending"
	return []models.BookingStatus{
		{BookingStatusID: 1, ShortDesc: &confirmed},
		{BookingStatusID: 2, ShortDesc: &pending},
	}, nil
}

func (s *fakeStore) ListCoverageConfigs(context.Context) ([]models.CoverageConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	name := "Phone Only"
	return []models.CoverageConfig{{CoverageID: 1, Name: &name}}, nil
}

func (s *fakeStore) ListExceptionStatuses(context.Context) ([]models.BookingExceptionStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	short := "Missing"
	return []models.BookingExceptionStatus{{BookingExceptionStatusID: 1, ShortDesc: &short}}, nil
}
