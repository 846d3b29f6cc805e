package dashboard

import (
	"testing"
	"time"

	"github.com/sittawut/coverage-admin/models"
	"github.com/stretchr/testify/assert"
)

func sp(s string) *string { return &s }

func fp(f float64) *float64 { return &f }

func bp(b bool) *bool { return &b }

func ip(i int64) *int64 { return &i }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestInPeriod(t *testing.T) {
	cases := []struct {
		date   string
		period string
		want   bool
	}{
		{"2025-12-19", "christmas", false},
		{"2025-12-20", "christmas", true},
		{"2025-12-30", "christmas", true},
		{"2025-12-31", "christmas", false},
		{"2025-12-30", "newyear", false},
		{"2025-12-31", "newyear", true},
		{"2026-01-01", "newyear", true},
		{"2026-01-02", "newyear", true},
		{"2026-01-03", "newyear", false},
		{"2026-07-04", "all", true},
	}
	for _, tc := range cases {
		t.Run(tc.date+"/"+tc.period, func(t *testing.T) {
			assert.Equal(t, tc.want, InPeriod(day(tc.date), tc.period))
		})
	}
}

func bookingFixtures() []models.Booking {
	confirmed := &models.BookingStatus{ShortDesc: sp("Confirmed")}
	pending := &models.BookingStatus{ShortDesc: sp("Pending")}
	return []models.Booking{
		{
			BookingID: 1, BookingNotes: "Front desk cover",
			CoverStartDate: sp("2025-12-24"), PrimaryContact: sp("Dana"),
			Client:         &models.ClientSummary{CompanyName: sp("Acme Dental")},
			BookingStatus:  confirmed,
			CoverageConfig: &models.CoverageConfig{Name: sp("Phone + Onsite")},
			UnitCount2025:  fp(3),
		},
		{
			BookingID: 2, BookingNotes: "",
			CoverStartDate: sp("2026-01-01T00:00:00+00:00"), PrimaryContact: sp("Lee"),
			Client:         &models.ClientSummary{CompanyName: sp("Birch Vet")},
			BookingStatus:  pending,
			CoverageConfig: &models.CoverageConfig{Name: sp("Phone only")},
		},
		{
			BookingID: 3, BookingNotes: "needs parking",
			CoverStartDate: sp("2025-11-02"),
			Client:         &models.ClientSummary{CompanyName: sp("Cedar Clinic")},
			CoverageConfig: &models.CoverageConfig{Name: sp("Onsite")},
			UnitCount2025:  fp(1),
		},
	}
}

func bookingIDs(rows []models.Booking) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.BookingID
	}
	return out
}

func TestBookingTable_Filters(t *testing.T) {
	tbl := BookingTable()
	rows := bookingFixtures()
	s := NewState()

	assert.Equal(t, []int64{1}, bookingIDs(tbl.Rows(rows, s.WithSearch("front"))))
	assert.Equal(t, []int64{2}, bookingIDs(tbl.Rows(rows, s.WithSearch("birch"))))
	assert.Equal(t, []int64{2}, bookingIDs(tbl.Rows(rows, s.WithSearch("lee"))))

	assert.Equal(t, []int64{1}, bookingIDs(tbl.Rows(rows, s.WithFilter("status", "confirmed"))))
	assert.Equal(t, []int64{2}, bookingIDs(tbl.Rows(rows, s.WithFilter("status", "pending"))))
	assert.Empty(t, tbl.Rows(rows, s.WithFilter("status", "cancelled")))

	assert.Equal(t, []int64{1, 2}, bookingIDs(tbl.Rows(rows, s.WithFilter("coverage", "phone"))))
	assert.Equal(t, []int64{1, 3}, bookingIDs(tbl.Rows(rows, s.WithFilter("coverage", "onsite"))))
	assert.Equal(t, []int64{1}, bookingIDs(tbl.Rows(rows, s.WithFilter("coverage", "both"))))

	assert.Equal(t, []int64{1}, bookingIDs(tbl.Rows(rows, s.WithFilter("period", "christmas"))))
	assert.Equal(t, []int64{2}, bookingIDs(tbl.Rows(rows, s.WithFilter("period", "newyear"))))
}

func TestBookingTable_SortUnitsNilFirst(t *testing.T) {
	tbl := BookingTable()
	got := tbl.Rows(bookingFixtures(), NewState().ToggleSort("units"))
	assert.Equal(t, []int64{2, 3, 1}, bookingIDs(got))
}

func TestClientTable_Filters(t *testing.T) {
	tbl := ClientTable()
	rows := []models.Client{
		{ClientID: 1, CompanyName: sp("Acme Dental"), HasBooking: true},
		{ClientID: 2, CompanyName: sp("Birch Vet")},
		{ClientID: 3, CompanyName: sp("acme labs")},
	}
	ids := func(rs []models.Client) []int64 {
		out := make([]int64, len(rs))
		for i, r := range rs {
			out[i] = r.ClientID
		}
		return out
	}
	s := NewState()

	assert.Equal(t, []int64{1, 3}, ids(tbl.Rows(rows, s.WithSearch("ACME"))))
	assert.Equal(t, []int64{1}, ids(tbl.Rows(rows, s.WithFilter("status", "active"))))
	assert.Equal(t, []int64{2, 3}, ids(tbl.Rows(rows, s.WithFilter("status", "inactive"))))
	assert.Equal(t, []int64{1}, ids(tbl.Rows(rows, s.WithFilter("period", "newyear"))))
	assert.Equal(t, []int64{2, 3, 1}, ids(tbl.Rows(rows, s.ToggleSort("companyname").ToggleSort("companyname"))))
}

func TestExceptionTable_Filters(t *testing.T) {
	now := time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)
	tbl := ExceptionTable(func() time.Time { return now })
	rows := []models.BookingException{
		{
			ExceptionLogID: 10, Resolved: bp(true), BookingID: ip(1),
			CreatedAt:              now.Add(-2 * 24 * time.Hour),
			BookingExceptionStatus: &models.BookingExceptionStatus{ShortDesc: sp("Late"), LongDesc: sp("Staff arrived late")},
			Booking: &models.ExceptionBooking{
				BookingID: 1,
				Client:    &models.ClientSummary{CompanyName: sp("Acme Dental")},
			},
		},
		{
			ExceptionLogID: 11,
			CreatedAt:      now.Add(-10 * 24 * time.Hour),
			BookingExceptionStatus: &models.BookingExceptionStatus{
				ShortDesc: sp("No show"),
			},
		},
		{
			ExceptionLogID: 12, Resolved: bp(false),
			CreatedAt: now.Add(-40 * 24 * time.Hour),
		},
	}
	ids := func(rs []models.BookingException) []int64 {
		out := make([]int64, len(rs))
		for i, r := range rs {
			out[i] = r.ExceptionLogID
		}
		return out
	}
	s := NewState()

	assert.Equal(t, []int64{11}, ids(tbl.Rows(rows, s.WithSearch("11"))))
	assert.Equal(t, []int64{10}, ids(tbl.Rows(rows, s.WithSearch("arrived"))))
	assert.Equal(t, []int64{10}, ids(tbl.Rows(rows, s.WithSearch("acme"))))
	assert.Equal(t, []int64{11}, ids(tbl.Rows(rows, s.WithSearch("no show"))))

	assert.Equal(t, []int64{10}, ids(tbl.Rows(rows, s.WithFilter("status", "resolved"))))
	assert.Equal(t, []int64{11, 12}, ids(tbl.Rows(rows, s.WithFilter("status", "unresolved"))))

	assert.Equal(t, []int64{10}, ids(tbl.Rows(rows, s.WithFilter("date", "7days"))))
	assert.Equal(t, []int64{10, 11}, ids(tbl.Rows(rows, s.WithFilter("date", "30days"))))

	assert.Equal(t, []int64{12, 11, 10}, ids(tbl.Rows(rows, s.ToggleSort("created"))))
}
