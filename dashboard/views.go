package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/sittawut/coverage-admin/models"
)

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func lessNum(a, b *float64) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	}
	return *a < *b
}

// parseDay reads the calendar date of a date or timestamp string.
func parseDay(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s[:10])
	return t, err == nil
}

// InPeriod reports whether day falls in a seasonal period: christmas is
// Dec 20 to Dec 30, newyear is Dec 31 to Jan 2.
func InPeriod(day time.Time, period string) bool {
	m, d := day.Month(), day.Day()
	switch period {
	case "christmas":
		return m == time.December && d >= 20 && d <= 30
	case "newyear":
		return (m == time.December && d == 31) || (m == time.January && d <= 2)
	}
	return true
}

var periodOptions = []Option{
	{Value: "all", Label: "All periods"},
	{Value: "christmas", Label: "Christmas Week"},
	{Value: "newyear", Label: "New Year"},
}

func BookingTable() *Table[models.Booking] {
	return &Table[models.Booking]{
		ID: func(b models.Booking) int64 { return b.BookingID },
		Search: func(b models.Booking) []string {
			return []string{b.BookingNotes, b.CompanyName(), str(b.PrimaryContact)}
		},
		Columns: []Column[models.Booking]{
			{
				Key: "bookingid", Title: "Booking ID",
				Value: func(b models.Booking) string { return strconv.FormatInt(b.BookingID, 10) },
				Less:  func(a, b models.Booking) bool { return a.BookingID < b.BookingID },
			},
			{Key: "client", Title: "Client", Value: models.Booking.CompanyName},
			{
				Key: "schedule", Title: "Schedule",
				Value: func(b models.Booking) string {
					start, end := str(b.CoverStartDate), str(b.CoverEndDate)
					if end == "" || end == start {
						return start
					}
					return start + " to " + end
				},
				Less: func(a, b models.Booking) bool { return str(a.CoverStartDate) < str(b.CoverStartDate) },
			},
			{Key: "contact", Title: "Contact", Value: func(b models.Booking) string { return str(b.PrimaryContact) }},
			{Key: "status", Title: "Status", Value: models.Booking.StatusLabel},
			{Key: "coverage", Title: "Coverage", Value: models.Booking.CoverageName},
			{
				Key: "units", Title: "2025 Units",
				Value: func(b models.Booking) string { return num(b.UnitCount2025) },
				Less:  func(a, b models.Booking) bool { return lessNum(a.UnitCount2025, b.UnitCount2025) },
			},
		},
		Filters: []Filter[models.Booking]{
			{
				Name: "status", Label: "Status",
				Options: []Option{
					{Value: "all", Label: "All statuses"},
					{Value: "confirmed", Label: "Confirmed"},
					{Value: "pending", Label: "Pending"},
					{Value: "cancelled", Label: "Cancelled"},
				},
				Match: func(b models.Booking, v string) bool { return strings.EqualFold(b.StatusLabel(), v) },
			},
			{
				Name: "coverage", Label: "Coverage",
				Options: []Option{
					{Value: "all", Label: "All coverage"},
					{Value: "phone", Label: "Phone"},
					{Value: "onsite", Label: "Onsite"},
					{Value: "both", Label: "Both"},
				},
				Match: func(b models.Booking, v string) bool {
					cov := strings.ToLower(b.CoverageName())
					if v == "both" {
						return strings.Contains(cov, "phone") && strings.Contains(cov, "onsite")
					}
					return strings.Contains(cov, v)
				},
			},
			{
				Name: "period", Label: "Period", Options: periodOptions,
				Match: func(b models.Booking, v string) bool {
					day, ok := parseDay(str(b.CoverStartDate))
					return ok && InPeriod(day, v)
				},
			},
		},
	}
}

func ClientTable() *Table[models.Client] {
	return &Table[models.Client]{
		ID:     func(c models.Client) int64 { return c.ClientID },
		Search: func(c models.Client) []string { return []string{c.Name()} },
		Columns: []Column[models.Client]{
			{
				Key: "clientid", Title: "Client ID",
				Value: func(c models.Client) string { return strconv.FormatInt(c.ClientID, 10) },
				Less:  func(a, b models.Client) bool { return a.ClientID < b.ClientID },
			},
			{Key: "companyname", Title: "Client", Value: models.Client.Name},
			{
				Key: "units", Title: "2024 Units",
				Value: func(c models.Client) string { return num(c.UnitCount2024) },
				Less:  func(a, b models.Client) bool { return lessNum(a.UnitCount2024, b.UnitCount2024) },
			},
			{
				Key: "hasbooking", Title: "Status",
				Value: func(c models.Client) string {
					if c.HasBooking {
						return "Active"
					}
					return "No bookings"
				},
			},
			{
				Key: "price", Title: "2024 Price",
				Value: func(c models.Client) string { return num(c.Price2024) },
				Less:  func(a, b models.Client) bool { return lessNum(a.Price2024, b.Price2024) },
			},
			{
				Key: "rate", Title: "2024 Rate",
				Value: func(c models.Client) string { return num(c.Rate2024) },
				Less:  func(a, b models.Client) bool { return lessNum(a.Rate2024, b.Rate2024) },
			},
		},
		Filters: []Filter[models.Client]{
			{
				Name: "status", Label: "Status",
				Options: []Option{
					{Value: "all", Label: "All clients"},
					{Value: "active", Label: "Has bookings"},
					{Value: "inactive", Label: "No bookings"},
				},
				Match: func(c models.Client, v string) bool { return c.HasBooking == (v == "active") },
			},
			{
				// Clients carry no booking dates, so any period keeps clients
				// with bookings.
				Name: "period", Label: "Period", Options: periodOptions,
				Match: func(c models.Client, v string) bool { return c.HasBooking },
			},
		},
	}
}

// ExceptionTable builds the exceptions view. now anchors the recent-days
// filter.
func ExceptionTable(now func() time.Time) *Table[models.BookingException] {
	return &Table[models.BookingException]{
		ID: func(e models.BookingException) int64 { return e.ExceptionLogID },
		Search: func(e models.BookingException) []string {
			out := []string{strconv.FormatInt(e.ExceptionLogID, 10), e.CompanyName()}
			if st := e.BookingExceptionStatus; st != nil {
				out = append(out, str(st.ShortDesc), str(st.LongDesc))
			}
			return out
		},
		Columns: []Column[models.BookingException]{
			{
				Key: "exceptionlogid", Title: "Exception ID",
				Value: func(e models.BookingException) string { return strconv.FormatInt(e.ExceptionLogID, 10) },
				Less:  func(a, b models.BookingException) bool { return a.ExceptionLogID < b.ExceptionLogID },
			},
			{Key: "resolved", Title: "Status", Value: resolvedLabel},
			{Key: "issue", Title: "Issue", Value: func(e models.BookingException) string { return exceptionShort(e) }},
			{Key: "description", Title: "Description", Value: func(e models.BookingException) string {
				if e.BookingExceptionStatus == nil {
					return ""
				}
				return str(e.BookingExceptionStatus.LongDesc)
			}},
			{Key: "client", Title: "Client", Value: models.BookingException.CompanyName},
			{
				Key: "booking", Title: "Booking",
				Value: func(e models.BookingException) string {
					if e.BookingID == nil {
						return ""
					}
					return strconv.FormatInt(*e.BookingID, 10)
				},
			},
			{
				Key: "created", Title: "Created",
				Value: func(e models.BookingException) string { return e.CreatedAt.Format("2006-01-02 15:04") },
				Less:  func(a, b models.BookingException) bool { return a.CreatedAt.Before(b.CreatedAt) },
			},
		},
		Filters: []Filter[models.BookingException]{
			{
				Name: "status", Label: "Status",
				Options: []Option{
					{Value: "all", Label: "All statuses"},
					{Value: "resolved", Label: "Resolved"},
					{Value: "unresolved", Label: "Unresolved"},
				},
				Match: func(e models.BookingException, v string) bool { return e.IsResolved() == (v == "resolved") },
			},
			{
				Name: "date", Label: "Created",
				Options: []Option{
					{Value: "all", Label: "Any time"},
					{Value: "7days", Label: "Last 7 days"},
					{Value: "30days", Label: "Last 30 days"},
				},
				Match: func(e models.BookingException, v string) bool {
					days := 30
					if v == "7days" {
						days = 7
					}
					cutoff := now().Add(-time.Duration(days) * 24 * time.Hour)
					return !e.CreatedAt.Before(cutoff)
				},
			},
		},
	}
}

func resolvedLabel(e models.BookingException) string {
	if e.IsResolved() {
		return "Resolved"
	}
	return "Unresolved"
}

func exceptionShort(e models.BookingException) string {
	if e.BookingExceptionStatus == nil {
		return ""
	}
	return str(e.BookingExceptionStatus.ShortDesc)
}
