package models

import "time"

type BookingException struct {
	ExceptionLogID           int64     `json:"exceptionlogid" gorm:"column:exceptionlogid;primaryKey;autoIncrement"`
	BookingID                *int64    `json:"bookingid" gorm:"column:bookingid;index"`
	BookingExceptionStatusID *int64    `json:"bookingexceptionstatusid" gorm:"column:bookingexceptionstatusid"`
	Resolved                 *bool     `json:"resolved" gorm:"column:resolved"`
	CreatedAt                time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	CreatedBy                *string   `json:"created_by" gorm:"column:created_by"`

	// Booking is nil for exceptions whose booking is missing.
	Booking                *ExceptionBooking       `json:"Booking" gorm:"foreignKey:BookingID;references:BookingID"`
	BookingExceptionStatus *BookingExceptionStatus `json:"BookingExceptionStatus" gorm:"foreignKey:BookingExceptionStatusID;references:BookingExceptionStatusID"`
}

func (BookingException) TableName() string { return "BookingExceptionLog" }

func (e BookingException) IsResolved() bool {
	return e.Resolved != nil && *e.Resolved
}

func (e BookingException) CompanyName() string {
	if e.Booking == nil || e.Booking.Client == nil || e.Booking.Client.CompanyName == nil {
		return ""
	}
	return *e.Booking.Client.CompanyName
}

// ExceptionBooking is the booking projection embedded in exception rows.
type ExceptionBooking struct {
	BookingID       int64          `json:"bookingid" gorm:"column:bookingid;primaryKey"`
	ClientID        *int64         `json:"clientid" gorm:"column:clientid"`
	CoverStartDate  *string        `json:"cover_startdate" gorm:"column:cover_startdate"`
	CoverEndDate    *string        `json:"cover_enddate" gorm:"column:cover_enddate"`
	PrimaryContact  *string        `json:"primary_contact" gorm:"column:primary_contact"`
	PrimaryEmail    *string        `json:"primary_email" gorm:"column:primary_email"`
	CreatedAt       *time.Time     `json:"created_at,omitempty" gorm:"column:created_at"`
	BookingStatusID *int64         `json:"bookingstatusid,omitempty" gorm:"column:bookingstatusid"`
	Client          *ClientSummary `json:"Client" gorm:"foreignKey:ClientID;references:ClientID"`
	BookingStatus   *BookingStatus `json:"BookingStatus" gorm:"foreignKey:BookingStatusID;references:BookingStatusID"`
}

func (ExceptionBooking) TableName() string { return "Booking" }
