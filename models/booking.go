package models

import (
	"time"

	"gorm.io/datatypes"
)

type Booking struct {
	BookingID       int64          `json:"bookingid" gorm:"column:bookingid;primaryKey;autoIncrement"`
	ClientID        *int64         `json:"clientid" gorm:"column:clientid;index"`
	CoverStartDate  *string        `json:"cover_startdate" gorm:"column:cover_startdate"`
	CoverEndDate    *string        `json:"cover_enddate" gorm:"column:cover_enddate"`
	UnitCount2025   *float64       `json:"unitcount2025" gorm:"column:unitcount2025"`
	PrimaryContact  *string        `json:"primary_contact" gorm:"column:primary_contact"`
	PrimaryEmail    *string        `json:"primary_email" gorm:"column:primary_email"`
	BookingNotes    string         `json:"booking_notes" gorm:"column:booking_notes;not null;default:''"`
	FullRequest     datatypes.JSON `json:"full_request" gorm:"column:full_request"`
	CreatedAt       time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	CreatedBy       *string        `json:"created_by" gorm:"column:created_by"`
	EditedAt        *time.Time     `json:"edited_at" gorm:"column:edited_at"`
	EditedBy        *string        `json:"edited_by" gorm:"column:edited_by"`
	BookingStatusID *int64         `json:"bookingstatusid" gorm:"column:bookingstatusid"`
	CoverageID      *int64         `json:"coverageid" gorm:"column:coverageid"`

	Client         *ClientSummary  `json:"Client,omitempty" gorm:"foreignKey:ClientID;references:ClientID"`
	BookingStatus  *BookingStatus  `json:"BookingStatus,omitempty" gorm:"foreignKey:BookingStatusID;references:BookingStatusID"`
	CoverageConfig *CoverageConfig `json:"CoverageConfig,omitempty" gorm:"foreignKey:CoverageID;references:CoverageID"`
	BookingDays    []BookingDay    `json:"BookingDays,omitempty" gorm:"foreignKey:BookingID;references:BookingID"`
}

func (Booking) TableName() string { return "Booking" }

// StatusLabel returns the short status description, or "" when the status
// relation was not loaded.
func (b Booking) StatusLabel() string {
	if b.BookingStatus == nil || b.BookingStatus.ShortDesc == nil {
		return ""
	}
	return *b.BookingStatus.ShortDesc
}

func (b Booking) CoverageName() string {
	if b.CoverageConfig == nil || b.CoverageConfig.Name == nil {
		return ""
	}
	return *b.CoverageConfig.Name
}

func (b Booking) CompanyName() string {
	if b.Client == nil || b.Client.CompanyName == nil {
		return ""
	}
	return *b.Client.CompanyName
}

// BookingRef is the minimal projection used to derive Client.HasBooking.
type BookingRef struct {
	BookingID int64  `json:"bookingid" gorm:"column:bookingid;primaryKey"`
	ClientID  *int64 `json:"clientid,omitempty" gorm:"column:clientid"`
}

func (BookingRef) TableName() string { return "Booking" }
