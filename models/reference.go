package models

import "time"

// Lookup tables. They are read-only from this service.

type BookingStatus struct {
	BookingStatusID int64      `json:"bookingstatusid,omitempty" gorm:"column:bookingstatusid;primaryKey;autoIncrement"`
	ShortDesc       *string    `json:"bookingstatus_shortdesc" gorm:"column:bookingstatus_shortdesc"`
	LongDesc        *string    `json:"bookingstatus_longdesc,omitempty" gorm:"column:bookingstatus_longdesc"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"column:created_at"`
}

func (BookingStatus) TableName() string { return "BookingStatus" }

type BookingExceptionStatus struct {
	BookingExceptionStatusID int64      `json:"bookingexceptionstatusid,omitempty" gorm:"column:bookingexceptionstatusid;primaryKey;autoIncrement"`
	ShortDesc                *string    `json:"exception_shortdesc" gorm:"column:exception_shortdesc"`
	LongDesc                 *string    `json:"exception_longdesc" gorm:"column:exception_longdesc"`
	CreatedAt                *time.Time `json:"created_at,omitempty" gorm:"column:created_at"`
}

func (BookingExceptionStatus) TableName() string { return "BookingExceptionStatus" }

type CoverageConfig struct {
	CoverageID           int64                  `json:"coverageid,omitempty" gorm:"column:coverageid;primaryKey;autoIncrement"`
	Name                 *string                `json:"coverage_name" gorm:"column:coverage_name"`
	ShortCode            *string                `json:"coverage_shortcode,omitempty" gorm:"column:coverage_shortcode"`
	Year                 *string                `json:"coverage_year,omitempty" gorm:"column:coverage_year"`
	StartDate            *string                `json:"coverage_startdate,omitempty" gorm:"column:coverage_startdate"`
	EndDate              *string                `json:"coverage_enddate,omitempty" gorm:"column:coverage_enddate"`
	Notes                *string                `json:"coverage_notes,omitempty" gorm:"column:coverage_notes"`
	CreatedAt            *time.Time             `json:"created_at,omitempty" gorm:"column:created_at"`
	CoverageDetailConfig []CoverageDetailConfig `json:"CoverageDetailConfig,omitempty" gorm:"foreignKey:CoverageID;references:CoverageID"`
}

func (CoverageConfig) TableName() string { return "CoverageConfig" }

type CoverageDetailConfig struct {
	CoverageDetailID int64         `json:"coveragedetailid,omitempty" gorm:"column:coveragedetailid;primaryKey;autoIncrement"`
	CoverageID       *int64        `json:"coverageid,omitempty" gorm:"column:coverageid"`
	CoverageTypeID   *int64        `json:"coveragetypeid,omitempty" gorm:"column:coveragetypeid"`
	Name             *string       `json:"coveragedetail_name" gorm:"column:coveragedetail_name"`
	Date             *string       `json:"coveragedetail_date" gorm:"column:coveragedetail_date"`
	CoverageType     *CoverageType `json:"CoverageType,omitempty" gorm:"foreignKey:CoverageTypeID;references:CoverageTypeID"`
}

func (CoverageDetailConfig) TableName() string { return "CoverageDetailConfig" }

type CoverageType struct {
	CoverageTypeID int64   `json:"coveragetypeid,omitempty" gorm:"column:coveragetypeid;primaryKey;autoIncrement"`
	ShortDesc      *string `json:"coveragetype_shortdesc" gorm:"column:coveragetype_shortdesc"`
}

func (CoverageType) TableName() string { return "CoverageType" }
