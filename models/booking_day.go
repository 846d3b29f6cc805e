package models

import "time"

type BookingDay struct {
	BookingDayID int64     `json:"bookingdayid" gorm:"column:bookingdayid;primaryKey;autoIncrement"`
	BookingID    *int64    `json:"bookingid" gorm:"column:bookingid;index"`
	CoverageDay  *string   `json:"coverage_day" gorm:"column:coverage_day"`
	StartTime    *string   `json:"start_time" gorm:"column:start_time"`
	EndTime      *string   `json:"end_time" gorm:"column:end_time"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	CreatedBy    *string   `json:"created_by,omitempty" gorm:"column:created_by"`
}

func (BookingDay) TableName() string { return "BookingDays" }
