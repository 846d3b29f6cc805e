package models

import "time"

type Client struct {
	ClientID      int64     `json:"clientid" gorm:"column:clientid;primaryKey;autoIncrement"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	CompanyName   *string   `json:"companyname" gorm:"column:companyname"`
	UnitCount2024 *float64  `json:"unitcount2024" gorm:"column:unitcount2024"`
	Price2024     *float64  `json:"price2024" gorm:"column:price2024"`
	Rate2024      *float64  `json:"rate2024" gorm:"column:rate2024"`
	IncreasePerc  *float64  `json:"increaseperc" gorm:"column:increaseperc"`

	// HasBooking is derived from Bookings on every read and never written.
	HasBooking bool         `json:"hasbooking" gorm:"-"`
	Bookings   []BookingRef `json:"Booking,omitempty" gorm:"foreignKey:ClientID;references:ClientID"`
}

func (Client) TableName() string { return "Client" }

// DeriveHasBooking recomputes HasBooking from the joined booking rows,
// overriding whatever value storage returned.
func (c *Client) DeriveHasBooking() {
	c.HasBooking = len(c.Bookings) > 0
}

func (c Client) Name() string {
	if c.CompanyName == nil {
		return ""
	}
	return *c.CompanyName
}

type ClientSummary struct {
	ClientID    int64   `json:"clientid,omitempty" gorm:"column:clientid;primaryKey"`
	CompanyName *string `json:"companyname" gorm:"column:companyname"`
}

func (ClientSummary) TableName() string { return "Client" }
