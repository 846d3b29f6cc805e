package validation

var ClientSchema = &Schema{
	Name: "Client",
	Fields: []Field{
		{Name: "companyname", Kind: String, Required: true, MinLen: 1},
		{Name: "unitcount2024", Kind: Number, Nullable: true},
		{Name: "price2024", Kind: Number, Nullable: true},
		{Name: "rate2024", Kind: Number, Nullable: true},
		{Name: "increaseperc", Kind: Number, Nullable: true},
		{Name: "hasbooking", Kind: Boolean, Nullable: true},
	},
}

var BookingDaySchema = &Schema{
	Name: "BookingDay",
	Fields: []Field{
		{Name: "coverage_day", Kind: String, Nullable: true, Format: "isodatetime"},
		{Name: "start_time", Kind: String, Nullable: true},
		{Name: "end_time", Kind: String, Nullable: true},
	},
}

var BookingSchema = &Schema{
	Name: "Booking",
	Fields: []Field{
		{Name: "clientid", Kind: Integer, Required: true},
		{Name: "cover_startdate", Kind: String, Nullable: true, Format: "isodatetime"},
		{Name: "cover_enddate", Kind: String, Nullable: true, Format: "isodatetime"},
		{Name: "unitcount2025", Kind: Number, Nullable: true},
		{Name: "primary_contact", Kind: String, Nullable: true},
		{Name: "primary_email", Kind: String, Nullable: true, Format: "email"},
		{Name: "booking_notes", Kind: String, Required: true},
		{Name: "full_request", Kind: Any, Nullable: true},
		{Name: "bookingstatusid", Kind: Integer, Nullable: true},
		{Name: "coverageid", Kind: Integer, Nullable: true},
		{Name: "bookingDays", Kind: Array, Elem: BookingDaySchema},
	},
}

var ExceptionSchema = &Schema{
	Name: "BookingExceptionLog",
	Fields: []Field{
		{Name: "bookingid", Kind: Integer, Required: true},
		{Name: "bookingexceptionstatusid", Kind: Integer, Required: true},
		{Name: "resolved", Kind: Boolean, Nullable: true},
	},
}

var (
	CreateClient    = ClientSchema
	UpdateClient    = ClientSchema.Partial()
	CreateBooking   = BookingSchema
	UpdateBooking   = BookingSchema.Partial()
	CreateException = ExceptionSchema
	UpdateException = ExceptionSchema.Partial()
)
