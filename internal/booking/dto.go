package booking

// ItemRequest is one line of CreateBookingRequest: a specific seat or a
// block of general-admission capacity.
type ItemRequest struct {
	SeatID         string `json:"seat_id,omitempty" example:"8c6c1e2a-0000-0000-0000-000000000001"`
	SectionID      string `json:"section_id,omitempty"`
	SectionName    string `json:"section_name,omitempty"`
	SeatRow        string `json:"seat_row,omitempty"`
	SeatNumber     int    `json:"seat_number,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"required,min=1" example:"5000"`
	Quantity       int    `json:"quantity" binding:"required,min=1,max=10" example:"1"`
}

// CreateBookingRequest input for creating a booking. TotalAmountCents
// must equal the sum of Items' totals (invariant I-4); a mismatch is
// rejected with 400.
type CreateBookingRequest struct {
	EventID          string        `json:"event_id" binding:"required,uuid4" example:"550e8400-e29b-41d4-a716-446655440000"`
	Currency         string        `json:"currency" binding:"required,len=3" example:"USD"`
	TotalAmountCents int64         `json:"total_amount_cents" binding:"required,min=1"`
	Items            []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateBookingResponse output after creating a booking
type CreateBookingResponse struct {
	BookingID        string `json:"booking_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	BookingReference string `json:"booking_reference" example:"BK-7F3A9C21"`
	Status           Status `json:"status" example:"PENDING"`
	ExpiryDate       string `json:"expiry_date" example:"2026-07-31T15:04:05Z"`
}

// ItemResponse mirrors Item for the API surface.
type ItemResponse struct {
	SeatID         string `json:"seat_id,omitempty"`
	SectionID      string `json:"section_id,omitempty"`
	SectionName    string `json:"section_name,omitempty"`
	SeatRow        string `json:"seat_row,omitempty"`
	SeatNumber     int    `json:"seat_number,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// BookingResponse represents a booking record
type BookingResponse struct {
	ID               string         `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	BookingReference string         `json:"booking_reference"`
	EventID          string         `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID           string         `json:"user_id" example:"42e1d21e-1111-2222-3333-444455556666"`
	TotalAmountCents int64          `json:"total_amount_cents"`
	Currency         string         `json:"currency"`
	Status           Status         `json:"status" example:"CONFIRMED"`
	ExpiryDate       string         `json:"expiry_date,omitempty"`
	ConfirmedAt      string         `json:"confirmed_at,omitempty"`
	CancelledAt      string         `json:"cancelled_at,omitempty"`
	Items            []ItemResponse `json:"items,omitempty"`
}

// toBookingResponse adapts the domain model to the API shape.
func toBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		EventID:          b.EventID,
		UserID:           b.UserID,
		TotalAmountCents: b.TotalAmountCents,
		Currency:         b.Currency,
		Status:           b.Status,
	}
	if !b.ExpiryDate.IsZero() {
		resp.ExpiryDate = b.ExpiryDate.Format("2006-01-02T15:04:05Z07:00")
	}
	if b.ConfirmedAt != nil {
		resp.ConfirmedAt = b.ConfirmedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if b.CancelledAt != nil {
		resp.CancelledAt = b.CancelledAt.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, ItemResponse{
			SeatID: it.SeatID, SectionID: it.SectionID, SectionName: it.SectionName,
			SeatRow: it.SeatRow, SeatNumber: it.SeatNumber,
			UnitPriceCents: it.UnitPriceCents, Quantity: it.Quantity,
		})
	}
	return resp
}

// CancelBookingRequest is the optional body of the cancel endpoint.
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" example:"change of plans"`
}

// ErrorResponse standard error model
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request"`
}
