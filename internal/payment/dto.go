package payment

// CallbackRequest is the body of a payment provider webhook callback.
type CallbackRequest struct {
	ExternalReference string `json:"external_reference" binding:"required"`
	Success           bool   `json:"success"`
	FailureReason     string `json:"failure_reason,omitempty"`
}

// PaymentResponse represents a payment record returned over HTTP.
type PaymentResponse struct {
	PaymentID         string `json:"payment_id"`
	BookingID         string `json:"booking_id"`
	Status            Status `json:"status"`
	AmountCents       int64  `json:"amount_cents"`
	Currency          string `json:"currency"`
	ExternalReference string `json:"external_reference,omitempty"`
}

// ErrorResponse is the standard error envelope, matching the rest of
// the module's HTTP surface.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.ID,
		BookingID:         p.BookingID,
		Status:            p.Status,
		AmountCents:       p.AmountCents,
		Currency:          p.Currency,
		ExternalReference: p.ExternalReference,
	}
}
