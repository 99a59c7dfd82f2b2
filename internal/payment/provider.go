package payment

import "context"

// SimulatedProvider always approves charges and refunds, standing in
// for a real payment gateway integration. The payment's own ID is used
// as the external reference since nothing downstream depends on a
// distinct provider-assigned identifier.
type SimulatedProvider struct{}

func (SimulatedProvider) Charge(ctx context.Context, p *Payment) (string, error) {
	return p.ID, nil
}

func (SimulatedProvider) Refund(ctx context.Context, p *Payment) error {
	return nil
}
