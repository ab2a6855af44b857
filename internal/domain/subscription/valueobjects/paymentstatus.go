package valueobjects

// PaymentStatus tracks gateway settlement of a paid overlay (replacement or
// customization). The actual gateway interaction lives outside the core; the
// core only reads the recorded status.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentPaid        PaymentStatus = "paid"
	PaymentConfirmed   PaymentStatus = "confirmed"
	PaymentFailed      PaymentStatus = "failed"
	PaymentNotRequired PaymentStatus = "not_required"
)

func (p PaymentStatus) String() string {
	return string(p)
}

// Settled reports whether the payment no longer blocks the overlay from
// taking effect.
func (p PaymentStatus) Settled() bool {
	return p == PaymentPaid || p == PaymentConfirmed || p == PaymentNotRequired
}

var ValidPaymentStatuses = map[PaymentStatus]bool{
	PaymentPending:     true,
	PaymentPaid:        true,
	PaymentConfirmed:   true,
	PaymentFailed:      true,
	PaymentNotRequired: true,
}
