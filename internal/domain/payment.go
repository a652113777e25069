package domain

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusWaitingForCapture PaymentStatus = "waiting_for_capture"
	PaymentStatusSucceeded         PaymentStatus = "succeeded"
	PaymentStatusCanceled          PaymentStatus = "canceled"
)

type PaymentRequest struct {
	Amount         Money
	ReturnURL      string
	Description    string
	IdempotencyKey string
}

type Payment struct {
	ID              string
	Status          PaymentStatus
	ConfirmationURL string
}

// PaymentResult is the outcome of checking a provider payment for an order.
type PaymentResult struct {
	Order  Order
	Status PaymentStatus
}

func (r PaymentResult) Succeeded() bool {
	return r.Status == PaymentStatusSucceeded
}
