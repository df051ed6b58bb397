package domain

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Submission is the state of the current attempt. OrderID is set only when
// succeeded and Reason only when failed.
type Submission struct {
	Status  Status `json:"status"`
	OrderID int64  `json:"order_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// FailureNotice is shown with a failed submission: the order may have been
// created even though the response never arrived.
const FailureNotice = "Failed to process order. Please verify your order status before retrying."
