// Package notify owns outbound delivery: lifecycle emails for queue
// events and best-effort staff notification of new prime requests.
package notify

import "fmt"

// DeliveryError is the failure shape the delivery boundary reports.
// The queue classifier reads it through small interfaces, so transports
// only need to fill in whatever they know.
type DeliveryError struct {
	Status    int    // HTTP-like status, 0 when unknown
	Code      string // provider error code, "" when unknown
	Permanent bool   // explicit no-retry flag from the provider
	Msg       string
}

func (e *DeliveryError) Error() string {
	switch {
	case e.Code != "" && e.Status != 0:
		return fmt.Sprintf("delivery failed: %s (status %d): %s", e.Code, e.Status, e.Msg)
	case e.Status != 0:
		return fmt.Sprintf("delivery failed (status %d): %s", e.Status, e.Msg)
	case e.Code != "":
		return fmt.Sprintf("delivery failed: %s: %s", e.Code, e.Msg)
	default:
		return "delivery failed: " + e.Msg
	}
}

func (e *DeliveryError) IsPermanent() bool { return e.Permanent }
func (e *DeliveryError) ErrorCode() string { return e.Code }
func (e *DeliveryError) StatusCode() int   { return e.Status }
