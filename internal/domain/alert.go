package domain

import "time"

// AlertType selects how an alert is styled.
type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

// DefaultAlertTimeout is the display time used when a caller does not give one.
const DefaultAlertTimeout = 5000 * time.Millisecond

// Alert is a user-facing notification. A zero Timeout means the alert stays
// until it is displayed.
type Alert struct {
	Type    AlertType     `json:"type"`
	Message string        `json:"message"`
	Timeout time.Duration `json:"-"`
}

// TimeoutMillis returns the timeout in milliseconds, for templates and scripts.
func (a Alert) TimeoutMillis() int64 {
	return a.Timeout.Milliseconds()
}

// Valid reports whether t is one of the known alert types.
func (t AlertType) Valid() bool {
	switch t {
	case AlertSuccess, AlertInfo, AlertWarning, AlertDanger:
		return true
	default:
		return false
	}
}
