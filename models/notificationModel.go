package models

// Severity is the colour class of a notification banner.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	// SeverityInfo is only used by the identity status line.
	SeverityInfo Severity = "info"
)

// Notification is the single transient banner slot of a session.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"type"`
	Visible  bool     `json:"visible"`
}

// View is the screen a session is on.
type View string

const (
	ViewOrder   View = "order"
	ViewSuccess View = "success"
	ViewHistory View = "history"
)
