package flow

import "log/slog"

const noticeBuffer = 32

// NoticeKind tells the front end how to style a notification.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
	// NoticeResult carries the text of a finished symptom check (advice or
	// "Error: ..."). It follows the info or error notice for the same check.
	NoticeResult
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeError:
		return "error"
	case NoticeResult:
		return "result"
	default:
		return "info"
	}
}

// Notification is a short-lived message for the user, like a toast.
type Notification struct {
	Kind    NoticeKind
	Message string
}

// Notifications delivers transient messages. If nobody reads them and the
// buffer fills up, newer messages are dropped.
func (c *Controller) Notifications() <-chan Notification {
	return c.notices
}

func (c *Controller) notify(kind NoticeKind, message string) {
	select {
	case c.notices <- Notification{Kind: kind, Message: message}:
	default:
		c.logger.Debug("notification dropped", slog.String("message", message))
	}
}
