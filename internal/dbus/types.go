package dbus

import (
	"math"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastbox/internal/toast"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name of the notification daemon.
	DBusBusName = "org.freedesktop.Notifications"

	// HintToastID carries the toast ULID so closes can be matched back.
	HintToastID = "x-toastbox-id"
)

// Urgency levels of the freedesktop notification protocol.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the protocol.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// ToastStatus returns the toast status a desktop close maps to.
func (r CloseReason) ToastStatus() toast.Status {
	switch r {
	case CloseReasonExpired:
		return toast.StatusExpired
	case CloseReasonDismissed:
		return toast.StatusDismissed
	default:
		return toast.StatusClosed
	}
}

// Notification holds the arguments of an org.freedesktop.Notifications.Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Args returns the notification as Notify method arguments.
func (n Notification) Args() []interface{} {
	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}
	return []interface{}{
		n.AppName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		actions,
		hints,
		n.ExpireTimeout,
	}
}

// UrgencyForLevel maps a toast level to a freedesktop urgency.
func UrgencyForLevel(level toast.Level) byte {
	switch level {
	case toast.LevelWarn:
		return UrgencyNormal
	case toast.LevelError:
		return UrgencyCritical
	default:
		return UrgencyLow
	}
}

// IconForLevel returns a freedesktop icon name for a toast level.
func IconForLevel(level toast.Level) string {
	switch level {
	case toast.LevelSuccess:
		return "emblem-ok-symbolic"
	case toast.LevelWarn:
		return "dialog-warning"
	case toast.LevelError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}

// ExpireTimeout converts a toast expiry to a Notify expire_timeout.
// An absent expiry never expires.
func ExpireTimeout(expiry *uint32) int32 {
	if expiry == nil {
		return 0
	}
	if *expiry > math.MaxInt32 {
		return math.MaxInt32
	}
	if *expiry == 0 {
		// 0 means "never" on the wire; the shortest real timeout is 1ms
		return 1
	}
	return int32(*expiry)
}

// NewNotification builds the Notify arguments for a toast.
func NewNotification(t toast.Toast, appName string) Notification {
	return Notification{
		AppName: appName,
		AppIcon: IconForLevel(t.Level),
		Summary: t.Level.Label(),
		Body:    t.Message,
		Hints: map[string]dbus.Variant{
			"urgency":   dbus.MakeVariant(UrgencyForLevel(t.Level)),
			"category":  dbus.MakeVariant("x-toastbox." + t.Level.String()),
			"transient": dbus.MakeVariant(true),
			HintToastID: dbus.MakeVariant(t.ID),
		},
		ExpireTimeout: ExpireTimeout(t.Expiry),
	}
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}
