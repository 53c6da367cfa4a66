package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastbox/internal/toast"
)

// ErrNotConnected is returned when the forwarder has no bus connection.
var ErrNotConnected = errors.New("not connected to session bus")

// Caller is the subset of dbus.BusObject used by the forwarder.
type Caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// ClosedHandler is called when the desktop closes a forwarded toast.
type ClosedHandler func(toastID string, reason CloseReason)

// Forwarder mirrors toasts to the desktop notification daemon.
// It implements toast.Sink.
type Forwarder struct {
	mu      sync.Mutex
	logger  *slog.Logger
	appName string

	conn    *dbus.Conn
	obj     Caller
	signals chan *dbus.Signal

	// toast ID -> notification ID, and back
	byToast map[string]uint32
	byNotif map[uint32]string

	onClosed ClosedHandler
}

// NewForwarder creates a forwarder. Call Connect before use.
func NewForwarder(appName string, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		logger:  logger,
		appName: appName,
		byToast: make(map[string]uint32),
		byNotif: make(map[uint32]string),
	}
}

// SetClosedHandler sets the callback for desktop-side closes.
func (f *Forwarder) SetClosedHandler(h ClosedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onClosed = h
}

// SetCaller replaces the notification object. Used by tests.
func (f *Forwarder) SetCaller(c Caller) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obj = c
}

// Connect connects to the session bus and subscribes to NotificationClosed.
func (f *Forwarder) Connect() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("NotificationClosed"),
	); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	f.mu.Lock()
	f.conn = conn
	f.obj = conn.Object(DBusBusName, DBusPath)
	f.signals = signals
	f.mu.Unlock()

	go f.processSignals(signals)

	f.logger.Debug("connected to notification daemon")
	return nil
}

// Disconnect closes the session bus connection.
func (f *Forwarder) Disconnect() error {
	f.mu.Lock()
	conn := f.conn
	signals := f.signals
	f.conn = nil
	f.obj = nil
	f.signals = nil
	f.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.RemoveSignal(signals)
	close(signals)
	return conn.Close()
}

// ServerInformation queries the notification daemon's identity.
func (f *Forwarder) ServerInformation() (ServerInfo, error) {
	obj := f.caller()
	if obj == nil {
		return ServerInfo{}, ErrNotConnected
	}

	var info ServerInfo
	err := obj.Call(DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("GetServerInformation: %w", err)
	}
	return info, nil
}

// Send forwards a toast and returns the notification ID the daemon assigned.
func (f *Forwarder) Send(t toast.Toast) (uint32, error) {
	obj := f.caller()
	if obj == nil {
		return 0, ErrNotConnected
	}

	n := NewNotification(t, f.appName)
	var id uint32
	if err := obj.Call(DBusInterface+".Notify", 0, n.Args()...).Store(&id); err != nil {
		return 0, fmt.Errorf("Notify: %w", err)
	}

	f.mu.Lock()
	f.byToast[t.ID] = id
	f.byNotif[id] = t.ID
	f.mu.Unlock()

	return id, nil
}

// CloseNotification closes a notification by its daemon ID.
func (f *Forwarder) CloseNotification(id uint32) error {
	obj := f.caller()
	if obj == nil {
		return ErrNotConnected
	}
	if err := obj.Call(DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("CloseNotification: %w", err)
	}
	return nil
}

// NotificationID returns the daemon ID a toast was forwarded as.
func (f *Forwarder) NotificationID(toastID string) (uint32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byToast[toastID]
	return id, ok
}

// Show implements toast.Sink.
func (f *Forwarder) Show(t toast.Toast) {
	id, err := f.Send(t)
	if err != nil {
		f.logger.Warn("failed to forward toast", "id", t.ID, "error", err)
		return
	}
	f.logger.Debug("toast forwarded", "id", t.ID, "dbus_id", id)
}

// Close implements toast.Sink. Expired toasts are left to the daemon,
// which runs its own timeout.
func (f *Forwarder) Close(t toast.Toast) {
	id, ok := f.forget(t.ID)
	if !ok || t.Status == toast.StatusExpired {
		return
	}
	if err := f.CloseNotification(id); err != nil {
		f.logger.Warn("failed to close notification", "id", t.ID, "dbus_id", id, "error", err)
	}
}

func (f *Forwarder) caller() Caller {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.obj
}

// forget drops the mapping for a toast.
func (f *Forwarder) forget(toastID string) (uint32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byToast[toastID]
	if ok {
		delete(f.byToast, toastID)
		delete(f.byNotif, id)
	}
	return id, ok
}

func (f *Forwarder) processSignals(ch <-chan *dbus.Signal) {
	for sig := range ch {
		f.handleSignal(sig)
	}
}

// handleSignal handles a NotificationClosed(id, reason) signal.
func (f *Forwarder) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != DBusInterface+".NotificationClosed" || len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}
	reason, ok := sig.Body[1].(uint32)
	if !ok {
		return
	}

	f.mu.Lock()
	toastID, known := f.byNotif[id]
	if known {
		delete(f.byNotif, id)
		delete(f.byToast, toastID)
	}
	handler := f.onClosed
	f.mu.Unlock()

	if !known {
		return
	}
	f.logger.Debug("notification closed", "id", toastID, "dbus_id", id, "reason", CloseReason(reason).String())
	if handler != nil {
		handler(toastID, CloseReason(reason))
	}
}
