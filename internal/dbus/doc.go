// Package dbus forwards toasts to the desktop notification daemon over the
// org.freedesktop.Notifications D-Bus interface. Each shown toast becomes a
// Notify call and each closed toast a CloseNotification call; closes made
// on the desktop are reported back through the NotificationClosed signal.
package dbus
