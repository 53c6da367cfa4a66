// Package audio plays a per-level sound when a toast is shown.
package audio
