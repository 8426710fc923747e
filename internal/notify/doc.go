// Package notify turns notification events into stored notifications and
// real-time pushes.
package notify
