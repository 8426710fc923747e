// Package realtime pushes events to connected users.
//
// A Registry maps each user to at most one live Channel. The in-process Hub
// is the default Registry; RedisBridge wraps a Hub so that a publish on any
// instance reaches the user wherever they are connected. Websocket
// connections are the only Channel implementation used in production.
package realtime
