// Package api handles incoming HTTP and websocket requests, request
// validation and response formatting. It adapts external clients to the
// task, notification and user services.
package api
