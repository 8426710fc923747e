// Package auth issues and validates the JWT access tokens used by the HTTP
// and websocket layers, and hashes passwords with bcrypt.
package auth
