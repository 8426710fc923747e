// Package memory provides in-process implementations of the store
// interfaces. They share one lock so that cross-entity checks, such as
// an assignee having to exist, behave like the Postgres foreign keys.
// Data does not survive a restart.
package memory
