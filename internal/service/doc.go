// Package service contains the application use cases. It coordinates the
// domain types with the store interfaces defined in internal/store and
// never depends on a concrete storage backend.
//
// Key components:
//
//   - TaskService: task CRUD with creator-or-admin authorization. Every
//     mutation returns after the store write; the notifications it implies
//     are planned by PlanCreateNotifications, PlanUpdateNotifications and
//     PlanDeleteNotifications and handed to an events.Emitter.
//   - NotificationService: a user's view of their own notifications.
//   - UserService: registration, login and profile lookup.
//
// Services return domain and store sentinel errors wrapped with context;
// the API layer maps them to status codes with errors.Is.
package service
