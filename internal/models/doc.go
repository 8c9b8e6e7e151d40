// Package models defines the core domain models for the gift exchange.
//
// # Entities
//
//   - User / UserSettings: a registered person and their preferences
//   - Game / Participant: an exchange and its members, including the drawn assignment
//   - AnonymousMessage: a message between a giver and a receiver that hides the sender
//   - GiftConfirmation: per (game, user) sent/received/rating state
//   - ReminderRecord: sentinel row preventing a reminder from being sent twice
//
// # Design Principles
//
// 1. Relationships use ID strings instead of pointers.
// 2. User IDs are opaque identities supplied by the chat transport.
// 3. Timestamps are time.Time in UTC; event dates are calendar dates at UTC midnight.
package models
