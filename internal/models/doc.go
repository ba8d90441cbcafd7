// Package models defines the durable domain records for settleup.
//
// # Models
//
//   - Group: a named roster of member identifiers that share expenses
//   - Expense: an immutable record of one payment split among participants
//
// Member identifiers are opaque strings: the core never inspects them, only
// compares them. Balances and settlement transfers are deliberately NOT
// modeled here — they are derived values recomputed per request by
// internal/calculator and invalidated by any new expense, so persisting
// them would only create staleness bugs.
//
// # Design principles
//
//  1. Monetary fields are money.Money (integer minor units), never floats.
//  2. Expenses are append-only; removal is a soft delete via the Active flag.
//  3. Records reference each other by ID string, not by pointer.
package models
