// Package models defines the core domain models for SplitVision.
//
// # Models
//
//   - Session: one digitized receipt plus everything derived from talking about it
//   - Item: a receipt line with a price and weighted assignment entries
//   - Assignment: a (person, weight) pair scoped to one item
//   - Proposal: an assignment update coming from the command interpreter
//   - PersonSettlement: calculated result for one person (never stored)
//   - Payment: who actually paid the restaurant, used for settle-up transfers
//   - Message: one line of the assignment chat transcript
//   - User: registered account that owns sessions
//
// # Design Principles
//
//  1. People are identified by the names the command interpreter produced.
//     Names are compared exactly, including case.
//  2. Settlements are a projection of items, tax and tip. They are recomputed
//     on every change and never persisted.
//  3. Relationships use ID strings instead of pointers.
package models
