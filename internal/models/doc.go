// Package models defines the core domain models for FairShare.
//
// # Models
//
//   - Bill: the full editable state of one receipt-splitting session,
//     including participants, line items, per-item split entries, and the
//     tax/tip modifiers
//   - Settlement: the derived per-person totals for a Bill
//
// A Bill is the unit of editing: mutations in the bill package replace the
// touched substructures and produce a new Bill, so a Bill value that has
// been handed out is never modified again. A Settlement is never stored;
// it is recomputed from the current Bill after every edit.
//
// # Design Principles
//
//  1. Value types with no behavior: all computation lives in the calculator
//     and bill packages
//  2. ID strings instead of pointers for relationships, avoiding circular
//     references between items, split entries, and participants
//  3. JSON tags follow the receipt-parser wire format (snake_case), so the
//     same structs decode parser candidates and serve API responses
package models
