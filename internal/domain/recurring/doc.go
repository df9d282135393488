// Package recurring contains the domain model for recurring invoice
// generation: contracts, contract groups with their billing cadence, the
// invoices produced for them and the invoicer run tokens grouping one
// generation pass.
//
// The central invariants live here:
//   - a group's NextInvoiceDate is always the minimum next invoice date over
//     its generation-eligible contracts, recomputed from live contract state;
//   - recurrence arithmetic is calendar-aware and clamps month/year overflow
//     to the last valid day of the target month;
//   - contracts advance their own billing cursor, so a contract already
//     invoiced past a date is never selected again for it.
package recurring
