// Package trips persists trip log rows: one row per logged stop of a delivery
// plus the drop 0 placeholder written when a delivery is started.
//
// # Data Model
//
// Rows are unique by (dlf_code, drop_number) and by client_ref. Header columns
// (driver, helper, plate_no, trip) and the company times are nullable; the
// services layer folds rows of one delivery into a single view and keeps the
// company times equal across them.
//
// Status follows models.Status. Update and Delete refuse SYNCED rows with
// common.ErrAlreadySynced. Every write bumps the revision column, and
// MarkSynced only moves a PENDING row whose revision still equals the one the
// sync engine sent.
//
// Storage order is insertion order (id), which is the order the grouping
// reducer relies on for header back-fill.
package trips
