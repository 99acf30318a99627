// Package deliveries persists cached delivery manifests: the delivery header
// keyed by its code and the ordered list of expected customer stops.
//
// Upsert replaces the header and the whole stop list. It issues several
// statements, so callers that need the replace to be atomic pass a *sql.Tx
// (see dbx.WithTx).
//
// Rows are never filtered by age here. Day scoping is a read concern of the
// cache manager, which calls ListByDate with the current local date.
package deliveries
