// Package services implements the record lifecycle of tripkeeper on top of
// the local store: user accounts, trip logs grouped into deliveries, fuel
// records and delivery expenses.
//
// Trip logs and fuel records move DRAFT -> PENDING -> SYNCED. Services only
// ever perform the first transition (Finalize); the sync engine performs the
// second. Nothing moves backwards, and SYNCED rows are read-only here.
//
// Every call reaches the database through Storage.Repos, so a service used
// before the store is opened fails with common.ErrNotInitialized.
package services
