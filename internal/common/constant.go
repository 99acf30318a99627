// Package common contains shared constants and sentinel errors used across
// tripkeeper components.
package common

// ManifestTokenHeaderName carries the static token expected by the
// manifest/reference-data API.
const ManifestTokenHeaderName = "X-Api-Token"

// IdempotencyKeyHeaderName carries the client-generated batch key on
// ingestion requests.
const IdempotencyKeyHeaderName = "Idempotency-Key"

// SessionUserKey is the metadata key holding the id of the logged-in user.
const SessionUserKey = "session_user_id"
