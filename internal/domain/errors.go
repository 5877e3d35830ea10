package domain

import "errors"

// Error taxonomy shared across the ingestion, scoring and analytics paths.
// Per-source and per-record ingestion failures are recovered locally and
// reported in the refresh summary; the remaining errors surface to callers.
var (
	// ErrSourceUnavailable marks one ingestion source that failed or timed
	// out. Non-fatal: the batch continues with the remaining sources.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUpsertFailed marks one catalog write that failed. Non-fatal:
	// sibling upserts in the same batch are unaffected.
	ErrUpsertFailed = errors.New("upsert failed")

	// ErrQueryFailed marks a store read failure. Surfaced to the caller as
	// the operation's error; there is no partial result.
	ErrQueryFailed = errors.New("query failed")

	// ErrWriteFailed marks an analytics or preference write failure.
	ErrWriteFailed = errors.New("write failed")

	// ErrNotFound means a requested product or policy id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the caller supplied a malformed request, such
	// as an empty product id list or an unknown action name.
	ErrInvalidInput = errors.New("invalid input")
)
