// Package reconcile keeps the on-disk service artifacts in step with the
// registry (services.yml).
//
// Two modes share one diff computation. Check walks every record and
// collects the complete finding set without touching the filesystem.
// Create materializes only what is missing and rewrites managed marker
// regions; anything that already exists is left byte-for-byte alone.
//
// Per artifact the lifecycle is create-only: absent artifacts are
// materialized or reported, present ones are kept. Nothing here deletes —
// a record removed from the registry leaves its artifacts in place.
package reconcile
