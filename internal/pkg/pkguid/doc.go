// Package pkguid provides helpers for generating unique identifiers.
//
// The codebase uses these interfaces to avoid hard-coding a specific UID
// strategy. Uploads and requests get UUIDv7 strings; ingestion events get
// time-ordered Snowflake IDs.
package pkguid
