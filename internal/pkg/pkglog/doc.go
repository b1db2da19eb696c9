// Package pkglog contains logging helpers used across the application.
//
// It is built around slog and keeps logs consistent by:
//   - Initializing a JSON handler with stable keys and an adjustable level.
//   - Attaching request correlation IDs and upload IDs (when present) to each
//     log record.
package pkglog
