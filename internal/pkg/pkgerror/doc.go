// Package pkgerror holds the store sentinels (ErrNotFound, ErrQuotaExceeded)
// and the Error type the router turns into a status code and JSON body.
//
// Constructors exist for each status the ingest endpoints answer with. The
// client sees Msg; the cause is logged, and for validation errors it is also
// returned as the reason.
package pkgerror
