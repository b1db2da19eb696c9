package pkglog

import "context"

type (
	chainIDContextKey  struct{}
	uploadIDContextKey struct{}
)

// GetCorrelationID returns the correlation ID stored in the context.
//
// Middleware is expected to set this value early in the request lifecycle so
// it can be attached to logs and propagated to downstream calls.
func GetCorrelationID(ctx context.Context) string {
	clm, ok := ctx.Value(chainIDContextKey{}).(string)
	if !ok {
		return "[invalid_chain_id]"
	}
	return clm
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, chainIDContextKey{}, cid)
}

// GetUploadID returns the upload being ingested, or "" outside an ingestion.
func GetUploadID(ctx context.Context) string {
	id, _ := ctx.Value(uploadIDContextKey{}).(string)
	return id
}

// SetUploadID tags the context so every log line of one ingestion carries its upload id.
func SetUploadID(ctx context.Context, uploadID string) context.Context {
	return context.WithValue(ctx, uploadIDContextKey{}, uploadID)
}
