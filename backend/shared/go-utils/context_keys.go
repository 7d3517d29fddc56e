// go-utils/context_keys.go

package utils

// ctxKey is unexported to prevent collisions.
type ctxKey string

// CtxKeyRequestID stores the per-request correlation id set by the logging middleware.
const CtxKeyRequestID ctxKey = "requestID"
