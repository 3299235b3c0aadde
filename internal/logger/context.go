package logger

import "context"

type fieldsKey struct{}

// WithFields attaches key/value pairs to ctx; every log line written with
// the returned context carries them as structured attributes.
func WithFields(ctx context.Context, kv ...any) context.Context {
	if len(kv) == 0 {
		return ctx
	}
	existing := fieldsFromContext(ctx)
	merged := make([]any, 0, len(existing)+len(kv))
	merged = append(merged, existing...)
	merged = append(merged, kv...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

func fieldsFromContext(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	if fields, ok := ctx.Value(fieldsKey{}).([]any); ok {
		return fields
	}
	return nil
}
