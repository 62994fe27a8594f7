package retry

import "context"

type retrierKey struct{}

// ToContext returns a copy of ctx carrying retrier.
func ToContext(ctx context.Context, retrier Retrier) context.Context {
	return context.WithValue(ctx, retrierKey{}, retrier)
}

// FromContext returns the retrier carried by ctx, or nil if none was set.
func FromContext(ctx context.Context) Retrier {
	retrier, ok := ctx.Value(retrierKey{}).(Retrier)
	if !ok {
		return nil
	}
	return retrier
}

// FromContextOrNoop returns the retrier carried by ctx, or a NoopRetrier.
func FromContextOrNoop(ctx context.Context) Retrier {
	if r := FromContext(ctx); r != nil {
		return r
	}
	return NoopRetrier{}
}
