package lsp

import (
	"context"
)

// Callbacks is the host-environment surface injected at startup. The
// embedding environment knows which buckets, measurements and tags exist;
// the server only asks. Implementations may block on I/O; the server awaits
// them outside the store lock.
type Callbacks interface {
	GetBuckets(ctx context.Context) ([]string, error)
	GetMeasurements(ctx context.Context, bucket string) ([]string, error)
	GetTagKeys(ctx context.Context, bucket string) ([]string, error)
	GetTagValues(ctx context.Context, bucket, tagKey string) ([]string, error)
}

// noopCallbacks is used when the host injects nothing.
type noopCallbacks struct{}

func (noopCallbacks) GetBuckets(context.Context) ([]string, error) { return nil, nil }

func (noopCallbacks) GetMeasurements(context.Context, string) ([]string, error) {
	return nil, nil
}

func (noopCallbacks) GetTagKeys(context.Context, string) ([]string, error) {
	return nil, nil
}

func (noopCallbacks) GetTagValues(context.Context, string, string) ([]string, error) {
	return nil, nil
}
