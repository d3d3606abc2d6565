package fmmap

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FlushAll flushes files concurrently with at most limit flushes in flight
// (unlimited if limit <= 0). It returns the first error; files not yet
// started when ctx is cancelled are skipped.
func FlushAll(ctx context.Context, limit int, files ...*MmapFileMut) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, f := range files {
		if f == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f.Flush()
		})
	}

	return g.Wait()
}
