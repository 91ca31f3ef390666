package embedding

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EmbedBatched splits texts into batches of batchSize and embeds up to
// parallel batches concurrently. Output order matches input order. Any batch
// failure fails the whole call.
func EmbedBatched(ctx context.Context, e Embedder, texts []string, batchSize, parallel int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	if parallel <= 0 {
		parallel = 4
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		g.Go(func() error {
			vecs, err := e.Embed(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
