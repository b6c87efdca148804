package raggen

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner executes a batch of requests against one generator with bounded
// concurrency. Results keep the order of the input slice. A request that
// fails is reported in its Result and does not stop the batch; only context
// cancellation does.
type Runner struct {
	Generator   Generator
	TopK        int
	Concurrency int // parallel requests; values below 1 mean 1
	Logger      *slog.Logger
}

// Run generates answers for every request. The returned error is the
// context's when the batch was cut short; results up to that point are
// still returned.
func (r Runner) Run(ctx context.Context, reqs []Request) ([]Result, error) {
	workers := r.Concurrency
	if workers < 1 {
		workers = 1
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	results := make([]Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			segments, exec, err := r.Generator.Generate(ctx, req, r.TopK)
			res := Result{Query: req.Query, Segments: segments, Exec: exec}
			if err != nil {
				res.Err = err.Error()
				log.Error("generation failed", "qid", req.Query.ID, "error", err)
			} else {
				log.Info("generation done",
					"qid", req.Query.ID,
					"segments", len(segments),
					"input_tokens", exec.InputTokens,
					"output_tokens", exec.OutputTokens,
					"attempts", exec.Attempts)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
