package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/logging"
)

// pruneStep is one stale-row predicate. Steps of one run match disjoint rows.
type pruneStep struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

// removeStale runs every step concurrently and waits for all of them. The
// result is the error of the first failed step in declaration order, so the
// same failures always produce the same error. A panicking step is reported
// as a fatal OS error.
func removeStale(ctx context.Context, log logging.Logger, table string, steps ...pruneStep) error {
	log = log.With("table", table, "run_id", uuid.NewString())
	ctx = context.WithoutCancel(ctx)

	errs := make([]error, len(steps))
	counts := make([]int64, len(steps))

	var g errgroup.Group
	for i, step := range steps {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = common.OS(table+".remove_stale."+step.name, fmt.Errorf("panic: %v", r))
				}
			}()
			counts[i], errs[i] = step.run(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error(ctx, "stale removal join failed", "error", err)
		return common.OS(table+".remove_stale", err)
	}

	for i, err := range errs {
		if err != nil {
			log.Error(ctx, "stale removal failed", "step", steps[i].name, "error", err)
			return err
		}
	}

	args := make([]any, 0, 2*len(steps))
	for i, step := range steps {
		args = append(args, step.name, counts[i])
	}
	log.Info(ctx, "stale rows removed", args...)
	return nil
}
