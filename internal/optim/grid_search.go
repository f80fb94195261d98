// Package optim sweeps solver options over a grid of values.
package optim

import (
	"context"
	"errors"
	"math"
)

// EvalFunc runs one trial and returns its metrics.
type EvalFunc func(ctx context.Context, params map[string]float64) (map[string]float64, error)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of trials a search runs.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every combination, the last parameter varying fastest.
// The best parameters minimise metricName over the trials that succeeded;
// they are nil if none did. Failed trials are kept with their error.
func (g *GridSearch) Search(ctx context.Context, eval EvalFunc, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, metricName, &best, &bestParams, &trials)
	return bestParams, best, trials, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval EvalFunc,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		metrics, err := eval(ctx, current)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		*trials = append(*trials, Trial{Params: current, Metrics: metrics, Err: err})
		if err != nil {
			return nil
		}

		val, ok := metrics[metricName]
		if ok && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, metricName, best, bestParams, trials); err != nil {
			return err
		}
	}
	return nil
}
