package montecarlo

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
)

// SearchOptions are shared by SuggestCard and RankRules.
type SearchOptions struct {
	Branching Branching
	// Snapshot enables a snapshot table per thread.
	Snapshot  bool
	AlphaBeta bool
	// TableMemoryFraction is the share of system memory used by all
	// snapshot tables together.
	TableMemoryFraction float64
	Threads             int
	// Seed makes sampling reproducible. A nil seed samples from fresh
	// entropy.
	Seed []byte
	// CheckPoints cross-checks every searched leaf, see gametree.Config.
	CheckPoints bool
}

const defaultTableMemoryFraction = 0.25

func (o SearchOptions) threads() int {
	return max(o.Threads, 1)
}

func (o SearchOptions) rng() *frand.RNG {
	if o.Seed == nil {
		return frand.New()
	}
	seed := make([]byte, 32)
	copy(seed, o.Seed)
	return frand.NewCustom(seed, 1024, 12)
}

// configs returns one gametree.Config per thread.
func (o SearchOptions) configs() []gametree.Config {
	cfgs := make([]gametree.Config, o.threads())
	fraction := o.TableMemoryFraction
	if fraction <= 0 {
		fraction = defaultTableMemoryFraction
	}
	for t := range cfgs {
		cfgs[t] = gametree.Config{
			NewFilter:   o.Branching.Factory(),
			AlphaBeta:   o.AlphaBeta,
			CheckPoints: o.CheckPoints,
		}
		if o.Snapshot {
			cfgs[t].Table = gametree.NewSnapshotTable(fraction, len(cfgs))
		}
	}
	return cfgs
}

type job struct {
	iteration int
	deal      card.AHand
}

// runDeals feeds deals to threads workers until the deals run out or ctx
// is done. Cancellation is only noticed between deals.
func runDeals(ctx context.Context, threads int, deals iter.Seq[card.AHand],
	work func(thread int, j job) error) error {

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job)
	g.Go(func() error {
		defer close(jobs)
		i := 0
		for deal := range deals {
			select {
			case jobs <- job{iteration: i, deal: deal}:
				i++
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for t := range threads {
		g.Go(func() error {
			for j := range jobs {
				if gctx.Err() != nil {
					return nil
				}
				if err := work(t, j); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
