package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/schafkopf/config"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/handiter"
	"github.com/domino14/schafkopf/montecarlo"
	"github.com/domino14/schafkopf/rules"
)

// searchSettings are the config defaults overridden by command options.
type searchSettings struct {
	samples           int
	depthThreshold    int
	mode              handiter.Mode
	strategy          gametree.Strategy
	stoppingCondition montecarlo.StoppingCondition
	logPath           string
	opts              montecarlo.SearchOptions
}

func (sc *ShellController) searchSettings(options map[string]string) (*searchSettings, error) {
	cfg := sc.config
	ss := &searchSettings{
		samples:        cfg.GetInt(config.ConfigSamples),
		depthThreshold: cfg.GetInt(config.ConfigDepthThreshold),
		logPath:        cfg.GetString(config.ConfigSimLogPath),
		opts: montecarlo.SearchOptions{
			Snapshot:            cfg.GetBool(config.ConfigSnapshotCache),
			AlphaBeta:           cfg.GetBool(config.ConfigAlphaBeta),
			TableMemoryFraction: cfg.GetFloat64(config.ConfigSnapshotTableMemoryFraction),
			Threads:             cfg.GetInt(config.ConfigThreads),
		},
	}
	if seed := cfg.GetString(config.ConfigSeed); seed != "" {
		ss.opts.Seed = []byte(seed)
	}
	var err error
	if ss.opts.Branching, err = montecarlo.ParseBranching(cfg.GetString(config.ConfigBranching)); err != nil {
		return nil, err
	}
	if ss.mode, err = handiter.ParseMode(cfg.GetString(config.ConfigIterationMode)); err != nil {
		return nil, err
	}
	if ss.strategy, err = gametree.ParseStrategy(cfg.GetString(config.ConfigStrategy)); err != nil {
		return nil, err
	}

	for opt, val := range options {
		switch opt {
		case "samples":
			ss.samples, err = strconv.Atoi(val)
		case "threads":
			ss.opts.Threads, err = strconv.Atoi(val)
		case "depth":
			ss.depthThreshold, err = strconv.Atoi(val)
		case "mode":
			ss.mode, err = handiter.ParseMode(val)
		case "branching":
			ss.opts.Branching, err = montecarlo.ParseBranching(val)
		case "strategy":
			ss.strategy, err = gametree.ParseStrategy(val)
		case "snapshot":
			ss.opts.Snapshot, err = strconv.ParseBool(val)
		case "alphabeta":
			ss.opts.AlphaBeta, err = strconv.ParseBool(val)
		case "seed":
			ss.opts.Seed = []byte(val)
		case "checkpoints":
			ss.opts.CheckPoints, err = strconv.ParseBool(val)
		case "log":
			ss.logPath = val
		case "stop":
			switch val {
			case "95":
				ss.stoppingCondition = montecarlo.Stop95
			case "99":
				ss.stoppingCondition = montecarlo.Stop99
			case "none":
				ss.stoppingCondition = montecarlo.StopNone
			default:
				err = errors.New("only allowed values are 95, 99 and none for stopping condition")
			}
		default:
			err = errors.New("option " + opt + " not recognized")
		}
		if err != nil {
			return nil, err
		}
	}
	if ss.samples <= 0 {
		return nil, errors.New("samples must be positive")
	}
	return ss, nil
}

// searchContext can be canceled by Cleanup.
func (sc *ShellController) searchContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sc.cancel = cancel
	return log.Logger.WithContext(ctx), cancel
}

func (sc *ShellController) suggest(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if rd.rules == nil {
		return nil, errNoRules
	}
	if rd.dealt.IsEmpty() {
		return nil, errNoHand
	}
	if rd.seq.IsFinished() {
		return nil, errors.New("the round is over")
	}
	if epi := rd.seq.CurrentPlayer(); epi != rd.self {
		return nil, fmt.Errorf("player %v is to play", epi)
	}
	ss, err := sc.searchSettings(cmd.options)
	if err != nil {
		return nil, err
	}
	var logStream io.Writer
	if ss.logPath != "" {
		f, err := os.Create(ss.logPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		logStream = f
		sc.showMessage("search will log to " + ss.logPath)
	}

	ctx, cancel := sc.searchContext()
	defer cancel()
	log.Debug().Int("samples", ss.samples).Int("threads", ss.opts.Threads).
		Str("branching", ss.opts.Branching.String()).Msg("will-suggest")
	start := time.Now()
	sugg, err := montecarlo.SuggestCard(ctx, montecarlo.SuggestParams{
		Rules:             rd.rules,
		Seq:               rd.seq,
		Hand:              rd.hand,
		Expensifiers:      rd.exp,
		Strategy:          ss.strategy,
		Mode:              ss.mode,
		DepthThreshold:    ss.depthThreshold,
		Samples:           ss.samples,
		StoppingCondition: ss.stoppingCondition,
		LogStream:         logStream,
		SearchOptions:     ss.opts,
	})
	if err != nil {
		return nil, err
	}
	sc.lastSuggestion = sugg
	return msg(fmt.Sprintf("%sBest card: %v (%.1fs)", sugg, sugg.Best(), time.Since(start).Seconds())), nil
}

type rankedRules struct {
	rules   *rules.Rules
	ranking *montecarlo.Ranking
}

func (sc *ShellController) rank(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if rd.dealt.IsEmpty() {
		return nil, errNoHand
	}
	ss, err := sc.searchSettings(cmd.options)
	if err != nil {
		return nil, err
	}
	candidates := sc.ruleset.AllowedRules(rd.self, rd.dealt)
	if len(cmd.args) > 0 {
		r, err := rules.Parse(strings.Join(cmd.args, " "), sc.ruleset)
		if err != nil {
			return nil, err
		}
		candidates = []*rules.Rules{r}
	}
	if len(candidates) == 0 {
		return msg("No contract can be announced with this hand."), nil
	}

	ctx, cancel := sc.searchContext()
	defer cancel()
	var ranked []rankedRules
	for _, r := range candidates {
		ranking, err := montecarlo.RankRules(ctx, montecarlo.RankParams{
			Rules:         r,
			Epi:           rd.self,
			Hand:          rd.dealt,
			Expensifiers:  rd.exp,
			Samples:       ss.samples,
			SearchOptions: ss.opts,
		})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", r, err)
		}
		log.Debug().Str("rules", r.String()).Float64("avg", ranking.Payout[gametree.SelfishMin].Avg()).
			Msg("ranked")
		ranked = append(ranked, rankedRules{rules: r, ranking: ranking})
	}
	slices.SortStableFunc(ranked, func(a, b rankedRules) int {
		return montecarlo.CompareRankings(a.ranking, b.ranking)
	})
	sc.lastRanking = ranked
	return msg(rankingText(ranked)), nil
}

func rankingText(ranked []rankedRules) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%3s %-40s%-28s%-7s%s\n", "#", "Contract", "selfish-min", "prior", "deals")
	for i, rr := range ranked {
		fmt.Fprintf(&sb, "%3d %-40s%-28s%-7.2f%d\n", i+1, rr.rules, rr.ranking.Payout[gametree.SelfishMin],
			rr.ranking.Occurrence, rr.ranking.Deals)
	}
	return sb.String()
}
