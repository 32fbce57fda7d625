package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/stats"
)

const defaultHistogramBins = 10

// histogram draws the payout distribution of a card from the last
// suggestion, or of a contract from the last ranking given its number.
func (sc *ShellController) histogram(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("histogram <card> or histogram <ranking number>")
	}
	st := gametree.SelfishMin
	bins := defaultHistogramBins
	var err error
	if v, ok := cmd.options["strategy"]; ok {
		if st, err = gametree.ParseStrategy(v); err != nil {
			return nil, err
		}
	}
	if v, ok := cmd.options["bins"]; ok {
		if bins, err = strconv.Atoi(v); err != nil {
			return nil, err
		}
	}

	var ps *stats.PayoutStats
	var title string
	if n, err := strconv.Atoi(cmd.args[0]); err == nil {
		if n < 1 || n > len(sc.lastRanking) {
			return nil, errors.New("no such contract in the last ranking, run `rank` first")
		}
		rr := sc.lastRanking[n-1]
		if !rr.ranking.Active.Contains(st) {
			return nil, fmt.Errorf("%v was not computed", st)
		}
		ps, title = rr.ranking.Payout[st], rr.rules.String()
	} else {
		c, err := card.FromString(cmd.args[0])
		if err != nil {
			return nil, err
		}
		if sc.lastSuggestion == nil {
			return nil, errors.New("please run `suggest` first")
		}
		if !sc.lastSuggestion.Active.Contains(st) {
			return nil, fmt.Errorf("%v was not computed", st)
		}
		cs, ok := sc.lastSuggestion.Find(c)
		if !ok {
			return nil, fmt.Errorf("%v was not suggested", c)
		}
		ps, title = cs.Payout[st], c.String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %v: %v\n", title, st, ps)
	if err := ps.FprintHistogram(&sb, bins); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}
