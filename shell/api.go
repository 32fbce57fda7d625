package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/schafkopf/cache"
	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/config"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stich"
)

// round is the table as seen by one player: the contract, the cards played
// so far, their own hand and the doublings.
type round struct {
	rules *rules.Rules
	seq   *stich.Sequence
	self  card.PlayerIndex
	// dealt is the hand before the first card, hand what is left of it.
	dealt card.Hand
	hand  card.Hand
	exp   rules.Expensifiers
}

func newRound() *round {
	return &round{}
}

func (r *round) started() bool {
	return r.seq != nil && r.seq.CountPlayedCards() > 0
}

func loadRulesetFunc(_ *config.Config, path string) (*rules.Ruleset, error) {
	return rules.LoadRuleset(path)
}

func (sc *ShellController) loadRuleset(path string) error {
	rs, err := cache.Load(sc.config, path, loadRulesetFunc)
	if err != nil {
		return err
	}
	sc.ruleset = rs
	sc.rulesetPath = path
	return nil
}

func (sc *ShellController) rulesetCmd(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		if cmd.options["reload"] == "true" {
			cache.Forget(cmd.args[0])
		}
		if err := sc.loadRuleset(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	return msg(rulesetText(sc.ruleset, sc.rulesetPath)), nil
}

func payoutText(p rules.PayoutParams) string {
	return fmt.Sprintf("base %d, schneider/schwarz %d, %d per laufender from %d",
		p.Base, p.Extra, p.Laufende.PerLauf, p.Laufende.LBound)
}

func rulesetText(rs *rules.Ruleset, path string) string {
	var sb strings.Builder
	if path == "" {
		path = "built-in"
	}
	fmt.Fprintf(&sb, "Ruleset: %s\n", path)
	fmt.Fprintf(&sb, "  deck: %v, at most %d stoss\n", rs.KurzLang, rs.StossMax)
	if rc := rs.Rufspiel; rc != nil {
		fmt.Fprintf(&sb, "  rufspiel: %s\n", payoutText(rc.Payout))
	}
	if sc := rs.Solo; sc != nil {
		kinds := lo.Map(sc.Kinds, func(k rules.SoloKind, _ int) string { return k.String() })
		fmt.Fprintf(&sb, "  solo (%s): %s, tout %v, sie %v\n",
			strings.Join(kinds, ", "), payoutText(sc.Payout), sc.Tout, sc.Sie)
	}
	if bc := rs.Bettel; bc != nil {
		fmt.Fprintf(&sb, "  bettel: %d, stichzwang %v\n", bc.Price, bc.Stichzwang)
	}
	if rc := rs.Ramsch; rc != nil {
		fmt.Fprintf(&sb, "  ramsch: %d\n", rc.Price)
	}
	return sb.String()
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	self := sc.round.self
	sc.round = newRound()
	sc.round.self = self
	sc.lastSuggestion = nil
	sc.lastRanking = nil
	return msg("New round. You are player " + self.String()), nil
}

func (sc *ShellController) rules(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		if sc.round.rules == nil {
			return nil, errNoRules
		}
		return msg(sc.round.rules.String()), nil
	}
	if sc.round.started() {
		return nil, errors.New("the round already started, use `new` first")
	}
	r, err := rules.Parse(strings.Join(cmd.args, " "), sc.ruleset)
	if err != nil {
		return nil, err
	}
	if !sc.round.dealt.IsEmpty() && sc.round.dealt.Len() != r.KurzLang().CardsPerPlayer() {
		return nil, fmt.Errorf("your hand has %d cards, %v is played with %d",
			sc.round.dealt.Len(), r, r.KurzLang().CardsPerPlayer())
	}
	if declarer, ok := r.Declarer(); ok && declarer == sc.round.self &&
		!sc.round.dealt.IsEmpty() && !r.CanBePlayed(sc.round.dealt) {
		return nil, fmt.Errorf("%v cannot be played with %v", r, sc.round.dealt)
	}
	sc.round.rules = r
	sc.round.seq = stich.NewSequence(r.KurzLang())
	sc.round.hand = sc.round.dealt
	sc.round.exp.Stosse = nil
	return msg("Contract: " + r.String()), nil
}

func (sc *ShellController) me(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return msg("You are player " + sc.round.self.String()), nil
	}
	if sc.round.started() {
		return nil, errors.New("the round already started, use `new` first")
	}
	epi, err := card.ParsePlayerIndex(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.round.self = epi
	return msg("You are player " + epi.String()), nil
}

func (sc *ShellController) hand(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.round.hand.String()), nil
	}
	if sc.round.started() {
		return nil, errors.New("the round already started, use `new` first")
	}
	h, err := card.ParseHand(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	kl := sc.ruleset.KurzLang
	if sc.round.rules != nil {
		kl = sc.round.rules.KurzLang()
	}
	if h.Len() != kl.CardsPerPlayer() {
		return nil, fmt.Errorf("a %v hand has %d cards, not %d", kl, kl.CardsPerPlayer(), h.Len())
	}
	if !h.Set().Minus(kl.Set()).IsEmpty() {
		return nil, fmt.Errorf("%v is not played with %v", h.Set().Minus(kl.Set()), kl)
	}
	sc.round.dealt = h
	sc.round.hand = h
	return msg("Hand: " + h.String()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if rd.rules == nil {
		return nil, errNoRules
	}
	cards, err := card.ParseCards(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, errors.New("play <card> [<card> ...]")
	}
	for i, c := range cards {
		if err := rd.playOne(c); err != nil {
			// A line is played completely or not at all.
			rd.undo(i)
			return nil, err
		}
	}
	sc.lastSuggestion = nil
	return msg(sc.roundText()), nil
}

func (rd *round) playOne(c card.Card) error {
	if rd.seq.IsFinished() {
		return errors.New("the round is over")
	}
	epi := rd.seq.CurrentPlayer()
	if epi == rd.self {
		if rd.dealt.IsEmpty() {
			return errNoHand
		}
		if err := rd.rules.CheckPlay(rd.seq, rd.hand, epi, c); err != nil {
			return err
		}
		rd.hand.PlayCard(c)
	} else {
		switch {
		case !rd.rules.KurzLang().Contains(c):
			return fmt.Errorf("%v is not played with %v", c, rd.rules.KurzLang())
		case rd.seq.Played().Contains(c):
			return fmt.Errorf("%v was played already", c)
		case rd.hand.Contains(c):
			return fmt.Errorf("%v is in your hand", c)
		}
	}
	rd.seq.Zugeben(c, rd.rules)
	return nil
}

// undo takes back the last n cards, returning our own to the hand.
func (rd *round) undo(n int) {
	for range min(n, rd.seq.CountPlayedCards()) {
		c := rd.seq.Undo()
		if rd.seq.CurrentPlayer() == rd.self {
			rd.hand.AddCard(c)
		}
	}
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if !rd.started() {
		return nil, errors.New("nothing to undo")
	}
	n, err := strconv.Atoi(lo.FirstOr(cmd.args, "1"))
	if err != nil {
		return nil, err
	}
	rd.undo(n)
	sc.lastSuggestion = nil
	return msg(sc.roundText()), nil
}

func parsePlayer(args []string) (card.PlayerIndex, error) {
	if len(args) != 1 {
		return card.NoPlayer, errors.New("expected one player index")
	}
	return card.ParsePlayerIndex(args[0])
}

func (sc *ShellController) stoss(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if rd.rules == nil {
		return nil, errNoRules
	}
	epi, err := parsePlayer(cmd.args)
	if err != nil {
		return nil, err
	}
	if epi == rd.self {
		if !rd.rules.StossAllowed(rd.seq, rd.dealt, epi, rd.exp.Stosse) {
			return nil, fmt.Errorf("%v may not give a stoss now", epi)
		}
	} else if rd.started() || len(rd.exp.Stosse) >= rd.rules.StossMax() {
		return nil, errors.New("no more stoss is possible")
	}
	rd.exp.Stosse = append(rd.exp.Stosse, rules.Stoss{Epi: epi, NCardsPlayed: rd.seq.CountPlayedCards()})
	return msg(fmt.Sprintf("Stoss by %v, factor now %d", epi, rd.exp.StossDoublingFactor())), nil
}

func (sc *ShellController) double(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if rd.started() {
		return nil, errors.New("doublings happen before the first card")
	}
	epi, err := parsePlayer(cmd.args)
	if err != nil {
		return nil, err
	}
	rd.exp.Doublings[epi] = true
	return msg(fmt.Sprintf("%v doubled, factor now %d", epi, rd.exp.StossDoublingFactor())), nil
}

func (sc *ShellController) stock(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return msg(fmt.Sprintf("Stock: %d", sc.round.exp.Stock)), nil
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New("the stock cannot be negative")
	}
	sc.round.exp.Stock = n
	return msg(fmt.Sprintf("Stock: %d", n)), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.roundText()), nil
}

func (sc *ShellController) roundText() string {
	rd := sc.round
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are player %v\n", rd.self)
	if rd.rules == nil {
		sb.WriteString("Contract: -\n")
	} else {
		fmt.Fprintf(&sb, "Contract: %v\n", rd.rules)
	}
	fmt.Fprintf(&sb, "Hand: %v\n", rd.hand)
	if len(rd.exp.Stosse) > 0 || rd.exp.StossDoublingFactor() > 1 {
		stosse := lo.Map(rd.exp.Stosse, func(s rules.Stoss, _ int) string { return s.Epi.String() })
		fmt.Fprintf(&sb, "Stosse: %s (factor %d)\n", strings.Join(stosse, " "), rd.exp.StossDoublingFactor())
	}
	if rd.exp.Stock > 0 {
		fmt.Fprintf(&sb, "Stock: %d\n", rd.exp.Stock)
	}
	if rd.seq == nil {
		return sb.String()
	}
	i := 0
	for st := range rd.seq.VisibleStichs() {
		i++
		fmt.Fprintf(&sb, "%2d. %v", i, st)
		if st.IsFull() {
			fmt.Fprintf(&sb, " -> %v (%d)", rd.rules.WinnerIndex(st), st.Points())
		}
		sb.WriteString("\n")
	}
	if rd.seq.IsFinished() {
		sb.WriteString("The round is over.\n")
	} else {
		fmt.Fprintf(&sb, "Player %v to play\n", rd.seq.CurrentPlayer())
	}
	return sb.String()
}

func (sc *ShellController) allowed(cmd *shellcmd) (*Response, error) {
	rd := sc.round
	if rd.dealt.IsEmpty() {
		return nil, errNoHand
	}
	if rd.rules == nil {
		var sb strings.Builder
		for _, r := range sc.ruleset.AllowedRules(rd.self, rd.dealt) {
			sb.WriteString(r.String() + "\n")
		}
		return msg(sb.String()), nil
	}
	if rd.seq.IsFinished() {
		return nil, errors.New("the round is over")
	}
	if epi := rd.seq.CurrentPlayer(); epi != rd.self {
		return nil, fmt.Errorf("player %v is to play", epi)
	}
	return msg(rd.rules.AllAllowedCards(rd.seq, rd.hand).String()), nil
}
