// Package rules implements every Schafkopf contract as one tagged union:
// legality of card plays, stich winners, payouts, payout bounds for pruning,
// card equivalence and snapshot keys for the search.
package rules

import (
	"errors"
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/stich"
	"github.com/domino14/schafkopf/trumpf"
)

var (
	ErrRulesViolation  = errors.New("rules violation")
	ErrInvalidCardPlay = errors.New("invalid card play")
	ErrWrongTurn       = errors.New("wrong turn")
)

// PointsToWin is the number of card points the primary party needs.
const PointsToWin = 61

type Kind uint8

const (
	KindRufspiel Kind = iota
	KindSolo
	KindBettel
	KindRamsch
)

func (k Kind) String() string {
	switch k {
	case KindRufspiel:
		return "rufspiel"
	case KindSolo:
		return "solo"
	case KindBettel:
		return "bettel"
	case KindRamsch:
		return "ramsch"
	}
	return "unknown"
}

// SoloKind selects the trump structure of a solo-like contract.
type SoloKind uint8

const (
	Farbsolo SoloKind = iota
	Wenz
	Geier
	Farbwenz
	Farbgeier
)

func (k SoloKind) hasFarbe() bool {
	return k == Farbsolo || k == Farbwenz || k == Farbgeier
}

func (k SoloKind) String() string {
	return [...]string{"Solo", "Wenz", "Geier", "Wenz", "Geier"}[k]
}

// SoloMode is the win condition of a solo-like contract.
type SoloMode uint8

const (
	PointBased SoloMode = iota
	Tout
	Sie
)

// LaufendeParams configures payment for runs of top trumps.
type LaufendeParams struct {
	PerLauf int
	LBound  int
}

// PayoutParams is the tarif of a contract.
type PayoutParams struct {
	Base int
	// Extra is paid for schneider and again for schwarz.
	Extra    int
	Laufende LaufendeParams
}

// StockPolicy decides how a Rufspiel settles the stock.
type StockPolicy uint8

const (
	// StockHalf: each primary player takes stock/2 on a win and pays stock/2
	// on a loss.
	StockHalf StockPolicy = iota
	StockIgnore
)

type Rufspiel struct {
	Caller card.PlayerIndex
	Farbe  card.Farbe
	Payout PayoutParams
	Stock  StockPolicy
}

func (rs *Rufspiel) Rufsau() card.Card {
	return card.New(rs.Farbe, card.Ass)
}

type Solo struct {
	Declarer card.PlayerIndex
	Kind     SoloKind
	Farbe    card.Farbe
	Mode     SoloMode
	Payout   PayoutParams
}

type Bettel struct {
	Declarer   card.PlayerIndex
	Stichzwang bool
	Price      int
}

// DurchmarschKind selects how a Ramsch player can turn a loss into a win.
type DurchmarschKind uint8

const (
	DurchmarschNone DurchmarschKind = iota
	DurchmarschAll
	DurchmarschAtLeast
)

type Durchmarsch struct {
	Kind DurchmarschKind
	// Points is the threshold for DurchmarschAtLeast.
	Points int
}

// Jungfrau selects how players without a stich affect a Ramsch payout.
type Jungfrau uint8

const (
	JungfrauNone Jungfrau = iota
	JungfrauDoubleAll
	JungfrauDoubleIndividuallyOnce
	JungfrauDoubleIndividuallyMultiple
)

type Ramsch struct {
	Price       int
	Durchmarsch Durchmarsch
	Jungfrau    Jungfrau
}

// Rules is one concrete contract. Exactly one of the variant pointers is set,
// matching kind.
type Rules struct {
	kind     Kind
	kurzlang card.KurzLang
	stossMax int
	decider  *trumpf.Decider
	// pointsAsPayout switches point-based payouts to normalized primary
	// points.
	pointsAsPayout bool

	rufspiel *Rufspiel
	solo     *Solo
	bettel   *Bettel
	ramsch   *Ramsch
}

type Option func(*Rules)

func WithKurzLang(kl card.KurzLang) Option {
	return func(r *Rules) { r.kurzlang = kl }
}

func WithStossMax(n int) Option {
	return func(r *Rules) { r.stossMax = n }
}

const defaultStossMax = 4

func newRules(kind Kind, d *trumpf.Decider, opts []Option) *Rules {
	r := &Rules{kind: kind, decider: d, stossMax: defaultStossMax}
	for _, o := range opts {
		o(r)
	}
	return r
}

func NewRufspiel(caller card.PlayerIndex, f card.Farbe, params PayoutParams, stock StockPolicy, opts ...Option) (*Rules, error) {
	if f == card.Herz {
		return nil, fmt.Errorf("%w: cannot call the Herz-Sau", ErrRulesViolation)
	}
	if !caller.Valid() {
		return nil, fmt.Errorf("%w: invalid caller %v", ErrRulesViolation, caller)
	}
	r := newRules(KindRufspiel, trumpf.Solo(card.Herz), opts)
	r.rufspiel = &Rufspiel{Caller: caller, Farbe: f, Payout: params, Stock: stock}
	return r, nil
}

func soloDecider(kind SoloKind, f card.Farbe) *trumpf.Decider {
	switch kind {
	case Farbsolo:
		return trumpf.Solo(f)
	case Wenz:
		return trumpf.Wenz()
	case Geier:
		return trumpf.Geier()
	case Farbwenz:
		return trumpf.Farbwenz(f)
	case Farbgeier:
		return trumpf.Farbgeier(f)
	}
	panic(fmt.Sprintf("unknown solo kind %d", kind))
}

func NewSolo(declarer card.PlayerIndex, kind SoloKind, f card.Farbe, mode SoloMode, params PayoutParams, opts ...Option) (*Rules, error) {
	if !declarer.Valid() {
		return nil, fmt.Errorf("%w: invalid declarer %v", ErrRulesViolation, declarer)
	}
	if mode == Sie && kind != Farbsolo {
		return nil, fmt.Errorf("%w: Sie requires a Farbsolo", ErrRulesViolation)
	}
	r := newRules(KindSolo, soloDecider(kind, f), opts)
	r.solo = &Solo{Declarer: declarer, Kind: kind, Farbe: f, Mode: mode, Payout: params}
	return r, nil
}

func NewBettel(declarer card.PlayerIndex, stichzwang bool, price int, opts ...Option) (*Rules, error) {
	if !declarer.Valid() {
		return nil, fmt.Errorf("%w: invalid declarer %v", ErrRulesViolation, declarer)
	}
	r := newRules(KindBettel, trumpf.NewBettel(), opts)
	r.bettel = &Bettel{Declarer: declarer, Stichzwang: stichzwang, Price: price}
	return r, nil
}

func NewRamsch(price int, dm Durchmarsch, jf Jungfrau, opts ...Option) *Rules {
	r := newRules(KindRamsch, trumpf.Solo(card.Herz), opts)
	// Nobody may stoss in Ramsch.
	r.stossMax = 0
	r.ramsch = &Ramsch{Price: price, Durchmarsch: dm, Jungfrau: jf}
	return r
}

func (r *Rules) Kind() Kind {
	return r.kind
}

func (r *Rules) KurzLang() card.KurzLang {
	return r.kurzlang
}

func (r *Rules) StossMax() int {
	return r.stossMax
}

// Variant accessors; nil unless the contract is of that kind.
func (r *Rules) Rufspiel() *Rufspiel { return r.rufspiel }
func (r *Rules) Solo() *Solo         { return r.solo }
func (r *Rules) Bettel() *Bettel     { return r.bettel }
func (r *Rules) Ramsch() *Ramsch     { return r.ramsch }

func (r *Rules) TrumpfDecider() *trumpf.Decider {
	return r.decider
}

func (r *Rules) TrumpfOrFarbe(c card.Card) trumpf.TrumpfOrFarbe {
	return r.decider.TrumpfOrFarbe(c)
}

func (r *Rules) CompareCards(a, b card.Card) (int, bool) {
	return r.decider.CompareCards(a, b)
}

func (r *Rules) SortCardsFirstTrumpfThenFarbe(cards []card.Card) {
	r.decider.SortCardsFirstTrumpfThenFarbe(cards)
}

// Declarer returns the announcing player; Ramsch has none.
func (r *Rules) Declarer() (card.PlayerIndex, bool) {
	switch r.kind {
	case KindRufspiel:
		return r.rufspiel.Caller, true
	case KindSolo:
		return r.solo.Declarer, true
	case KindBettel:
		return r.bettel.Declarer, true
	}
	return card.NoPlayer, false
}

// beats reports whether c takes the stich from the card currently winning it.
func (r *Rules) beats(c, best card.Card) bool {
	if cmp, ok := r.decider.CompareCards(c, best); ok {
		return cmp > 0
	}
	return r.decider.TrumpfOrFarbe(c).IsTrumpf()
}

func (r *Rules) preliminaryWinnerPos(s *stich.Stich) int {
	best := 0
	for i := 1; i < s.Size(); i++ {
		if r.beats(s.At(i), s.At(best)) {
			best = i
		}
	}
	return best
}

// PreliminaryWinnerIndex returns who currently takes a non-empty stich. Equal
// cards cannot occur, so earlier cards win ties by construction.
func (r *Rules) PreliminaryWinnerIndex(s *stich.Stich) card.PlayerIndex {
	return s.First().Add(r.preliminaryWinnerPos(s))
}

// WinnerIndex returns the winner of a full stich.
func (r *Rules) WinnerIndex(s *stich.Stich) card.PlayerIndex {
	if !s.IsFull() {
		panic(fmt.Sprintf("winner of incomplete stich %v", s))
	}
	return r.PreliminaryWinnerIndex(s)
}

// CanBePlayed reports whether a full hand may announce this contract.
func (r *Rules) CanBePlayed(hand card.Hand) bool {
	switch r.kind {
	case KindRufspiel:
		rs := r.rufspiel
		if hand.Contains(rs.Rufsau()) {
			return false
		}
		for c := range hand.Set().All() {
			if r.decider.TrumpfOrFarbe(c) == trumpf.Farbe(rs.Farbe) {
				return true
			}
		}
		return false
	case KindSolo:
		if r.solo.Mode == Sie {
			return r.holdsTopTrumpfs(hand.Set())
		}
	}
	return true
}

// topTrumpfs returns the cards-per-player highest trumps of the deck.
func (r *Rules) topTrumpfs() []card.Card {
	n := r.kurzlang.CardsPerPlayer()
	ret := make([]card.Card, 0, n)
	for _, c := range r.decider.TrumpfsInDescendingOrder() {
		if len(ret) == n {
			break
		}
		if r.kurzlang.Contains(c) {
			ret = append(ret, c)
		}
	}
	return ret
}

func (r *Rules) holdsTopTrumpfs(s card.Set) bool {
	for _, c := range r.topTrumpfs() {
		if !s.Contains(c) {
			return false
		}
	}
	return true
}

// HeuristicActiveOccurrenceProbability is a prior on how often a contract
// of this kind gets announced, used to weight rank-rules results.
func (r *Rules) HeuristicActiveOccurrenceProbability() (float64, bool) {
	switch r.kind {
	case KindRufspiel:
		return 0.6, true
	case KindSolo:
		switch {
		case r.solo.Mode != PointBased:
			return 0.01, true
		case r.solo.Kind == Farbsolo:
			return 0.2, true
		case r.solo.Kind == Wenz:
			return 0.1, true
		}
		return 0.03, true
	case KindBettel:
		return 0.02, true
	}
	return 0, false
}

func (r *Rules) String() string {
	kl := ""
	if r.kurzlang == card.Kurz {
		kl = " (kurz)"
	}
	switch r.kind {
	case KindRufspiel:
		return fmt.Sprintf("Rufspiel mit der %s-Sau von %v%s", r.rufspiel.Farbe.Name(), r.rufspiel.Caller, kl)
	case KindSolo:
		s := r.solo
		name := s.Kind.String()
		if s.Kind.hasFarbe() {
			name = s.Farbe.Name() + "-" + name
		}
		switch s.Mode {
		case Tout:
			name += " Tout"
		case Sie:
			name += " Sie"
		}
		return fmt.Sprintf("%s von %v%s", name, s.Declarer, kl)
	case KindBettel:
		name := "Bettel"
		if r.bettel.Stichzwang {
			name = "Stichzwang-Bettel"
		}
		return fmt.Sprintf("%s von %v%s", name, r.bettel.Declarer, kl)
	}
	return "Ramsch" + kl
}
