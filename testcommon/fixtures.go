// Package testcommon holds deals and contracts shared by the tests of the
// search packages.
package testcommon

import (
	"lukechampine.com/frand"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stich"
)

// Deal is the deal most search tests start from.
var Deal = card.MustParseAHand(
	"EO GO HA HZ EA EZ GA S7/HO SO EU HK E9 E8 GZ S8/GU HU SU H9 EK E7 GK S9/H8 H7 G9 G8 G7 SA SZ SK")

var (
	RufspielPayout = rules.PayoutParams{Base: 20, Extra: 10, Laufende: rules.LaufendeParams{PerLauf: 10, LBound: 3}}
	SoloPayout     = rules.PayoutParams{Base: 50, Extra: 10, Laufende: rules.LaufendeParams{PerLauf: 10, LBound: 3}}
)

func MustRules(r *rules.Rules, err error) *rules.Rules {
	if err != nil {
		panic(err)
	}
	return r
}

// HerzSolo is a point-based Herz-Solo of player 0.
func HerzSolo() *rules.Rules {
	return MustRules(rules.NewSolo(0, rules.Farbsolo, card.Herz, rules.PointBased, SoloPayout))
}

// Contracts returns one contract of every kind. All of them can be played
// with Deal.
func Contracts() []*rules.Rules {
	return []*rules.Rules{
		MustRules(rules.NewRufspiel(0, card.Schelln, RufspielPayout, rules.StockHalf)),
		HerzSolo(),
		MustRules(rules.NewSolo(2, rules.Wenz, 0, rules.PointBased, SoloPayout)),
		MustRules(rules.NewSolo(1, rules.Farbsolo, card.Gras, rules.Tout, SoloPayout)),
		MustRules(rules.NewBettel(3, false, 30)),
		rules.NewRamsch(10, rules.Durchmarsch{Kind: rules.DurchmarschAll}, rules.JungfrauDoubleAll),
	}
}

// PlayLowest plays n cards from ahand, each time the lowest allowed one.
func PlayLowest(r *rules.Rules, ahand card.AHand, n int) (*stich.Sequence, card.AHand) {
	seq := stich.NewSequence(r.KurzLang())
	for range n {
		epi := seq.CurrentPlayer()
		c := r.AllAllowedCards(seq, ahand[epi]).Cards()[0]
		ahand[epi].PlayCard(c)
		seq.Zugeben(c, r)
	}
	return seq, ahand
}

// RandomDeal deals the long deck at random.
func RandomDeal(rng *frand.RNG) card.AHand {
	cards := card.Lang.Cards()
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	var ahand card.AHand
	n := card.Lang.CardsPerPlayer()
	for epi := range ahand {
		ahand[epi] = card.NewHand(cards[epi*n : (epi+1)*n]...)
	}
	return ahand
}

// PlayRandom plays n random allowed cards from ahand.
func PlayRandom(r *rules.Rules, ahand card.AHand, n int, rng *frand.RNG) (*stich.Sequence, card.AHand) {
	seq := stich.NewSequence(r.KurzLang())
	for range n {
		epi := seq.CurrentPlayer()
		allowed := r.AllAllowedCards(seq, ahand[epi]).Cards()
		c := allowed[rng.Intn(len(allowed))]
		ahand[epi].PlayCard(c)
		seq.Zugeben(c, r)
	}
	return seq, ahand
}

// AllObers is a Herz-Solo after four stichs in which player 0 holds all
// Obers and took every stich.
func AllObers() (*rules.Rules, *stich.Sequence, card.AHand) {
	r := HerzSolo()
	seq, err := stich.NewFromCards(card.Lang, card.MustParseCards(
		"HA H7 H8 H9 HZ E7 E8 E9 HK G7 G8 G9 EA S7 S8 S9"), r)
	if err != nil {
		panic(err)
	}
	return r, seq, card.MustParseAHand("EO GO HO SO/EU EZ GA SA/GU EK GZ SZ/HU SU GK SK")
}
