package handiter

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stich"
	"github.com/domino14/schafkopf/testcommon"
)

var (
	testDeal   = testcommon.Deal
	herzSolo   = testcommon.HerzSolo
	playLowest = testcommon.PlayLowest
)

func testRNG() *frand.RNG {
	return frand.NewCustom(make([]byte, 32), 1024, 12)
}

func checkDeal(is *is.I, p Position, ahand card.AHand) {
	is.Equal(ahand[p.Self], p.Hand)
	counts := p.Seq.RemainingCardsPerHand()
	var union card.Set
	for epi, h := range ahand {
		is.Equal(h.Len(), counts[epi])
		is.True(union.Intersect(h.Set()).IsEmpty())
		union = union.Union(h.Set())
	}
	is.Equal(union, p.Unseen().Union(p.Hand.Set()))
	voids := p.Voids()
	for epi, h := range ahand {
		is.True(h.Set().Intersect(voids[epi]).IsEmpty())
	}
	is.True(p.Consistent(ahand))
}

func TestEnumerateLateGame(t *testing.T) {
	is := is.New(t)
	r := herzSolo()
	seq, actual := playLowest(r, testDeal, 24)
	self := seq.CurrentPlayer()
	p := Position{Rules: r, Seq: seq, Self: self, Hand: actual[self]}
	is.NoErr(p.Validate())

	seen := make(map[card.AHand]bool)
	for ahand := range p.Enumerate() {
		checkDeal(is, p, ahand)
		is.True(!seen[ahand]) // each deal once
		seen[ahand] = true
	}
	is.True(seen[actual])
	// Six unseen cards split two by two.
	is.True(len(seen) <= 90)

	n := 0
	for range p.Deals(ModeAuto, 2, 1000, testRNG()) {
		n++
	}
	is.Equal(n, len(seen))
}

func TestEnumerateMidStich(t *testing.T) {
	is := is.New(t)
	r := herzSolo()
	seq, actual := playLowest(r, testDeal, 26)
	self := seq.CurrentPlayer()
	p := Position{Rules: r, Seq: seq, Self: self, Hand: actual[self]}
	is.NoErr(p.Validate())
	found := false
	for ahand := range p.Enumerate() {
		checkDeal(is, p, ahand)
		found = found || ahand == actual
	}
	is.True(found)
}

func TestVoids(t *testing.T) {
	is := is.New(t)
	r := herzSolo()
	seq, err := stich.NewFromCards(card.Lang, []card.Card{card.EA, card.E7, card.GA, card.E9, card.HO}, r)
	is.NoErr(err)
	p := Position{Rules: r, Seq: seq, Self: 0}
	voids := p.Voids()
	is.Equal(voids[2], card.SetOf(card.EA, card.EZ, card.EK, card.E9, card.E8, card.E7))
	is.True(voids[0].IsEmpty())
	is.True(voids[1].IsEmpty())
	is.True(voids[3].IsEmpty())
}

func TestSampleRespectsStichzwang(t *testing.T) {
	is := is.New(t)
	r, err := rules.NewBettel(0, true, 30)
	is.NoErr(err)
	seq, err := stich.NewFromCards(card.Lang, []card.Card{card.E9, card.E7}, r)
	is.NoErr(err)
	p := Position{Rules: r, Seq: seq, Self: 0, Hand: card.MustParseHand("GA GK G9 HA HK H9 SA")}
	is.NoErr(p.Validate())
	higher := card.SetOf(card.EA, card.EK, card.EO, card.EU, card.EZ)
	n := 0
	for ahand := range p.Sample(testRNG(), 50) {
		checkDeal(is, p, ahand)
		is.True(ahand[1].Set().Intersect(higher).IsEmpty()) // would have had to overtake
		n++
	}
	is.Equal(n, 50)
}

func TestSampleWithVoids(t *testing.T) {
	is := is.New(t)
	r := herzSolo()
	seq, actual := playLowest(r, testDeal, 13)
	self := seq.CurrentPlayer()
	p := Position{Rules: r, Seq: seq, Self: self, Hand: actual[self]}
	is.NoErr(p.Validate())
	n := 0
	for ahand := range p.Deals(ModeAuto, 2, 30, testRNG()) {
		checkDeal(is, p, ahand)
		n++
	}
	is.Equal(n, 30)
}

func TestValidate(t *testing.T) {
	is := is.New(t)
	r := herzSolo()
	seq, err := stich.NewFromCards(card.Lang, []card.Card{card.EA, card.S8}, r)
	is.NoErr(err)

	// Player 1 held E9 and E8 but did not follow Eichel.
	p := Position{Rules: r, Seq: seq, Self: 1, Hand: card.MustParseHand("HO SO EU HK E9 E8 GZ")}
	is.True(errors.Is(p.Validate(), ErrInvalidState))

	seq, err = stich.NewFromCards(card.Lang, []card.Card{card.EA, card.E8}, r)
	is.NoErr(err)
	p.Seq = seq
	p.Hand = card.MustParseHand("HO SO EU HK E9 GZ S8")
	is.NoErr(p.Validate())

	p.Hand = card.MustParseHand("HO SO EU HK E9 GZ")
	is.True(errors.Is(p.Validate(), ErrInvalidState)) // wrong size

	p.Hand = card.MustParseHand("HO SO EU HK E9 GZ E8")
	is.True(errors.Is(p.Validate(), ErrInvalidState)) // played card in hand
}

func TestSampleKeepsContractPlayable(t *testing.T) {
	is := is.New(t)
	r := testcommon.MustRules(rules.NewRufspiel(0, card.Schelln, testcommon.RufspielPayout, rules.StockHalf))
	p := Position{Rules: r, Seq: stich.NewSequence(card.Lang), Self: 1, Hand: testDeal[1]}
	is.NoErr(p.Validate())
	n := 0
	for ahand := range p.Sample(testRNG(), 200) {
		checkDeal(is, p, ahand)
		is.True(!ahand[0].Contains(card.SA))
		is.True(r.CanBePlayed(ahand[0]))
		n++
	}
	is.Equal(n, 200)

	seq, actual := playLowest(r, testDeal, 26)
	p = Position{Rules: r, Seq: seq, Self: seq.CurrentPlayer(), Hand: actual[seq.CurrentPlayer()]}
	for ahand := range p.Enumerate() {
		is.True(r.CanBePlayed(dealtHands(seq, ahand)[0]))
	}
}

func TestSampleRespectsStoss(t *testing.T) {
	is := is.New(t)
	r := testcommon.MustRules(rules.NewRufspiel(0, card.Schelln, testcommon.RufspielPayout, rules.StockHalf))
	// Only the caller's opponents may give the first stoss, so player 2
	// does not hold the Schelln-Sau and player 3 must.
	p := Position{
		Rules:  r,
		Seq:    stich.NewSequence(card.Lang),
		Self:   1,
		Hand:   testDeal[1],
		Stosse: []rules.Stoss{{Epi: 2}},
	}
	is.NoErr(p.Validate())
	n := 0
	for ahand := range p.Sample(testRNG(), 50) {
		checkDeal(is, p, ahand)
		is.True(ahand[3].Contains(card.SA))
		n++
	}
	is.Equal(n, 50)
	is.True(p.Consistent(testDeal))
	swapped := testDeal
	swapped[2] = card.MustParseHand("GU HU SU H9 EK E7 GK SA")
	swapped[3] = card.MustParseHand("H8 H7 G9 G8 G7 S9 SZ SK")
	is.True(!p.Consistent(swapped))
}

func TestValidateAnnouncement(t *testing.T) {
	is := is.New(t)
	r := testcommon.MustRules(rules.NewRufspiel(0, card.Schelln, testcommon.RufspielPayout, rules.StockHalf))
	p := Position{Rules: r, Seq: stich.NewSequence(card.Lang), Self: 0,
		Hand: card.MustParseHand("EO GO HA HZ EA EZ GA SA")}
	is.True(errors.Is(p.Validate(), ErrInvalidState)) // caller holds the called Sau

	p.Hand = testDeal[0]
	is.NoErr(p.Validate())

	// The Sau's owner plays with the caller and cannot open the stosse.
	p = Position{Rules: r, Seq: stich.NewSequence(card.Lang), Self: 1,
		Hand: card.MustParseHand("HO SO EU HK E9 E8 GZ SA"), Stosse: []rules.Stoss{{Epi: 1}}}
	is.True(errors.Is(p.Validate(), ErrInvalidState))
	p.Stosse = []rules.Stoss{{Epi: 2}, {Epi: 1}}
	is.NoErr(p.Validate())
}

func TestCheating(t *testing.T) {
	is := is.New(t)
	n := 0
	for ahand := range Cheating(testDeal) {
		is.Equal(ahand, testDeal)
		n++
	}
	is.Equal(n, 1)
}

func TestParseMode(t *testing.T) {
	is := is.New(t)
	for _, m := range []Mode{ModeAuto, ModeEnumerate, ModeSample} {
		parsed, err := ParseMode(m.String())
		is.NoErr(err)
		is.Equal(parsed, m)
	}
	_, err := ParseMode("guess")
	is.True(err != nil)
}
