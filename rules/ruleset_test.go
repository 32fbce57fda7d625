package rules

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/schafkopf/card"
)

func TestParseRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{
		"Rufspiel mit der Eichel-Sau von 1",
		"Rufspiel mit der Gras-Sau von 2 (kurz)",
		"Herz-Solo von 0",
		"Eichel-Solo Tout von 2",
		"Herz-Solo Sie von 1",
		"Wenz von 2",
		"Wenz Tout von 3",
		"Geier von 3",
		"Gras-Wenz von 1",
		"Schelln-Geier von 0",
		"Bettel von 1",
		"Stichzwang-Bettel von 1",
		"Ramsch",
	} {
		r, err := Parse(s, nil)
		is.NoErr(err)
		is.Equal(r.String(), s)
	}

	r, err := Parse("sauspiel mit der schelln-sau von 3", nil)
	is.NoErr(err)
	is.Equal(r.String(), "Rufspiel mit der Schelln-Sau von 3")
	is.Equal(r.Rufspiel().Payout, DefaultRuleset().Rufspiel.Payout)
}

func TestParseErrors(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{
		"Rufspiel mit der Herz-Sau von 1",
		"Solo von 1",
		"Wenz Sie von 1",
		"Herz-Solo von 4",
		"Herz-Solo",
		"Kreuz-Solo von 1",
		"Herz-Solo Schwarz von 1",
		"",
	} {
		_, err := Parse(s, nil)
		is.True(errors.Is(err, ErrRulesViolation))
	}
}

const testRuleset = `
kurzlang = "kurz"
stoss-max = 2

[rufspiel]
base = 10
extra = 5
lauf = 5
lauf-min = 3
stock = "ignore"

[solo]
base = 50
extra = 10
lauf = 10
lauf-min = 3
kinds = ["farbsolo", "wenz", "geier"]
sie = true

[ramsch]
price = 20
durchmarsch = "at-least"
durchmarsch-points = 91
jungfrau = "double-all"
`

func TestParseRuleset(t *testing.T) {
	is := is.New(t)
	rs, err := ParseRuleset([]byte(testRuleset))
	is.NoErr(err)
	is.Equal(rs.KurzLang, card.Kurz)
	is.Equal(rs.StossMax, 2)
	is.Equal(*rs.Rufspiel, RufspielConfig{
		Payout: PayoutParams{Base: 10, Extra: 5, Laufende: LaufendeParams{PerLauf: 5, LBound: 3}},
		Stock:  StockIgnore,
	})
	is.Equal(rs.Solo.Kinds, []SoloKind{Farbsolo, Wenz, Geier})
	is.True(rs.Solo.Sie)
	is.True(!rs.Solo.Tout)
	is.True(rs.Bettel == nil)
	is.Equal(*rs.Ramsch, RamschConfig{
		Price:       20,
		Durchmarsch: Durchmarsch{Kind: DurchmarschAtLeast, Points: 91},
		Jungfrau:    JungfrauDoubleAll,
	})

	r, err := Parse("Wenz von 1", rs)
	is.NoErr(err)
	is.Equal(r.KurzLang(), card.Kurz)
	is.Equal(r.StossMax(), 2)
	is.Equal(r.String(), "Wenz von 1 (kurz)")
}

func TestParseRulesetErrors(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{
		"kurzlang = \"mittel\"",
		"[rufspiel]\nstock = \"all\"",
		"[solo]\nkinds = [\"bettel\"]",
		"[solo]\nkinds = [\"wenz\"]\nsie = true",
		"[ramsch]\ndurchmarsch = \"at-least\"\ndurchmarsch-points = 40",
		"[ramsch]\njungfrau = \"triple\"",
	} {
		_, err := ParseRuleset([]byte(s))
		is.True(errors.Is(err, ErrRulesViolation))
	}
}

func TestAllowedRules(t *testing.T) {
	is := is.New(t)
	rs := DefaultRuleset()
	// Eichel-Sau and Gras-Sau are in hand; only Schelln can be called.
	allowed := rs.AllowedRules(0, testDeal[0])
	is.Equal(len(allowed), 1+4*2+2)
	is.Equal(allowed[0].String(), "Rufspiel mit der Schelln-Sau von 0")

	rs.Solo.Sie = true
	rs.Bettel = &BettelConfig{Price: 30}
	sie := card.MustParseHand("EO GO HO SO EU GU HU SU")
	allowed = rs.AllowedRules(2, sie)
	names := make(map[string]bool)
	for _, r := range allowed {
		names[r.String()] = true
	}
	is.True(names["Herz-Solo Sie von 2"])
	// All Ober and Unter are the top eight trumps of every Farbsolo.
	is.True(names["Eichel-Solo Sie von 2"])
	is.True(!names["Wenz Sie von 2"])
	is.True(names["Bettel von 2"])
	is.True(!names["Rufspiel mit der Eichel-Sau von 2"])
}
