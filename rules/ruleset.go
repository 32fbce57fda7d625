package rules

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/domino14/schafkopf/card"
)

type RufspielConfig struct {
	Payout PayoutParams
	Stock  StockPolicy
}

type SoloConfig struct {
	Payout PayoutParams
	Kinds  []SoloKind
	Tout   bool
	Sie    bool
}

type BettelConfig struct {
	Price      int
	Stichzwang bool
}

type RamschConfig struct {
	Price       int
	Durchmarsch Durchmarsch
	Jungfrau    Jungfrau
}

// Ruleset is a table's house rules. A nil contract config means the
// contract cannot be announced.
type Ruleset struct {
	KurzLang card.KurzLang
	StossMax int
	Rufspiel *RufspielConfig
	Solo     *SoloConfig
	Bettel   *BettelConfig
	Ramsch   *RamschConfig
}

func DefaultRuleset() *Ruleset {
	return &Ruleset{
		KurzLang: card.Lang,
		StossMax: defaultStossMax,
		Rufspiel: &RufspielConfig{
			Payout: PayoutParams{Base: 20, Extra: 10, Laufende: LaufendeParams{PerLauf: 10, LBound: 3}},
			Stock:  StockHalf,
		},
		Solo: &SoloConfig{
			Payout: PayoutParams{Base: 50, Extra: 10, Laufende: LaufendeParams{PerLauf: 10, LBound: 3}},
			Kinds:  []SoloKind{Farbsolo, Wenz},
			Tout:   true,
		},
	}
}

func (rs *Ruleset) rufspielOrDefault() RufspielConfig {
	if rs.Rufspiel != nil {
		return *rs.Rufspiel
	}
	return *DefaultRuleset().Rufspiel
}

func (rs *Ruleset) soloOrDefault() SoloConfig {
	if rs.Solo != nil {
		return *rs.Solo
	}
	return *DefaultRuleset().Solo
}

func (rs *Ruleset) bettelOrDefault() BettelConfig {
	if rs.Bettel != nil {
		return *rs.Bettel
	}
	return BettelConfig{Price: 30}
}

func (rs *Ruleset) ramschOrDefault() RamschConfig {
	if rs.Ramsch != nil {
		return *rs.Ramsch
	}
	return RamschConfig{Price: 20, Durchmarsch: Durchmarsch{Kind: DurchmarschAll}}
}

// LoadRuleset reads a TOML ruleset file.
func LoadRuleset(path string) (*Ruleset, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := ParseRuleset(bts)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

var soloKindKeys = map[string]SoloKind{
	"farbsolo":  Farbsolo,
	"wenz":      Wenz,
	"geier":     Geier,
	"farbwenz":  Farbwenz,
	"farbgeier": Farbgeier,
}

func payoutParams(v *viper.Viper, section string) PayoutParams {
	return PayoutParams{
		Base:  v.GetInt(section + ".base"),
		Extra: v.GetInt(section + ".extra"),
		Laufende: LaufendeParams{
			PerLauf: v.GetInt(section + ".lauf"),
			LBound:  v.GetInt(section + ".lauf-min"),
		},
	}
}

// ParseRuleset reads a ruleset from TOML:
//
//	kurzlang = "lang"
//	stoss-max = 4
//	[rufspiel]
//	base = 20
//	extra = 10
//	lauf = 10
//	lauf-min = 3
//	stock = "half"
//	[solo]
//	base = 50
//	extra = 10
//	lauf = 10
//	lauf-min = 3
//	kinds = ["farbsolo", "wenz"]
//	tout = true
//	sie = false
//	[bettel]
//	price = 30
//	stichzwang = false
//	[ramsch]
//	price = 20
//	durchmarsch = "at-least"
//	durchmarsch-points = 91
//	jungfrau = "double-all"
func ParseRuleset(bts []byte) (*Ruleset, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("kurzlang", "lang")
	v.SetDefault("stoss-max", defaultStossMax)
	if err := v.ReadConfig(bytes.NewReader(bts)); err != nil {
		return nil, err
	}
	rs := &Ruleset{StossMax: v.GetInt("stoss-max")}
	switch strings.ToLower(v.GetString("kurzlang")) {
	case "lang":
		rs.KurzLang = card.Lang
	case "kurz":
		rs.KurzLang = card.Kurz
	default:
		return nil, fmt.Errorf("%w: kurzlang %q", ErrRulesViolation, v.GetString("kurzlang"))
	}
	if v.IsSet("rufspiel") {
		rc := &RufspielConfig{Payout: payoutParams(v, "rufspiel")}
		switch stock := v.GetString("rufspiel.stock"); stock {
		case "", "half":
			rc.Stock = StockHalf
		case "ignore":
			rc.Stock = StockIgnore
		default:
			return nil, fmt.Errorf("%w: stock policy %q", ErrRulesViolation, stock)
		}
		rs.Rufspiel = rc
	}
	if v.IsSet("solo") {
		sc := &SoloConfig{
			Payout: payoutParams(v, "solo"),
			Tout:   v.GetBool("solo.tout"),
			Sie:    v.GetBool("solo.sie"),
		}
		kinds := v.GetStringSlice("solo.kinds")
		if len(kinds) == 0 {
			kinds = []string{"farbsolo"}
		}
		for _, k := range kinds {
			kind, ok := soloKindKeys[strings.ToLower(k)]
			if !ok {
				return nil, fmt.Errorf("%w: solo kind %q", ErrRulesViolation, k)
			}
			sc.Kinds = append(sc.Kinds, kind)
		}
		sc.Kinds = lo.Uniq(sc.Kinds)
		if sc.Sie && !lo.Contains(sc.Kinds, Farbsolo) {
			return nil, fmt.Errorf("%w: sie requires farbsolo", ErrRulesViolation)
		}
		rs.Solo = sc
	}
	if v.IsSet("bettel") {
		rs.Bettel = &BettelConfig{
			Price:      v.GetInt("bettel.price"),
			Stichzwang: v.GetBool("bettel.stichzwang"),
		}
	}
	if v.IsSet("ramsch") {
		rc := &RamschConfig{Price: v.GetInt("ramsch.price")}
		switch dm := v.GetString("ramsch.durchmarsch"); dm {
		case "", "all":
			rc.Durchmarsch = Durchmarsch{Kind: DurchmarschAll}
		case "none":
			rc.Durchmarsch = Durchmarsch{Kind: DurchmarschNone}
		case "at-least":
			rc.Durchmarsch = Durchmarsch{Kind: DurchmarschAtLeast, Points: v.GetInt("ramsch.durchmarsch-points")}
			if rc.Durchmarsch.Points <= 60 || rc.Durchmarsch.Points > 120 {
				return nil, fmt.Errorf("%w: durchmarsch points %d", ErrRulesViolation, rc.Durchmarsch.Points)
			}
		default:
			return nil, fmt.Errorf("%w: durchmarsch %q", ErrRulesViolation, dm)
		}
		switch jf := v.GetString("ramsch.jungfrau"); jf {
		case "", "none":
			rc.Jungfrau = JungfrauNone
		case "double-all":
			rc.Jungfrau = JungfrauDoubleAll
		case "double-individually-once":
			rc.Jungfrau = JungfrauDoubleIndividuallyOnce
		case "double-individually-multiple":
			rc.Jungfrau = JungfrauDoubleIndividuallyMultiple
		default:
			return nil, fmt.Errorf("%w: jungfrau %q", ErrRulesViolation, jf)
		}
		rs.Ramsch = rc
	}
	return rs, nil
}

// AllowedRules lists every contract epi may announce with a full hand.
// Ramsch is never announced; it is what happens when nobody plays.
func (rs *Ruleset) AllowedRules(epi card.PlayerIndex, hand card.Hand) []*Rules {
	opts := []Option{WithKurzLang(rs.KurzLang), WithStossMax(rs.StossMax)}
	var ret []*Rules
	add := func(r *Rules, err error) {
		if err == nil && r.CanBePlayed(hand) {
			ret = append(ret, r)
		}
	}
	if rc := rs.Rufspiel; rc != nil {
		for _, f := range []card.Farbe{card.Eichel, card.Gras, card.Schelln} {
			add(NewRufspiel(epi, f, rc.Payout, rc.Stock, opts...))
		}
	}
	if sc := rs.Solo; sc != nil {
		modes := []SoloMode{PointBased}
		if sc.Tout {
			modes = append(modes, Tout)
		}
		if sc.Sie {
			modes = append(modes, Sie)
		}
		for _, kind := range sc.Kinds {
			farben := []card.Farbe{0}
			if kind.hasFarbe() {
				farben = card.AllFarben[:]
			}
			for _, f := range farben {
				for _, mode := range modes {
					if mode == Sie && kind != Farbsolo {
						continue
					}
					add(NewSolo(epi, kind, f, mode, sc.Payout, opts...))
				}
			}
		}
	}
	if bc := rs.Bettel; bc != nil {
		add(NewBettel(epi, bc.Stichzwang, bc.Price, opts...))
	}
	return ret
}
