package rules

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/domino14/schafkopf/card"
)

var soloKindNames = map[string]SoloKind{
	"solo":  Farbsolo,
	"wenz":  Wenz,
	"geier": Geier,
}

// Parse reads a contract in the form printed by Rules.String, e.g.
// "Rufspiel mit der Eichel-Sau von 1", "Herz-Solo Tout von 0", "Wenz von 2",
// "Stichzwang-Bettel von 3" or "Ramsch". Prices come from rs; a nil rs uses
// the default ruleset.
func Parse(text string, rs *Ruleset) (*Rules, error) {
	if rs == nil {
		rs = DefaultRuleset()
	}
	s := strings.TrimSpace(cases.Fold().String(text))
	kl := rs.KurzLang
	if rest, ok := strings.CutSuffix(s, "(kurz)"); ok {
		s, kl = strings.TrimSpace(rest), card.Kurz
	}
	opts := []Option{WithKurzLang(kl), WithStossMax(rs.StossMax)}
	if s == "ramsch" {
		rc := rs.ramschOrDefault()
		return NewRamsch(rc.Price, rc.Durchmarsch, rc.Jungfrau, WithKurzLang(kl)), nil
	}
	name, who, ok := strings.Cut(s, " von ")
	if !ok {
		return nil, fmt.Errorf("%w: cannot parse %q", ErrRulesViolation, text)
	}
	epi, err := card.ParsePlayerIndex(strings.TrimSpace(who))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRulesViolation, err)
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: cannot parse %q", ErrRulesViolation, text)
	}
	switch words[0] {
	case "rufspiel", "sauspiel":
		// rufspiel mit der <farbe>-sau
		if len(words) != 4 || words[1] != "mit" || words[2] != "der" {
			return nil, fmt.Errorf("%w: cannot parse %q", ErrRulesViolation, text)
		}
		fname, ok := strings.CutSuffix(words[3], "-sau")
		if !ok {
			return nil, fmt.Errorf("%w: cannot parse %q", ErrRulesViolation, text)
		}
		f, err := card.FarbeFromName(fname)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRulesViolation, err)
		}
		rc := rs.rufspielOrDefault()
		return NewRufspiel(epi, f, rc.Payout, rc.Stock, opts...)
	case "bettel", "stichzwang-bettel":
		if len(words) != 1 {
			return nil, fmt.Errorf("%w: cannot parse %q", ErrRulesViolation, text)
		}
		bc := rs.bettelOrDefault()
		return NewBettel(epi, words[0] == "stichzwang-bettel", bc.Price, opts...)
	}
	mode := PointBased
	if len(words) == 2 {
		switch words[1] {
		case "tout":
			mode = Tout
		case "sie":
			mode = Sie
		default:
			return nil, fmt.Errorf("%w: unknown solo mode %q", ErrRulesViolation, words[1])
		}
	} else if len(words) != 1 {
		return nil, fmt.Errorf("%w: cannot parse %q", ErrRulesViolation, text)
	}
	kind, f, err := parseSoloName(words[0])
	if err != nil {
		return nil, err
	}
	sc := rs.soloOrDefault()
	return NewSolo(epi, kind, f, mode, sc.Payout, opts...)
}

// parseSoloName accepts "<farbe>-solo", "wenz", "geier", "<farbe>-wenz" and
// "<farbe>-geier".
func parseSoloName(w string) (SoloKind, card.Farbe, error) {
	fname, kname, hasFarbe := strings.Cut(w, "-")
	if !hasFarbe {
		kname = fname
	}
	kind, ok := soloKindNames[kname]
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown contract %q", ErrRulesViolation, w)
	}
	if !hasFarbe {
		if kind == Farbsolo {
			return 0, 0, fmt.Errorf("%w: solo needs a farbe", ErrRulesViolation)
		}
		return kind, 0, nil
	}
	f, err := card.FarbeFromName(fname)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrRulesViolation, err)
	}
	switch kind {
	case Wenz:
		kind = Farbwenz
	case Geier:
		kind = Farbgeier
	}
	return kind, f, nil
}
