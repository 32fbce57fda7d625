package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/montecarlo"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var searchOptions = []string{
	"-samples", "-threads", "-depth", "-mode", "-branching", "-strategy",
	"-snapshot", "-alphabeta", "-seed",
}

var commandMetadata = map[string]CommandMetadata{
	"suggest":   {Options: append([]string{"-stop", "-log"}, searchOptions...)},
	"rank":      {Options: searchOptions},
	"histogram": {Options: []string{"-strategy", "-bins"}},
	"ruleset":   {Options: []string{"-reload"}},
	"rules": {Args: []string{
		"Rufspiel", "Herz-Solo", "Eichel-Solo", "Gras-Solo", "Schelln-Solo",
		"Wenz", "Geier", "Bettel", "Stichzwang-Bettel", "Ramsch",
	}},
	"me":     {Args: []string{"0", "1", "2", "3"}},
	"stoss":  {Args: []string{"0", "1", "2", "3"}},
	"double": {Args: []string{"0", "1", "2", "3"}},
	"help": {Args: []string{
		"ruleset", "rules", "hand", "play", "stoss", "suggest", "rank", "histogram",
	}},
}

var commandNames = []string{
	"help", "ruleset", "new", "rules", "me", "hand", "play", "undo", "stoss",
	"double", "stock", "show", "allowed", "suggest", "rank", "histogram", "exit",
}

var boolValues = []string{"true", "false"}

// optionValues lists the values an option can take, if there are few.
var optionValues = map[string][]string{
	"stop":      {"95", "99", "none"},
	"mode":      {"auto", "enumerate", "sample"},
	"branching": {"none", "oracle", "equiv5", "equiv7"},
	"strategy":  {"min", "selfish-min", "selfish-max", "max"},
	"snapshot":  boolValues,
	"alphabeta": boolValues,
	"reload":    boolValues,
}

// cardCompletions suggests the cards a play or histogram may name.
func (c *ShellCompleter) cardCompletions(cmdName string) []string {
	rd := c.sc.round
	switch cmdName {
	case "play":
		if rd.rules == nil || rd.seq.IsFinished() {
			return nil
		}
		if rd.seq.CurrentPlayer() == rd.self && !rd.hand.IsEmpty() {
			return lo.Map(rd.rules.AllAllowedCards(rd.seq, rd.hand).Cards(),
				func(x card.Card, _ int) string { return x.String() })
		}
		unseen := rd.rules.KurzLang().Set().Minus(rd.seq.Played()).Minus(rd.hand.Set())
		return lo.Map(unseen.Cards(), func(x card.Card, _ int) string { return x.String() })
	case "histogram":
		if c.sc.lastSuggestion == nil {
			return nil
		}
		return lo.Map(c.sc.lastSuggestion.Cards, func(cs *montecarlo.CardStats, _ int) string {
			return cs.Card.String()
		})
	}
	return nil
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		if opt, ok := strings.CutPrefix(lastCompleteField, "-"); ok {
			completions = optionValues[opt]
		}

		if completions == nil {
			metadata := commandMetadata[cmdName]
			switch {
			case strings.HasPrefix(prefix, "-"):
				completions = metadata.Options
			case len(metadata.Args) > 0:
				completions = metadata.Args
			default:
				completions = c.cardCompletions(cmdName)
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
