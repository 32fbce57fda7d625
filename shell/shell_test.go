package shell

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/schafkopf/config"
	"github.com/domino14/schafkopf/testcommon"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"suggest -samples 100",
			&shellcmd{"suggest", nil, map[string]string{"samples": "100"}},
			nil},
		{"undo 4",
			&shellcmd{"undo", []string{"4"}, map[string]string{}},
			nil},
		{"rules Rufspiel mit der Eichel-Sau von 1 ",
			&shellcmd{"rules",
				[]string{"Rufspiel", "mit", "der", "Eichel-Sau", "von", "1"},
				map[string]string{}},
			nil,
		},
		{"stock -10",
			&shellcmd{"stock", []string{"-10"}, map[string]string{}},
			nil},
		{`suggest -log "/tmp/my log.yaml" -threads 2`,
			&shellcmd{"suggest", nil, map[string]string{"log": "/tmp/my log.yaml", "threads": "2"}},
			nil},
		{"suggest -samples 100 -threads",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	cfg := &config.Config{}
	err := cfg.Load([]string{
		"--ruleset-path", "../data/rulesets/default.toml",
		"--snapshot-cache=false",
		"--threads", "2",
		"--seed", "shell",
	})
	if err != nil {
		t.Fatal(err)
	}
	sc := newController(cfg, "..", "test")
	var buf bytes.Buffer
	sc.out = &buf
	return sc, &buf
}

// run executes lines and returns the message of the last one.
func run(t *testing.T, sc *ShellController, lines ...string) string {
	t.Helper()
	var last string
	for _, line := range lines {
		resp, err := sc.standardModeSwitch(line, nil)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		last = ""
		if resp != nil {
			last = resp.message
		}
	}
	return last
}

func TestRulesetLoaded(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	is.Equal(sc.rulesetPath, "../data/rulesets/default.toml")
	is.True(sc.ruleset.Solo.Sie)
	out := run(t, sc, "ruleset")
	is.True(strings.Contains(out, "stichzwang false"))

	_, err := sc.standardModeSwitch("ruleset ../data/rulesets/nope.toml", nil)
	is.True(err != nil)
}

func TestPlayAndUndo(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "me 0", "hand EO GO HA HZ EA EZ GA S7")
	out := run(t, sc, "allowed")
	is.True(strings.Contains(out, "Herz-Solo von 0"))
	is.True(!strings.Contains(out, "Sie"))

	run(t, sc, "rules Herz-Solo von 0", "stoss 1")
	is.Equal(sc.round.exp.StossDoublingFactor(), 2)

	out = run(t, sc, "play EA E9 EK H8")
	is.True(strings.Contains(out, "-> 3"))
	is.Equal(sc.round.hand.Len(), 7)

	// GA is ours, so player 3 cannot lead it.
	_, err := sc.standardModeSwitch("play GA", nil)
	is.True(err != nil)
	// G8 is not ours, so the whole line is rejected.
	_, err = sc.standardModeSwitch("play G7 G8 G9 GZ", nil)
	is.True(err != nil)
	is.Equal(sc.round.seq.CountPlayedCards(), 4)

	run(t, sc, "undo 4")
	is.Equal(sc.round.hand.Len(), 8)
	is.Equal(sc.round.seq.CountPlayedCards(), 0)
}

func TestSuggestAndHistogram(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)
	r := testcommon.HerzSolo()
	seq, _ := testcommon.PlayLowest(r, testcommon.Deal, 24)
	self := seq.CurrentPlayer()
	cards := make([]string, 0, 24)
	for _, c := range seq.Cards() {
		cards = append(cards, c.String())
	}

	run(t, sc,
		"me "+self.String(),
		"hand "+testcommon.Deal[self].String(),
		"rules Herz-Solo von 0",
		"play "+strings.Join(cards, " "),
	)
	out := run(t, sc, "suggest -mode enumerate -branching oracle")
	is.True(strings.Contains(out, "Best card"))
	is.True(sc.lastSuggestion != nil)

	best := sc.lastSuggestion.Best()
	out = run(t, sc, "histogram "+best.String())
	is.True(strings.HasPrefix(out, best.String()+", selfish-min"))

	_, err := sc.standardModeSwitch("histogram "+cards[0], nil)
	is.True(err != nil)

	run(t, sc, "help suggest")
	is.True(strings.Contains(buf.String(), "-branching"))
}

func TestRankSie(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "me 0", "hand EO GO HO SO EU GU HU SU")
	out := run(t, sc, "rank Herz-Solo Sie von 0 -samples 2 -alphabeta true")
	is.True(strings.Contains(out, "1560/1560.0/1560"))
	is.True(strings.Contains(out, "0.01"))
	is.Equal(len(sc.lastRanking), 1)

	out = run(t, sc, "histogram 1")
	is.True(strings.Contains(out, "1560: 2"))
}

func TestUnknownCommand(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	_, err := sc.standardModeSwitch("endgame 4", nil)
	is.True(err != nil)
	_, err = sc.standardModeSwitch("suggest", nil)
	is.Equal(err, errNoRules)
}
