package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/schafkopf/config"
	"github.com/domino14/schafkopf/montecarlo"
	"github.com/domino14/schafkopf/rules"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoRules           = errors.New("please choose a contract first with the `rules` command")
	errNoHand            = errors.New("please set your hand first with the `hand` command")
	errQuit              = errors.New("sending quit signal")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into the command, its positional arguments
// and its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if _, err := strconv.Atoi(f); err == nil || !strings.HasPrefix(f, "-") || len(f) == 1 {
			cmd.args = append(cmd.args, f)
			continue
		}
		if i+1 >= len(fields) {
			return nil, errWrongOptionSyntax
		}
		cmd.options[strings.TrimLeft(f, "-")] = fields[i+1]
		i++
	}
	return cmd, nil
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l          *readline.Instance
	out        io.Writer
	config     *config.Config
	execPath   string
	gitVersion string

	ruleset     *rules.Ruleset
	rulesetPath string
	round       *round

	lastSuggestion *montecarlo.Suggestion
	lastRanking    []rankedRules
	cancel         context.CancelFunc
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := newController(cfg, execPath, gitVersion)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mschafkopf>\033[0m ",
		HistoryFile:     "/tmp/schafkopf-readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func newController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := &ShellController{
		out:        os.Stderr,
		config:     cfg,
		execPath:   execPath,
		gitVersion: gitVersion,
		ruleset:    rules.DefaultRuleset(),
		round:      newRound(),
	}
	if path := cfg.GetString(config.ConfigRulesetPath); path != "" {
		if err := sc.loadRuleset(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("using-default-ruleset")
		}
	}
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Cleanup stops a running search.
func (sc *ShellController) Cleanup() {
	if sc.cancel != nil {
		sc.cancel()
	}
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "ruleset":
		return sc.rulesetCmd(cmd)
	case "new":
		return sc.newGame(cmd)
	case "rules":
		return sc.rules(cmd)
	case "me":
		return sc.me(cmd)
	case "hand":
		return sc.hand(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "stoss":
		return sc.stoss(cmd)
	case "double":
		return sc.double(cmd)
	case "stock":
		return sc.stock(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "allowed":
		return sc.allowed(cmd)
	case "suggest":
		return sc.suggest(cmd)
	case "rank":
		return sc.rank(cmd)
	case "histogram", "hist":
		return sc.histogram(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Execute runs a single line, e.g. one passed on the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	sc.showMessage("schafkopf " + sc.gitVersion + ", type `help` for a list of commands")

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errQuit) {
			break
		} else if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
