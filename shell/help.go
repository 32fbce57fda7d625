package shell

import (
	"embed"
	"errors"
	"io"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usage(w io.Writer) {
	dat, err := helptext.ReadFile("helptext/usage.txt")
	if err != nil {
		io.WriteString(w, "Error loading helptext: "+err.Error())
		return
	}
	w.Write(dat)
}

func usageTopic(w io.Writer, topic string) error {
	dat, err := helptext.ReadFile("helptext/" + topic + ".txt")
	if err != nil {
		return errors.New("there is no help text for the topic " + topic)
	}
	_, err = w.Write(dat)
	return err
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		usage(sc.out)
		return nil, nil
	}
	return nil, usageTopic(sc.out, cmd.args[0])
}
