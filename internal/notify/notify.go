package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

const appName = "Scribely"

// Notifier surfaces user-facing outcomes of an upload.
type Notifier interface {
	Success(msg string)
	Notice(msg string)
	Error(msg string)
}

// Console writes to Out, errors go to Err.
type Console struct {
	Out io.Writer
	Err io.Writer
}

func NewConsole() Console {
	return Console{Out: os.Stdout, Err: os.Stderr}
}

func (c Console) Success(msg string) { fmt.Fprintln(c.Out, "✓ "+msg) }
func (c Console) Notice(msg string)  { fmt.Fprintln(c.Out, "! "+msg) }
func (c Console) Error(msg string)   { fmt.Fprintln(c.Err, "✗ "+msg) }

// Desktop sends notifications through notify-send.
type Desktop struct {
	Log *logrus.Logger
	// run is swapped in tests.
	run func(name string, args ...string) error
}

func NewDesktop(log *logrus.Logger) *Desktop {
	return &Desktop{Log: log, run: func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	}}
}

func (d *Desktop) Success(msg string) { d.send("normal", msg) }
func (d *Desktop) Notice(msg string)  { d.send("normal", msg) }
func (d *Desktop) Error(msg string)   { d.send("critical", msg) }

func (d *Desktop) send(urgency, msg string) {
	if err := d.run("notify-send", "-a", appName, "-u", urgency, appName, msg); err != nil && d.Log != nil {
		d.Log.WithError(err).Warn("failed to send notification")
	}
}

// Multi fans out to every notifier in order.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Notice(msg string) {
	for _, n := range m {
		n.Notice(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Notice(string)  {}
func (Nop) Error(string)   {}
