package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/maznobu/kicadwrl/internal/export"
)

// reporter prints user-facing result lines, colored when the terminal
// supports it.
type reporter struct {
	out *termenv.Output
}

func newReporter(w io.Writer) *reporter {
	return &reporter{out: termenv.NewOutput(w)}
}

func (r *reporter) info(msg string) {
	fmt.Fprintln(r.out, r.out.String(msg).Foreground(termenv.ANSIGreen))
}

func (r *reporter) warn(msg string) {
	fmt.Fprintln(r.out, r.out.String(msg).Foreground(termenv.ANSIYellow))
}

func (r *reporter) fail(msg string) {
	fmt.Fprintln(r.out, r.out.String(msg).Foreground(termenv.ANSIRed).Bold())
}

func (r *reporter) heading(msg string) {
	fmt.Fprintln(r.out, r.out.String(msg).Bold())
}

func (r *reporter) plain(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// result prints the messages of an export run: failures in red, a run
// that wrote nothing in yellow, the rest in green.
func (r *reporter) result(res *export.Result, err error) {
	if res == nil {
		return
	}
	failed := make(map[string]bool, len(res.Failures))
	for _, f := range res.Failures {
		failed[f.Message] = true
	}
	var mismatch *export.OriginMismatchError
	aborted := errors.As(err, &mismatch)

	for _, msg := range res.Messages {
		switch {
		case aborted || failed[msg]:
			r.fail(msg)
		case len(res.Files) == 0:
			r.warn(msg)
		default:
			r.info(msg)
		}
	}
}
