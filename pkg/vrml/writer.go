// Package vrml provides the low-level pieces of VRML97 text output:
// a bracket-tracking indenting writer, identifier sanitizing and the
// fixed numeric formats KiCad's 3D viewer expects.
package vrml

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	closers = "]})"
	openers = "[{("
)

// Writer emits VRML text and derives indentation from the brackets found
// in each emitted chunk. Detection is lexical: a chunk holding both an
// opener and a closer leaves the level unchanged.
//
// Write errors are sticky; after the first failure nothing more is
// written and Err/Flush report it.
type Writer struct {
	w           *bufio.Writer
	indent      int
	lastNewline bool
	err         error
}

// NewWriter returns a Writer at indent level 0.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Emit writes text, prefixed with tabs when it starts a new line.
// extra is added to the indent level for this chunk only.
func (w *Writer) Emit(text string, extra int) {
	if strings.ContainsAny(text, closers) {
		w.indent--
	}

	out := text
	if w.lastNewline {
		if n := w.indent + extra; n > 0 {
			out = strings.Repeat("\t", n) + text
		}
	}

	if w.err == nil {
		_, w.err = w.w.WriteString(out)
	}
	w.lastNewline = strings.HasSuffix(out, "\n")

	if strings.ContainsAny(text, openers) {
		w.indent++
	}
}

// EmitLine is Emit(text + "\n", extra).
func (w *Writer) EmitLine(text string, extra int) {
	w.Emit(text+"\n", extra)
}

// Linef formats and emits one line at the current level.
func (w *Writer) Linef(format string, args ...any) {
	w.EmitLine(fmt.Sprintf(format, args...), 0)
}

// Indent returns the current indent level.
func (w *Writer) Indent() int {
	return w.indent
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
