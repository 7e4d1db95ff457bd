package solver

import (
	"fmt"
	"io"

	"github.com/deplock/deplock/pkg/deplock"
)

type searchPosition struct {
	step    string
	subject deplock.Identifier
	detail  string
}

func (p searchPosition) Step() string {
	return p.step
}

func (p searchPosition) Subject() deplock.Identifier {
	return p.subject
}

func (p searchPosition) Detail() string {
	return p.detail
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ deplock.SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p deplock.SearchPosition) {
	if p.Subject() == "" {
		fmt.Fprintf(t.Writer, "%s: %s\n", p.Step(), p.Detail())
		return
	}
	fmt.Fprintf(t.Writer, "%s %s: %s\n", p.Step(), p.Subject(), p.Detail())
}
