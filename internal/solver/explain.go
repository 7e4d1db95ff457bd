package solver

import (
	"fmt"
	"strings"

	"github.com/deplock/deplock/pkg/deplock"
)

// Explain renders the derivation chain that led to a root-level
// conflict as ordered prose, one step per line. Derived
// incompatibilities that support more than one later step are written
// once, numbered, and referenced by number afterwards, so the output
// is deduplicated while every step remains justified by earlier
// lines.
func Explain(root *Incompatibility, resolve deplock.NameResolver) string {
	if resolve == nil {
		resolve = deplock.IdentityResolver
	}
	e := &explainer{
		resolve:     resolve,
		refCounts:   map[*Incompatibility]int{},
		lineNumbers: map[*Incompatibility]int{},
	}
	e.countReferences(root)
	e.visit(root, true)
	return strings.Join(e.lines, "\n")
}

type explainer struct {
	resolve     deplock.NameResolver
	lines       []string
	refCounts   map[*Incompatibility]int
	lineNumbers map[*Incompatibility]int
	nextNumber  int
}

// countReferences counts how often each derived incompatibility
// appears as a parent in the cause graph. Nodes referenced more than
// once earn a line number instead of being re-derived.
func (e *explainer) countReferences(inc *Incompatibility) {
	if !inc.isDerived() {
		return
	}
	for _, parent := range []*Incompatibility{inc.left, inc.right} {
		if !parent.isDerived() {
			continue
		}
		e.refCounts[parent]++
		if e.refCounts[parent] == 1 {
			e.countReferences(parent)
		}
	}
}

func (e *explainer) write(inc *Incompatibility, line string) {
	if e.refCounts[inc] > 1 {
		e.nextNumber++
		e.lineNumbers[inc] = e.nextNumber
		line = fmt.Sprintf("%s (%d)", line, e.nextNumber)
	}
	e.lines = append(e.lines, line)
}

// visit writes the derivation of inc, assuming its numbered
// dependencies have already been written.
func (e *explainer) visit(inc *Incompatibility, conclusion bool) {
	statement := inc.Describe(e.resolve)
	if conclusion {
		statement = "version solving failed"
	}

	if !inc.isDerived() {
		e.write(inc, statement+".")
		return
	}

	left, right := inc.left, inc.right
	switch {
	case left.isDerived() && right.isDerived():
		leftLine, leftNumbered := e.lineNumbers[left]
		rightLine, rightNumbered := e.lineNumbers[right]
		switch {
		case leftNumbered && rightNumbered:
			e.write(inc, fmt.Sprintf("Because %s (%d) and %s (%d), %s.",
				left.Describe(e.resolve), leftLine, right.Describe(e.resolve), rightLine, statement))
		case leftNumbered:
			e.visit(right, false)
			e.write(inc, fmt.Sprintf("And because %s (%d), %s.", left.Describe(e.resolve), leftLine, statement))
		case rightNumbered:
			e.visit(left, false)
			e.write(inc, fmt.Sprintf("And because %s (%d), %s.", right.Describe(e.resolve), rightLine, statement))
		default:
			e.visit(left, false)
			// The left subtree may share right and have written it
			// already; reference it by number instead of re-deriving.
			if line, numbered := e.lineNumbers[right]; numbered {
				e.write(inc, fmt.Sprintf("And because %s (%d), %s.", right.Describe(e.resolve), line, statement))
				return
			}
			e.visit(right, false)
			e.write(inc, fmt.Sprintf("Thus, %s.", statement))
		}
	case left.isDerived() || right.isDerived():
		derived, external := left, right
		if right.isDerived() {
			derived, external = right, left
		}
		if line, numbered := e.lineNumbers[derived]; numbered {
			e.write(inc, fmt.Sprintf("Because %s (%d) and %s, %s.",
				derived.Describe(e.resolve), line, external.Describe(e.resolve), statement))
			return
		}
		e.visit(derived, false)
		e.write(inc, fmt.Sprintf("And because %s, %s.", external.Describe(e.resolve), statement))
	default:
		e.write(inc, fmt.Sprintf("Because %s and %s, %s.",
			left.Describe(e.resolve), right.Describe(e.resolve), statement))
	}
}
