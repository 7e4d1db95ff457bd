package deplock

// Identifier values uniquely identify particular packages within
// the input to a single resolution.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// IdentifierFromString returns an Identifier based on a provided
// string.
func IdentifierFromString(s string) Identifier {
	return Identifier(s)
}

// NameResolver maps a package Identifier to the name shown in
// rendered output. The solver itself never interprets the result;
// it exists so callers can keep display naming out of the engine.
type NameResolver func(id Identifier) string

// IdentityResolver returns the identifier itself as the display name.
func IdentityResolver(id Identifier) string {
	return string(id)
}

// NotSatisfiable is the error returned when version solving proves
// that no assignment of versions can satisfy the root requirements.
// It is an expected outcome of resolution, not a failure of the
// solver: Derivation holds the chain of incompatibilities that led
// to the root-level conflict, rendered one step per line.
type NotSatisfiable struct {
	// Derivation is the default rendering of the failure, produced
	// with identifier names.
	Derivation string

	// Render re-renders the derivation with a caller-supplied name
	// resolver. Populated by the solver; nil only for zero values.
	Render func(resolve NameResolver) string
}

func (e *NotSatisfiable) Error() string {
	const msg = "version solving failed"
	if e == nil || e.Derivation == "" {
		return msg
	}
	return msg + ":\n" + e.Derivation
}

// Explain renders the failure derivation using the provided name
// resolver. A nil resolver falls back to identifier names.
func (e *NotSatisfiable) Explain(resolve NameResolver) string {
	if e == nil {
		return ""
	}
	if resolve == nil || e.Render == nil {
		return e.Derivation
	}
	return e.Render(resolve)
}
