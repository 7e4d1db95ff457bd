package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

const pkgFoo = deplock.Identifier("foo")

func caret(s string) version.Range {
	return version.UntilNextMajor(version.MustParse(s))
}

func exactly(s string) version.Range {
	return version.Exactly(version.MustParse(s))
}

func TestTermRelation(t *testing.T) {
	type tc struct {
		Name    string
		Subject Term
		Other   Term
		Want    Relation
	}

	for _, tt := range []tc{
		{
			Name:    "positive subset satisfies",
			Subject: Positive(pkgFoo, exactly("1.2.0")),
			Other:   Positive(pkgFoo, caret("1.0.0")),
			Want:    RelationSatisfied,
		},
		{
			Name:    "positive disjoint contradicts",
			Subject: Positive(pkgFoo, exactly("2.0.0")),
			Other:   Positive(pkgFoo, caret("1.0.0")),
			Want:    RelationContradicted,
		},
		{
			Name:    "positive overlap is inconclusive",
			Subject: Positive(pkgFoo, version.AtLeast(version.MustParse("1.5.0"))),
			Other:   Positive(pkgFoo, caret("1.0.0")),
			Want:    RelationInconclusive,
		},
		{
			Name:    "negative covering positive contradicts",
			Subject: Negative(pkgFoo, caret("1.0.0")),
			Other:   Positive(pkgFoo, exactly("1.2.0")),
			Want:    RelationContradicted,
		},
		{
			Name:    "negative partial overlap is inconclusive",
			Subject: Negative(pkgFoo, exactly("1.2.0")),
			Other:   Positive(pkgFoo, caret("1.0.0")),
			Want:    RelationInconclusive,
		},
		{
			Name:    "positive outside negation satisfies",
			Subject: Positive(pkgFoo, exactly("2.0.0")),
			Other:   Negative(pkgFoo, caret("1.0.0")),
			Want:    RelationSatisfied,
		},
		{
			Name:    "positive inside negation contradicts",
			Subject: Positive(pkgFoo, exactly("1.2.0")),
			Other:   Negative(pkgFoo, caret("1.0.0")),
			Want:    RelationContradicted,
		},
		{
			Name:    "negative superset satisfies negative",
			Subject: Negative(pkgFoo, caret("1.0.0")),
			Other:   Negative(pkgFoo, exactly("1.2.0")),
			Want:    RelationSatisfied,
		},
		{
			Name:    "negative subset of negative is inconclusive",
			Subject: Negative(pkgFoo, exactly("1.2.0")),
			Other:   Negative(pkgFoo, caret("1.0.0")),
			Want:    RelationInconclusive,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Want, tt.Subject.Relation(tt.Other))
		})
	}
}

func TestTermRelationDifferentPackagesPanics(t *testing.T) {
	assert.Panics(t, func() {
		Positive("a", version.Any()).Relation(Positive("b", version.Any()))
	})
}

func TestTermIntersect(t *testing.T) {
	t.Run("positive positive", func(t *testing.T) {
		got, ok := Positive(pkgFoo, caret("1.0.0")).Intersect(Positive(pkgFoo, version.AtLeast(version.MustParse("1.5.0"))))
		require.True(t, ok)
		assert.True(t, got.Positive)
		assert.True(t, got.Versions.Equal(version.Between(version.MustParse("1.5.0"), version.MustParse("2.0.0"))))
	})

	t.Run("disjoint positives are empty", func(t *testing.T) {
		_, ok := Positive(pkgFoo, exactly("1.0.0")).Intersect(Positive(pkgFoo, exactly("2.0.0")))
		assert.False(t, ok)
	})

	t.Run("negative negative unions", func(t *testing.T) {
		got, ok := Negative(pkgFoo, exactly("1.0.0")).Intersect(Negative(pkgFoo, exactly("2.0.0")))
		require.True(t, ok)
		assert.False(t, got.Positive)
		assert.True(t, got.Versions.Equal(exactly("1.0.0").Union(exactly("2.0.0"))))
	})

	t.Run("mixed subtracts the negation", func(t *testing.T) {
		got, ok := Positive(pkgFoo, caret("1.0.0")).Intersect(Negative(pkgFoo, exactly("1.2.0")))
		require.True(t, ok)
		assert.True(t, got.Positive)
		assert.True(t, got.Versions.Allows(version.MustParse("1.1.0")))
		assert.False(t, got.Versions.Allows(version.MustParse("1.2.0")))
	})

	t.Run("positive swallowed by negation is empty", func(t *testing.T) {
		_, ok := Positive(pkgFoo, exactly("1.2.0")).Intersect(Negative(pkgFoo, caret("1.0.0")))
		assert.False(t, ok)
	})
}

func TestTermNegate(t *testing.T) {
	pos := Positive(pkgFoo, caret("1.0.0"))
	assert.Equal(t, pos, pos.Negate().Negate())
	assert.False(t, pos.Negate().Positive)
}

func TestTermString(t *testing.T) {
	assert.Equal(t, "foo >=1.0.0 <2.0.0", Positive(pkgFoo, caret("1.0.0")).String())
	assert.Equal(t, "not foo 1.2.0", Negative(pkgFoo, exactly("1.2.0")).String())
	assert.Equal(t, "foo", Positive(pkgFoo, version.Any()).String())
}
