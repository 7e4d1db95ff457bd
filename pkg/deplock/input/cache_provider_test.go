package input_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/input"
	"github.com/deplock/deplock/pkg/deplock/version"
)

func TestInput(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Input Suite")
}

var _ = Describe("CacheProvider", func() {
	var (
		ctx      context.Context
		provider *input.CacheProvider
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = input.NewCacheProvider()
	})

	It("returns versions newest first regardless of insertion order", func() {
		provider.AddPackage("foo", version.MustParse("1.0.0"))
		provider.AddPackage("foo", version.MustParse("2.0.0"))
		provider.AddPackage("foo", version.MustParse("1.5.0"))

		versions, err := provider.GetVersions(ctx, "foo")
		Expect(err).ToNot(HaveOccurred())
		Expect(versions).To(Equal([]version.Version{
			version.MustParse("2.0.0"),
			version.MustParse("1.5.0"),
			version.MustParse("1.0.0"),
		}))
	})

	It("returns an empty slice for unknown packages", func() {
		versions, err := provider.GetVersions(ctx, "ghost")
		Expect(err).ToNot(HaveOccurred())
		Expect(versions).To(BeEmpty())

		deps, err := provider.GetDependencies(ctx, "ghost", version.MustParse("1.0.0"))
		Expect(err).ToNot(HaveOccurred())
		Expect(deps).To(BeEmpty())
	})

	It("replaces the dependency list when a version is re-registered", func() {
		provider.AddPackage("foo", version.MustParse("1.0.0"),
			input.Dependency{Package: "bar", Versions: version.Any()})
		provider.AddPackage("foo", version.MustParse("1.0.0"),
			input.Dependency{Package: "baz", Versions: version.Any()})

		versions, err := provider.GetVersions(ctx, "foo")
		Expect(err).ToNot(HaveOccurred())
		Expect(versions).To(HaveLen(1))

		deps, err := provider.GetDependencies(ctx, "foo", version.MustParse("1.0.0"))
		Expect(err).ToNot(HaveOccurred())
		Expect(deps).To(Equal([]input.Dependency{{Package: "baz", Versions: version.Any()}}))
	})

	It("lists registered packages in sorted order", func() {
		provider.AddPackage("zeta", version.MustParse("1.0.0"))
		provider.AddPackage("alpha", version.MustParse("1.0.0"))
		provider.AddPackage("mid", version.MustParse("1.0.0"))

		Expect(provider.Packages()).To(Equal([]deplock.Identifier{"alpha", "mid", "zeta"}))
	})

	It("hands out copies that callers may mutate", func() {
		provider.AddPackage("foo", version.MustParse("1.0.0"),
			input.Dependency{Package: "bar", Versions: version.Any()})

		deps, err := provider.GetDependencies(ctx, "foo", version.MustParse("1.0.0"))
		Expect(err).ToNot(HaveOccurred())
		deps[0].Package = "mutated"

		again, err := provider.GetDependencies(ctx, "foo", version.MustParse("1.0.0"))
		Expect(err).ToNot(HaveOccurred())
		Expect(again[0].Package).To(Equal(deplock.Identifier("bar")))
	})
})
