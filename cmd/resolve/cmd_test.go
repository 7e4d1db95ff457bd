package resolve_test

import (
	"bytes"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deplock/deplock/cmd/resolve"
)

func TestResolve(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Resolve Suite")
}

func runResolve(args ...string) (string, string, error) {
	cmd := resolve.NewResolveCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "internal", "fixture", "testdata", name)
}

var _ = Describe("Resolve", func() {
	It("should fail if the fixture file does not exist", func() {
		_, _, err := runResolve(fixturePath("nope.json"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("not found"))
	})

	It("should print the selected versions for a solvable fixture", func() {
		out, _, err := runResolve(fixturePath("simple-chain.json"))
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("solution found:"))
		Expect(out).To(ContainSubstring("alpha = 2.0.0"))
		Expect(out).To(ContainSubstring("beta = 1.1.0"))
		Expect(out).To(ContainSubstring("gamma = 1.0.0"))
	})

	It("should print a derivation for an unsolvable fixture", func() {
		out, _, err := runResolve(fixturePath("shared-dep-conflict.json"))
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("no solution found:"))
		Expect(out).To(ContainSubstring("shared"))
	})

	It("should log solver steps to stderr when tracing", func() {
		_, errOut, err := runResolve(fixturePath("simple-chain.json"), "--trace")
		Expect(err).ToNot(HaveOccurred())
		Expect(errOut).To(ContainSubstring("decide"))
	})
})
