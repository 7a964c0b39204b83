package backing_test

import (
	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/backing"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExplicitKeys", func() {
	It("lists the given ids once each, in order", func() {
		e := backing.NewExplicitKeys([]string{"b", "a", "b", "c"})
		ids, err := layerkv.CollectKeys[string, string](e)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"b", "a", "c"}))
		Expect(e.Count()).To(Equal(3))
	})

	It("answers lookups with the id itself", func() {
		e := backing.NewExplicitKeys([]string{"a"})
		Expect(e.Get("a")).To(Equal("a"))
		Expect(e.Contains("a")).To(BeTrue())

		_, err := e.Get("z")
		Expect(err).To(MatchError(layerkv.ErrNotFound))
		Expect(e.Contains("z")).To(BeFalse())
	})

	It("refuses writes", func() {
		e := backing.NewExplicitKeys([]string{"a"})
		Expect(e.Set("b", "b")).To(MatchError(layerkv.ErrUnsupported))
		Expect(e.Delete("a")).To(MatchError(layerkv.ErrUnsupported))
		Expect(e.Count()).To(Equal(1))
	})

	Describe("relative", func() {
		ids := []string{"/root/of/foo", "/root/of/bar", "/root/for/alice"}

		It("strips the common prefix", func() {
			rel := backing.ExplicitKeysRelative(ids)
			keys, err := layerkv.CollectKeys[string, string](rel)
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(Equal([]string{"of/foo", "of/bar", "for/alice"}))
		})

		It("maps relative keys back to the full ids", func() {
			rel := backing.ExplicitKeysRelative(ids)
			Expect(rel.Get("for/alice")).To(Equal("/root/for/alice"))
			Expect(rel.Contains("of/bar")).To(BeTrue())
			Expect(rel.Contains("nope")).To(BeFalse())
			Expect(rel.Count()).To(Equal(3))
		})
	})
})
