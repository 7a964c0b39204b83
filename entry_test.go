package layerkv_test

import (
	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/backing"
	"github.com/mplewis/layerkv/keys"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Entry", func() {
	It("behaves as expected", func() {
		raw := backing.NewMemory[string, string]()
		s := layerkv.WrapKeys[string, string, string](raw, keys.Prefix("ns/"))
		o := layerkv.At[string, string](s, "foo")
		o2 := layerkv.At[string, string](s, "bar")
		Expect(o.Key()).To(Equal("foo"))

		// get not found
		_, found, err := o.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())

		// set, then get found
		Expect(o.Set("baz")).To(Succeed())
		data, found, err := o.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(data).To(Equal("baz"))

		// a different key holds its own value
		Expect(o2.Set("qux")).To(Succeed())
		data, _, err = o.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal("baz"))
		Expect(raw.Get("ns/bar")).To(Equal("qux"))

		// delete, then get not found; deleting again is fine
		Expect(o.Del()).To(Succeed())
		_, found, err = o.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
		Expect(o.Del()).To(Succeed())
	})

	It("reports other errors", func() {
		numbered := layerkv.WrapKeys[string, string, string](backing.NewMemory[string, string](), keys.MustPattern("", `[0-9]+`))
		e := layerkv.At[string, string](numbered, "abc")
		_, found, err := e.Get()
		Expect(err).To(MatchError(layerkv.ErrKeyValidation))
		Expect(found).To(BeTrue())
		Expect(e.Del()).To(MatchError(layerkv.ErrKeyValidation))
	})
})
