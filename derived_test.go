package layerkv_test

import (
	"errors"

	"github.com/hashicorp/go-multierror"
	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/backing"
	"github.com/mplewis/layerkv/keys"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("derived operations", func() {
	var mem *backing.Memory[string, string]

	BeforeEach(func() {
		mem = backing.NewMemory[string, string]()
	})

	It("snapshots into a map", func() {
		Expect(layerkv.SetMany[string, string](mem, map[string]string{"a": "1", "b": "2"})).To(Succeed())
		snap, err := layerkv.Snapshot[string, string](mem)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).To(Equal(map[string]string{"a": "1", "b": "2"}))
	})

	It("combines every SetMany failure", func() {
		numbered := layerkv.WrapKeys[string, string, string](mem, keys.MustPattern("", `[0-9]+`))
		err := layerkv.SetMany[string, string](numbered, map[string]string{"1": "ok", "x": "bad", "y": "bad"})
		Expect(err).To(MatchError(layerkv.ErrKeyValidation))

		var merr *multierror.Error
		Expect(errors.As(err, &merr)).To(BeTrue())
		Expect(merr.Errors).To(HaveLen(2))
		Expect(mem.Get("1")).To(Equal("ok"))
	})

	It("clears every key it can see", func() {
		s := layerkv.WrapKeys[string, string, string](mem, keys.Prefix("mine/"))
		Expect(s.Set("a", "1")).To(Succeed())
		Expect(s.Set("b", "2")).To(Succeed())
		Expect(mem.Set("theirs", "3")).To(Succeed())

		Expect(layerkv.Clear[string, string](s)).To(Succeed())
		Expect(s.Count()).To(Equal(0))
		Expect(collect[string, string](mem)).To(Equal([]string{"theirs"}))
	})

	It("reports failed deletes from Clear", func() {
		Expect(mem.Set("a", "1")).To(Succeed())
		err := layerkv.Clear[string, string](layerkv.NoDelete[string, string](mem))
		Expect(err).To(MatchError(layerkv.ErrUnsupported))
	})

	It("pops a value", func() {
		Expect(mem.Set("a", "1")).To(Succeed())
		Expect(layerkv.Pop[string, string](mem, "a")).To(Equal("1"))
		Expect(mem.Contains("a")).To(BeFalse())

		_, err := layerkv.Pop[string, string](mem, "a")
		Expect(err).To(MatchError(layerkv.ErrNotFound))
	})

	It("sets a default only when absent", func() {
		Expect(layerkv.SetDefault[string, string](mem, "a", "1")).To(Equal("1"))
		Expect(layerkv.SetDefault[string, string](mem, "a", "2")).To(Equal("1"))
		Expect(mem.Get("a")).To(Equal("1"))
	})

	It("returns errors other than not found from GetOr", func() {
		numbered := layerkv.WrapKeys[string, string, string](mem, keys.MustPattern("", `[0-9]+`))
		_, err := layerkv.GetOr[string, string](numbered, "x", "def")
		Expect(err).To(MatchError(layerkv.ErrKeyValidation))
	})

	It("ends Items at the first failed lookup", func() {
		s := layerkv.WrapValues[string, string, string](mem, layerkv.ValueFuncs[string, string]{
			Decode: func(d string) (string, error) {
				if d == "bad" {
					return "", layerkv.ErrDeserialization
				}
				return d, nil
			},
		})
		Expect(mem.Set("a", "1")).To(Succeed())
		Expect(mem.Set("b", "bad")).To(Succeed())
		Expect(mem.Set("c", "3")).To(Succeed())

		var seen []string
		var failed error
		for item, err := range s.Items() {
			if err != nil {
				failed = err
				Expect(item.Key).To(Equal("b"))
				continue
			}
			seen = append(seen, item.Key)
		}
		Expect(seen).To(Equal([]string{"a"}))
		Expect(failed).To(MatchError(layerkv.ErrDeserialization))

		_, err := layerkv.Snapshot[string, string](s)
		Expect(err).To(MatchError(layerkv.ErrDeserialization))
	})
})
