package backing_test

import (
	"os"
	"path/filepath"

	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/backing"
	"github.com/mplewis/layerkv/keys"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("File", func() {
	behavesLikeAPersister(func() layerkv.Bytes {
		return backing.NewFile(tempDir())
	})

	var root string
	var f *backing.File

	BeforeEach(func() {
		root = tempDir()
		f = backing.NewFile(root)
	})

	It("maps ids to relative paths", func() {
		Expect(f.Set("memory/global.md", []byte("notes"))).To(Succeed())
		data, err := os.ReadFile(filepath.Join(root, "memory", "global.md"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("notes"))
	})

	It("enumerates in lexical order and skips hidden entries", func() {
		Expect(f.Set("b.md", []byte("x"))).To(Succeed())
		Expect(f.Set("a/z.md", []byte("x"))).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0o644)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(root, ".git"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("x"), 0o644)).To(Succeed())

		ids, err := layerkv.CollectKeys[string, []byte](f)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"a/z.md", "b.md"}))
	})

	It("treats a missing root as empty", func() {
		missing := backing.NewFile(filepath.Join(root, "nope"))
		Expect(missing.Count()).To(Equal(0))
	})

	It("rejects ids that escape the root", func() {
		for _, id := range []string{"../outside", "/etc/passwd", "", "./a", "a/", "a//b", "x/../a"} {
			Expect(f.Set(id, []byte("x"))).To(MatchError(layerkv.ErrKeyValidation))
			_, err := f.Get(id)
			Expect(err).To(MatchError(layerkv.ErrKeyValidation))
			Expect(f.Contains(id)).To(BeFalse())
		}
	})

	It("rejects hidden ids so that every stored id is enumerated", func() {
		for _, id := range []string{".env", "a/.b", ".tmp-1/x"} {
			Expect(f.Set(id, []byte("x"))).To(MatchError(layerkv.ErrKeyValidation))
			Expect(f.Contains(id)).To(BeFalse())
		}
		Expect(f.Count()).To(Equal(0))
	})

	It("never exposes an entry under a second name", func() {
		s := layerkv.WrapKeys[string, string, []byte](f, keys.Prefix("ns/"))
		Expect(s.Set("./a", []byte("x"))).To(MatchError(layerkv.ErrKeyValidation))
		Expect(s.Set("a", []byte("x"))).To(Succeed())

		ids, err := layerkv.CollectKeys[string, []byte](s)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"a"}))
		Expect(s.Contains("./a")).To(BeFalse())
	})

	It("prunes directories emptied by a delete", func() {
		Expect(f.Set("a/b/c.md", []byte("x"))).To(Succeed())
		Expect(f.Delete("a/b/c.md")).To(Succeed())
		_, err := os.Stat(filepath.Join(root, "a"))
		Expect(os.IsNotExist(err)).To(BeTrue())
		_, err = os.Stat(root)
		Expect(err).NotTo(HaveOccurred())
	})

	It("does not treat directories as entries", func() {
		Expect(f.Set("dir/file", []byte("x"))).To(Succeed())
		Expect(f.Contains("dir")).To(BeFalse())
		Expect(f.Delete("dir")).To(MatchError(layerkv.ErrNotFound))
	})

	It("leaves no temp files behind", func() {
		Expect(f.Set("k", []byte("v"))).To(Succeed())
		entries, err := os.ReadDir(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(Equal("k"))
	})
})
