package backing_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/backing"
	"github.com/mplewis/layerkv/keys"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fakeS3 is an in-memory bucket that pages listings two objects at a time.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	lists   int
	failGet error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++

	var ids []string
	for id := range f.objects {
		if id > aws.ToString(in.ContinuationToken) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(ids) > 2 {
		ids = ids[:2]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(ids[1])
	}
	for _, id := range ids {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(id)})
	}
	out.KeyCount = aws.Int32(int32(len(ids)))
	return out, nil
}

var _ = Describe("S3", func() {
	var fake *fakeS3

	newS3 := func() *backing.S3 {
		fake = newFakeS3()
		s, err := backing.NewS3(backing.S3Args{Bucket: "layerkv-test", Client: fake})
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	behavesLikeAPersister(func() layerkv.Bytes {
		return newS3()
	})

	It("requires a bucket", func() {
		_, err := backing.NewS3(backing.S3Args{Client: newFakeS3()})
		Expect(err).To(MatchError("s3 backing: bucket is required"))
	})

	It("lists lazily, page by page", func() {
		s := newS3()
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			Expect(s.Set(id, []byte("x"))).To(Succeed())
		}

		ids, err := layerkv.CollectKeys[string, []byte](s)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"a", "b", "c", "d", "e"}))
		Expect(fake.lists).To(Equal(3))

		fake.lists = 0
		for range s.Keys() {
			break
		}
		Expect(fake.lists).To(Equal(1))
	})

	It("passes through other client errors", func() {
		s := newS3()
		boom := errors.New("throttled")
		fake.failGet = boom
		_, err := s.Get("k")
		Expect(err).To(MatchError(boom))
		Expect(errors.Is(err, layerkv.ErrNotFound)).To(BeFalse())
	})

	It("shares a bucket between prefixed stores", func() {
		s := newS3()
		alpha := layerkv.WrapKeys[string, string, []byte](s, keys.Prefix("alpha/"))
		beta := layerkv.WrapKeys[string, string, []byte](s, keys.Prefix("beta/"))

		Expect(alpha.Set("k", []byte("a"))).To(Succeed())
		Expect(beta.Set("k", []byte("b"))).To(Succeed())

		Expect(fake.objects).To(HaveKeyWithValue("alpha/k", []byte("a")))
		Expect(fake.objects).To(HaveKeyWithValue("beta/k", []byte("b")))
		Expect(alpha.Count()).To(Equal(1))
		Expect(beta.Get("k")).To(Equal([]byte("b")))
	})
})

var _ = Describe("S3 against a live bucket", func() {
	BeforeEach(func() {
		if os.Getenv("TEST_WITH_LIVE_S3") == "" {
			Skip("set TEST_WITH_LIVE_S3 and LAYERKV_TEST_BUCKET to run")
		}
	})

	behavesLikeAPersister(func() layerkv.Bytes {
		s, err := backing.NewS3(backing.S3Args{Bucket: os.Getenv("LAYERKV_TEST_BUCKET")})
		Expect(err).NotTo(HaveOccurred())
		// Each test gets its own folder of the shared bucket.
		store := layerkv.WrapKeys[string, string, []byte](s, keys.Prefix(uuid.NewString()+"/"))
		cleanup(func() { Expect(layerkv.Clear[string, []byte](store)).To(Succeed()) })
		return store
	})
})
