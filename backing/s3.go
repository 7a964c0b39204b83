package backing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mplewis/layerkv"
)

// S3API is the subset of *s3.Client the S3 backing uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3 stores each entry as an object in an S3 bucket. Ids are object keys;
// namespacing inside a shared bucket is done with a keys.Prefix Store.
type S3 struct {
	bucket  string
	client  S3API
	context context.Context
}

// S3Args are the arguments for creating a new S3 backing.
type S3Args struct {
	Bucket  string          // Required. The name of the S3 bucket to use.
	Client  S3API           // Optional. The S3 client to use. If not provided, a client will be automatically configured from your environment.
	Context context.Context // Optional. The context to use for S3 operations. If not provided, defaults to context.Background().
}

// NewS3 creates a new backing which stores data in AWS S3.
func NewS3(args S3Args) (*S3, error) {
	if args.Bucket == "" {
		return nil, errors.New("s3 backing: bucket is required")
	}
	if args.Context == nil {
		args.Context = context.Background()
	}
	if args.Client == nil {
		cfg, err := config.LoadDefaultConfig(args.Context)
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		args.Client = s3.NewFromConfig(cfg)
	}
	logger.Debug("s3 backing", "bucket", args.Bucket)
	return &S3{
		client:  args.Client,
		context: args.Context,
		bucket:  args.Bucket,
	}, nil
}

// Get returns the body of the object at id.
func (s *S3) Get(id string) ([]byte, error) {
	r, err := s.client.GetObject(s.context, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if notFound(err) {
		return nil, layerkv.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", id, err)
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// Set uploads data as the object at id.
func (s *S3) Set(id string, data []byte) error {
	_, err := s.client.PutObject(s.context, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", id, err)
	}
	return nil
}

// Delete removes the object at id. S3 deletes are idempotent, so presence is
// checked first to report ErrNotFound.
func (s *S3) Delete(id string) error {
	ok, err := s.Contains(id)
	if err != nil {
		return err
	}
	if !ok {
		return layerkv.NotFound(id)
	}
	_, err = s.client.DeleteObject(s.context, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}

// Keys lists the bucket one page at a time, in the lexicographic order S3 returns.
func (s *S3) Keys() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)})
		for paginator.HasMorePages() {
			output, err := paginator.NextPage(s.context)
			if err != nil {
				yield("", fmt.Errorf("listing %s: %w", s.bucket, err))
				return
			}
			for _, c := range output.Contents {
				if !yield(aws.ToString(c.Key), nil) {
					return
				}
			}
		}
	}
}

// Contains issues a HEAD request for id.
func (s *S3) Contains(id string) (bool, error) {
	_, err := s.client.HeadObject(s.context, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if notFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", id, err)
	}
	return true, nil
}

// Count lists the whole bucket; S3 has no object count call.
func (s *S3) Count() (int, error) {
	return layerkv.CountKeys(s.Keys())
}

// notFound checks if an error is an S3 NoSuchKey (GET) or NotFound (HEAD) error.
func notFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
