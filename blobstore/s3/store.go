package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/fmmap/blobstore"
)

const contentType = "application/octet-stream"

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

type options struct {
	prefix      string
	region      string
	endpoint    string
	partSize    int64
	concurrency int
	keepParts   bool
}

// Option configures a Store.
type Option func(*options)

// WithPrefix prepends p to every key.
func WithPrefix(p string) Option {
	return func(o *options) { o.prefix = p }
}

// WithRegion overrides the region from the environment. Only used by New.
func WithRegion(r string) Option {
	return func(o *options) { o.region = r }
}

// WithEndpoint points New at an S3-compatible server and enables
// path-style addressing.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithPartSize sets the multipart chunk size for Create.
func WithPartSize(n int64) Option {
	return func(o *options) { o.partSize = n }
}

// WithConcurrency sets how many parts Create uploads in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithLeavePartsOnError keeps uploaded parts when a multipart upload fails.
func WithLeavePartsOnError(keep bool) Option {
	return func(o *options) { o.keepParts = keep }
}

// New loads the default AWS configuration and returns a Store for bucket.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	return NewStore(client, bucket, optFns...), nil
}

// NewStore creates a new S3 blob store on an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: o.prefix,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			if o.partSize > 0 {
				u.PartSize = max(o.partSize, manager.MinUploadPartSize)
			}
			if o.concurrency > 0 {
				u.Concurrency = o.concurrency
			}
			u.LeavePartsOnError = o.keepParts
		}),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

// Open issues a HEAD to learn the size; reads are ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3: %s: %w", key, blobstore.ErrNotFound)
		}
		return nil, err
	}

	return &s3Blob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	return err
}

// Create streams through the upload manager, switching to multipart once the
// data exceeds one part.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	key := s.key(name)
	pr, pw := io.Pipe()

	blob := &s3WritableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        pr,
			ContentType: aws.String(contentType),
		})
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob, nil
}

// Delete removes a blob. S3 deletes are idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List pages through ListObjectsV2 and strips the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)
	if strings.HasSuffix(prefix, "/") {
		fullPrefix += "/"
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name = strings.TrimPrefix(name, "/")
			if name != "" {
				keys = append(keys, name)
			}
		}
	}

	sort.Strings(keys)
	return keys, nil
}
