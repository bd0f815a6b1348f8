package s3

import (
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
	"github.com/hupe1980/asmref/blobstore"
	"github.com/hupe1980/asmref/resource"
)

// Client is the subset of the S3 API the store uses.
type Client interface {
	manager.UploadAPIClient
	manager.DownloadAPIClient
	s3.HeadObjectAPIClient
	s3.ListObjectsV2APIClient
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client     Client
	bucket     string
	prefix     string
	transfer   TransferConfig
	uploader   *manager.Uploader
	downloader *manager.Downloader
	rc         *resource.Controller
}

var _ blobstore.BlobStore = (*Store)(nil)

type options struct {
	prefix    string
	region    string
	endpoint  string
	pathStyle bool
	transfer  TransferConfig
	rc        *resource.Controller
}

// Option configures a Store.
type Option func(*options)

// WithPrefix prepends prefix to every key (e.g. "winmd/").
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the shared AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at a custom endpoint with path-style
// addressing, e.g. a local S3 emulator.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.pathStyle = true
	}
}

// WithTransferConfig overrides the transfer manager settings.
func WithTransferConfig(cfg TransferConfig) Option {
	return func(o *options) { o.transfer = cfg }
}

// WithResourceController throttles reads through rc's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

func applyOptions(opts []Option) options {
	o := options{transfer: DefaultTransferConfig()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// New loads the default AWS configuration and returns a Store for bucket.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	o := applyOptions(opts)

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
		}
		so.UsePathStyle = o.pathStyle
	})
	return newStore(client, bucket, o), nil
}

// NewStore wraps an existing client.
func NewStore(client Client, bucket string, opts ...Option) *Store {
	return newStore(client, bucket, applyOptions(opts))
}

func newStore(client Client, bucket string, o options) *Store {
	return &Store{
		client:     client,
		bucket:     bucket,
		prefix:     o.prefix,
		transfer:   o.transfer,
		uploader:   newUploader(client, o.transfer),
		downloader: newDownloader(client, o.transfer),
		rc:         o.rc,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object and returns a lazily-read blob.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, blobstore.ErrNotFound
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &s3Blob{
		store: s,
		key:   key,
		size:  aws.ToInt64(head.ContentLength),
	}, nil
}

// Put uploads data, attaching a CRC32C checksum when enabled.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.upload(ctx, s.key(name), data)
}

// List returns the names under prefix relative to the store prefix.
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
			rel := aws.ToString(obj.Key)
			if s.prefix != "" {
				rel = strings.TrimPrefix(rel, strings.TrimSuffix(s.prefix, "/"))
				rel = strings.TrimPrefix(rel, "/")
			}
			keys = append(keys, rel)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// s3Blob implements blobstore.Blob and blobstore.Fetcher.
type s3Blob struct {
	store *Store
	key   string
	size  int64
}

func (b *s3Blob) Close() error {
	return nil
}

func (b *s3Blob) Size() int64 {
	return b.size
}

// ReadAt issues a ranged GET.
func (b *s3Blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	end := min(off+int64(len(p)), b.size) - 1
	resp, err := b.store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(resource.NewRateLimitedReader(ctx, resp.Body, b.store.rc), p[:want])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Fetch downloads the whole object with the transfer manager.
func (b *s3Blob) Fetch(ctx context.Context) ([]byte, error) {
	if err := b.store.rc.AcquireIO(ctx, int(b.size)); err != nil {
		return nil, err
	}
	buf := manager.NewWriteAtBuffer(make([]byte, 0, b.size))
	n, err := b.store.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		return nil, err
	}
	if n != b.size {
		return nil, io.ErrUnexpectedEOF
	}
	return buf.Bytes(), nil
}
