package asmref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hupe1980/asmref/blobstore"
	"github.com/hupe1980/asmref/internal/compress"
	"github.com/hupe1980/asmref/internal/ecma"
	"github.com/hupe1980/asmref/internal/hash"
	"github.com/hupe1980/asmref/internal/pe"
	"github.com/hupe1980/asmref/model"
	"github.com/hupe1980/asmref/resource"
	"github.com/hupe1980/asmref/winrt"
	"golang.org/x/sync/errgroup"
)

// Kind classifies a metadata container by its version string.
type Kind = ecma.Kind

const (
	Ecma335                = ecma.Ecma335
	WindowsMetadata        = ecma.WindowsMetadata
	ManagedWindowsMetadata = ecma.ManagedWindowsMetadata
)

// AssemblyDef is the container's own Assembly row.
type AssemblyDef = ecma.AssemblyDef

// Reader owns a loaded metadata image and the Session over it.
//
// All read methods are safe for concurrent use. Close releases the image;
// sessions and byte slices obtained from the Reader must not be used
// afterwards.
type Reader struct {
	name        string
	md          *ecma.Metadata
	tables      *ecma.Tables
	session     *Session
	fingerprint string
	size        int64

	blob    io.Closer
	rc      *resource.Controller
	charged int64
	logger  *Logger
	closed  atomic.Bool
}

// NewReader parses an in-memory image. image may be a PE file or a bare
// metadata root, either optionally zstd or LZ4 compressed. The Reader
// borrows image; the caller must keep it unchanged while the Reader is in
// use.
func NewReader(image []byte, optFns ...Option) (*Reader, error) {
	o := applyOptions(optFns)
	start := time.Now()
	r, err := o.decodeReader(image)
	o.metricsCollector.RecordOpen(int64(len(image)), time.Since(start), err)
	o.logger.LogOpen(context.Background(), "", int64(len(image)), time.Since(start), err)
	return r, err
}

// OpenFile maps the image at path.
func OpenFile(path string, optFns ...Option) (*Reader, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return Open(context.Background(), store, filepath.Base(path), optFns...)
}

func (o options) decodeReader(image []byte) (*Reader, error) {
	if compress.Detect(image) != compress.None {
		var err error
		if image, err = compress.Decompress(image, o.maxImageSize); err != nil {
			return nil, err
		}
	}
	return newReader("", image, o)
}

// open loads one image. With batch set the memory charge is taken without
// waiting: readers of a batch are only closed after the whole batch has
// loaded, so a blocked charge could never be satisfied.
func (o options) open(ctx context.Context, store blobstore.BlobStore, name string, batch bool) (r *Reader, err error) {
	rc := o.resourceController
	logger := o.logger.WithImage(name)
	start := time.Now()
	var size int64
	defer func() {
		o.metricsCollector.RecordOpen(size, time.Since(start), err)
		logger.LogOpen(ctx, name, size, time.Since(start), err)
	}()

	if err := rc.AcquireOpen(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseOpen()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, openError(name, err)
	}
	_, mapped := blob.(blobstore.Mappable)

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		_ = blob.Close()
		return nil, openError(name, err)
	}

	var charged int64
	if compress.Detect(data) != compress.None {
		if data, err = compress.Decompress(data, o.maxImageSize); err != nil {
			_ = blob.Close()
			return nil, openError(name, err)
		}
		charged = int64(len(data))
		// The decompressed copy is independent of the blob.
		_ = blob.Close()
		blob = nil
	} else if !mapped {
		charged = int64(len(data))
		_ = blob.Close()
		blob = nil
	}
	size = int64(len(data))

	if charged > 0 {
		if err := o.chargeMemory(ctx, charged, batch); err != nil {
			if blob != nil {
				_ = blob.Close()
			}
			return nil, openError(name, err)
		}
	}

	r, err = newReader(name, data, o)
	if err != nil {
		rc.ReleaseMemory(charged)
		if blob != nil {
			_ = blob.Close()
		}
		return nil, openError(name, err)
	}
	r.blob = blob
	r.rc = rc
	r.charged = charged
	return r, nil
}

// Open loads the image called name from store.
//
// Mapped blobs (local files, in-memory stores) are parsed in place. Other
// blobs are downloaded; their bytes, and the output of decompression, are
// charged against the resource controller's memory limit until Close.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Reader, error) {
	return applyOptions(optFns).open(ctx, store, name, false)
}

func (o options) chargeMemory(ctx context.Context, n int64, batch bool) error {
	rc := o.resourceController
	if !batch {
		return rc.AcquireMemory(ctx, n)
	}
	if !rc.TryAcquireMemory(n) {
		return resource.ErrMemoryLimitExceeded
	}
	return nil
}

// OpenAll loads names from store in parallel and returns the readers in the
// same order. If any load fails the readers opened so far are closed and the
// first error is returned. The batch must fit the resource controller's
// memory limit as a whole; an image that does not fit fails with
// resource.ErrMemoryLimitExceeded instead of waiting.
func OpenAll(ctx context.Context, store blobstore.BlobStore, names []string, optFns ...Option) ([]*Reader, error) {
	o := applyOptions(optFns)
	readers := make([]*Reader, len(names))

	g, gctx := errgroup.WithContext(ctx)
	if o.parallelism > 0 {
		g.SetLimit(o.parallelism)
	}
	for i, name := range names {
		g.Go(func() error {
			r, err := o.open(gctx, store, name, true)
			if err != nil {
				return err
			}
			readers[i] = r
			return nil
		})
	}

	err := g.Wait()
	o.logger.LogOpenAll(ctx, len(names), err)
	if err != nil {
		for _, r := range readers {
			if r != nil {
				_ = r.Close()
			}
		}
		return nil, err
	}
	return readers, nil
}

// newReader parses a decoded image.
func newReader(name string, image []byte, o options) (*Reader, error) {
	root, err := locateMetadata(image)
	if err != nil {
		return nil, err
	}
	md, err := ecma.Open(root)
	if err != nil {
		return nil, err
	}
	tables, err := ecma.NewTables(md, o.project)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(tables, WithMetricsCollector(o.metricsCollector), withProjection(o.project))
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if name != "" {
		logger = logger.WithImage(name)
	}
	logger.LogSession(context.Background(), md.Kind().String(), tables.RowCount(), session.Anchor())

	return &Reader{
		name:        name,
		md:          md,
		tables:      tables,
		session:     session,
		fingerprint: hash.Fingerprint(root),
		size:        int64(len(image)),
		logger:      logger,
	}, nil
}

func withProjection(on bool) Option {
	return func(o *options) {
		o.project = on
	}
}

var metadataMagic = []byte("BSJB")

func locateMetadata(image []byte) ([]byte, error) {
	switch {
	case pe.IsImage(image):
		return pe.Locate(image)
	case bytes.HasPrefix(image, metadataMagic):
		return image, nil
	default:
		return nil, ErrUnsupportedImage
	}
}

// Name returns the name the image was opened under.
func (r *Reader) Name() string { return r.name }

// Session returns the reference facade.
func (r *Reader) Session() *Session { return r.session }

// Kind returns the container kind.
func (r *Reader) Kind() Kind { return r.md.Kind() }

// MetadataVersion returns the metadata root's version string.
func (r *Reader) MetadataVersion() string { return r.md.Version() }

// Fingerprint returns the CRC32C of the metadata root.
func (r *Reader) Fingerprint() string { return r.fingerprint }

// Size returns the size of the decoded image in bytes.
func (r *Reader) Size() int64 { return r.size }

// Assembly returns the container's own Assembly row. ok is false for a
// module without one.
func (r *Reader) Assembly() (def AssemblyDef, ok bool, err error) {
	if r.closed.Load() {
		return AssemblyDef{}, false, ErrClosed
	}
	return r.md.Assembly()
}

// AssemblyReferences lists every reference handle: physical rows first,
// then the virtual references when the image is projected.
func (r *Reader) AssemblyReferences() []model.AssemblyReferenceHandle {
	return r.session.Handles()
}

// String resolves a string handle against #Strings or, for a virtual
// handle, the projection's name table. It panics on a virtual handle that
// names no entry.
func (r *Reader) String(h model.StringHandle) (string, error) {
	if h.IsVirtual() {
		s, ok := winrt.VirtualString(h.Offset())
		if !ok {
			panic(model.Invariantf("asmref.Reader.String", "unknown virtual string %d", h.Offset()))
		}
		return s, nil
	}
	if r.closed.Load() {
		return "", ErrClosed
	}
	return r.md.String(h.Offset())
}

// Blob resolves a blob handle against #Blob or, for a virtual handle, the
// projection's key table. The returned slice must not be modified. It
// panics on a virtual handle that names no entry.
func (r *Reader) Blob(h model.BlobHandle) ([]byte, error) {
	if h.IsVirtual() {
		b, ok := winrt.VirtualBlob(h.Offset())
		if !ok {
			panic(model.Invariantf("asmref.Reader.Blob", "unknown virtual blob %d", h.Offset()))
		}
		return b, nil
	}
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.md.Blob(h.Offset())
}

// AssemblyReference is a fully decoded reference.
type AssemblyReference struct {
	Handle           model.AssemblyReferenceHandle
	Version          model.Version
	Flags            model.AssemblyFlags
	Name             string
	Culture          string
	PublicKeyOrToken []byte
	HashValue        []byte
	CustomAttributes model.CustomAttributeSet
}

// Virtual reports whether the reference is a projected one.
func (a AssemblyReference) Virtual() bool { return a.Handle.IsVirtual() }

// FullName formats the reference as a display name, e.g.
// "System.Runtime, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b03f5f7f11d50a3a".
func (a AssemblyReference) FullName() string {
	culture := a.Culture
	if culture == "" {
		culture = "neutral"
	}
	s := fmt.Sprintf("%s, Version=%s, Culture=%s", a.Name, a.Version, culture)
	switch {
	case a.Flags.HasPublicKey():
		return s + fmt.Sprintf(", PublicKey=%x", a.PublicKeyOrToken)
	case len(a.PublicKeyOrToken) > 0:
		return s + fmt.Sprintf(", PublicKeyToken=%x", a.PublicKeyOrToken)
	default:
		return s + ", PublicKeyToken=null"
	}
}

// AssemblyReference decodes all attributes of h.
func (r *Reader) AssemblyReference(h model.AssemblyReferenceHandle) (AssemblyReference, error) {
	if r.closed.Load() {
		return AssemblyReference{}, ErrClosed
	}
	s := r.session
	ref := AssemblyReference{Handle: h}

	var err error
	if ref.Version, err = s.Version(h); err != nil {
		return AssemblyReference{}, err
	}
	if ref.Flags, err = s.Flags(h); err != nil {
		return AssemblyReference{}, err
	}
	name, err := s.Name(h)
	if err != nil {
		return AssemblyReference{}, err
	}
	if ref.Name, err = r.String(name); err != nil {
		return AssemblyReference{}, err
	}
	culture, err := s.Culture(h)
	if err != nil {
		return AssemblyReference{}, err
	}
	if ref.Culture, err = r.String(culture); err != nil {
		return AssemblyReference{}, err
	}
	key, err := s.PublicKeyOrToken(h)
	if err != nil {
		return AssemblyReference{}, err
	}
	if ref.PublicKeyOrToken, err = r.Blob(key); err != nil {
		return AssemblyReference{}, err
	}
	hv, err := s.HashValue(h)
	if err != nil {
		return AssemblyReference{}, err
	}
	if ref.HashValue, err = r.Blob(hv); err != nil {
		return AssemblyReference{}, err
	}
	if ref.CustomAttributes, err = s.CustomAttributes(h); err != nil {
		return AssemblyReference{}, err
	}
	return ref, nil
}

// CustomAttribute is a decoded CustomAttribute row.
type CustomAttribute struct {
	Row       uint32
	Namespace string
	Name      string
	Value     []byte
}

// TypeName returns the attribute's namespace-qualified type name.
func (c CustomAttribute) TypeName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// CustomAttribute decodes a CustomAttribute row, resolving the type that
// declares its constructor.
func (r *Reader) CustomAttribute(row uint32) (CustomAttribute, error) {
	if r.closed.Load() {
		return CustomAttribute{}, ErrClosed
	}
	ca, err := r.md.CustomAttribute(row)
	if err != nil {
		return CustomAttribute{}, err
	}
	ns, name, err := r.md.AttributeType(ca.Constructor)
	if err != nil {
		return CustomAttribute{}, err
	}
	value, err := r.md.Blob(ca.Value.Offset())
	if err != nil {
		return CustomAttribute{}, err
	}
	return CustomAttribute{Row: row, Namespace: ns, Name: name, Value: value}, nil
}

// CustomAttributeType returns the namespace and name of the attribute type
// of a CustomAttribute row.
func (r *Reader) CustomAttributeType(row uint32) (namespace, name string, err error) {
	ca, err := r.CustomAttribute(row)
	if err != nil {
		return "", "", err
	}
	return ca.Namespace, ca.Name, nil
}

// Close releases the image. Closing twice returns ErrClosed.
func (r *Reader) Close() error {
	if r.closed.Swap(true) {
		return ErrClosed
	}
	var err error
	if r.blob != nil {
		err = r.blob.Close()
		r.blob = nil
	}
	r.rc.ReleaseMemory(r.charged)
	r.charged = 0
	r.logger.LogClose(context.Background(), r.name, err)
	return err
}

// IsNotFound reports whether err means the image does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, blobstore.ErrNotFound)
}
