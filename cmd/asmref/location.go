package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/asmref/blobstore"
	"github.com/hupe1980/asmref/blobstore/minio"
	"github.com/hupe1980/asmref/blobstore/s3"
	"github.com/hupe1980/asmref/cache"
)

// location is a parsed image address: a local path, s3://bucket/key or
// minio://bucket/key.
type location struct {
	scheme string
	bucket string
	// root is the directory of a local path.
	root string
	name string
}

func parseLocation(s string) (location, error) {
	for _, scheme := range []string{"s3", "minio"} {
		rest, ok := strings.CutPrefix(s, scheme+"://")
		if !ok {
			continue
		}
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return location{}, fmt.Errorf("%s: missing bucket", s)
		}
		return location{scheme: scheme, bucket: bucket, name: key}, nil
	}
	return location{scheme: "file", root: filepath.Dir(s), name: filepath.Base(s)}, nil
}

func (l location) String() string {
	if l.scheme == "file" {
		return filepath.Join(l.root, l.name)
	}
	return l.scheme + "://" + l.bucket + "/" + l.name
}

// store returns the BlobStore l names. Remote stores are fronted by an
// in-memory cache.
func (a *app) store(ctx context.Context, l location) (blobstore.BlobStore, error) {
	var remote blobstore.BlobStore
	switch l.scheme {
	case "file":
		return blobstore.NewLocalStore(l.root), nil
	case "s3":
		opts := []s3.Option{s3.WithResourceController(a.rc)}
		if a.cfg.S3Region != "" {
			opts = append(opts, s3.WithRegion(a.cfg.S3Region))
		}
		if a.cfg.S3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(a.cfg.S3Endpoint))
		}
		st, err := s3.New(ctx, l.bucket, opts...)
		if err != nil {
			return nil, err
		}
		remote = st
	case "minio":
		st, err := minio.New(minio.Config{
			Endpoint:  a.cfg.MinioEndpoint,
			AccessKey: a.cfg.MinioAccessKey,
			SecretKey: a.cfg.MinioSecretKey,
			Secure:    a.cfg.MinioSecure,
			Region:    a.cfg.MinioRegion,
		}, l.bucket, "", a.rc)
		if err != nil {
			return nil, err
		}
		remote = st
	default:
		return nil, fmt.Errorf("unknown scheme %q", l.scheme)
	}
	if a.cfg.CacheBytes <= 0 {
		return remote, nil
	}
	return blobstore.NewCachingStore(remote, a.cache(), l.scheme+"://"+l.bucket), nil
}

func (a *app) cache() cache.BlobCache {
	if a.lru == nil {
		a.lru = cache.NewLRU(a.cfg.CacheBytes, a.rc)
	}
	return a.lru
}
