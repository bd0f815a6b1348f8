// Package blobstore abstracts where metadata images live.
//
// BlobStore is the interface for reading and writing image blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-process map, for tests and fixtures
//   - CachingStore: whole-image LRU cache in front of another store
//   - s3.Store: Amazon S3 via the AWS SDK transfer manager
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs may implement Mappable (zero-copy access) or Fetcher (whole-object
// download); ReadAll picks the cheapest path.
package blobstore
