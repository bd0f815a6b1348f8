// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("winmd/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	r, err := asmref.Open(ctx, store, "Windows.Foundation.winmd")
//
// Whole images are fetched with the transfer manager's parallel ranged
// downloader; uploads carry a CRC32C checksum.
package s3
