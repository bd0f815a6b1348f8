package s3

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/asmref/internal/hash"
)

// TransferConfig configures the S3 transfer manager.
type TransferConfig struct {
	// PartSize is the part size for multipart uploads and ranged downloads.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of parts transferred in parallel.
	// Default: 5
	Concurrency int

	// EnableChecksum attaches a CRC32C checksum to uploads.
	// Default: true
	EnableChecksum bool
}

// DefaultTransferConfig returns the default transfer settings.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg TransferConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
	})
}

func newDownloader(client Client, cfg TransferConfig) *manager.Downloader {
	return manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = cfg.PartSize
		d.Concurrency = cfg.Concurrency
	})
}

// computeCRC32C returns the CRC32C checksum of data in S3's format:
// base64 of the big-endian bytes.
func computeCRC32C(data []byte) string {
	sum := hash.CRC32C(data)
	b := []byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)}
	return base64.StdEncoding.EncodeToString(b)
}

// upload writes data in one PutObject when it fits a single part and
// through the multipart uploader otherwise.
func (s *Store) upload(ctx context.Context, key string, data []byte) error {
	if int64(len(data)) <= s.transfer.PartSize {
		input := &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		}
		if s.transfer.EnableChecksum {
			input.ChecksumCRC32C = aws.String(computeCRC32C(data))
		}
		_, err := s.client.PutObject(ctx, input)
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if s.transfer.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	_, err := s.uploader.Upload(ctx, input)
	return err
}
