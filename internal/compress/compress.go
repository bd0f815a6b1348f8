// Package compress packs metadata images into zstd or LZ4 frames and
// unpacks them again. The codec is detected from the frame magic.
package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec defines the compression algorithm used.
type Codec uint8

const (
	// None indicates raw, uncompressed data.
	None Codec = iota
	// LZ4 indicates an LZ4 frame (fast, good for hot data).
	LZ4
	// ZSTD indicates a zstd frame (better ratio, good for cold data).
	ZSTD
)

const (
	zstdMagic = 0xFD2FB528
	lz4Magic  = 0x184D2204
)

// ErrTooLarge is returned when a frame inflates past the caller's limit.
var ErrTooLarge = errors.New("compress: decompressed data exceeds limit")

func (c Codec) String() string {
	switch c {
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// ParseCodec maps a codec name to a Codec.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("compress: unknown codec %q", name)
	}
}

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Detect returns the codec of the frame at the start of data.
func Detect(data []byte) Codec {
	if len(data) < 4 {
		return None
	}
	switch binary.LittleEndian.Uint32(data) {
	case zstdMagic:
		return ZSTD
	case lz4Magic:
		return LZ4
	default:
		return None
	}
}

// Compress wraps data in a frame of the given codec.
func Compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case None:
		return data, nil
	case ZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)

		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(lz4.Level5), lz4.ChecksumOption(true)); err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("compress: unknown codec %d", codec)
	}
}

// Decompress inflates a frame detected by Detect. Uncompressed input is
// returned as is. limit caps the inflated size; zero means no cap.
func Decompress(data []byte, limit int64) ([]byte, error) {
	switch Detect(data) {
	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		if limit > 0 && int64(len(out)) > limit {
			return nil, ErrTooLarge
		}
		return out, nil
	case LZ4:
		var r io.Reader = lz4.NewReader(bytes.NewReader(data))
		if limit > 0 {
			r = io.LimitReader(r, limit+1)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		if limit > 0 && int64(len(out)) > limit {
			return nil, ErrTooLarge
		}
		return out, nil
	default:
		return data, nil
	}
}
