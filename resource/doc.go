// Package resource bounds the work done when many images are opened at once.
//
// A Controller governs three resources:
//
//   - Memory: bytes of decoded (decompressed or downloaded) images held
//   - Concurrency: images opened in parallel
//   - IO: bytes per second read from remote stores (token bucket)
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    MaxConcurrentOpens: 8,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireOpen(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseOpen()
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
