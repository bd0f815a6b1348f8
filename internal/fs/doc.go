// Package fs provides the file system abstraction used when publishing
// images to a local store.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects write, sync, close and rename failures
//
// Production code uses fs.Default. Tests inject a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 64})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
package fs
