// Package asmref reads assembly references from ECMA-335 metadata and
// applies the Windows Runtime projection.
//
// A .winmd file references mscorlib, but code compiled against it binds to
// a set of contract assemblies (System.Runtime, System.ObjectModel, ...)
// that never appear in the metadata. asmref projects those contracts as six
// virtual assembly references that sit after the physical AssemblyRef rows
// and derive their attributes from the mscorlib row, the anchor.
//
// # Quick Start
//
// Local file:
//
//	r, err := asmref.OpenFile("Windows.Foundation.winmd")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for _, h := range r.AssemblyReferences() {
//	    ref, _ := r.AssemblyReference(h)
//	    fmt.Println(ref.FullName())
//	}
//
// Remote store:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("winmd/"))
//	r, _ := asmref.Open(ctx, store, "Windows.winmd")
//
// # Sessions
//
// Session is the attribute facade. Each operation takes an opaque
// model.AssemblyReferenceHandle and dispatches on its virtual bit:
//
//	s := r.Session()
//	v, _ := s.Version(h)           // 4.0.0.0 for the anchor and most contracts
//	key, _ := s.PublicKeyOrToken(h) // heap or virtual blob handle
//	b, _ := r.Blob(key)
//
// Sessions can also be built directly over any RowAccessor with NewSession.
//
// # Images
//
// A Reader accepts PE files and bare metadata roots, optionally packed as
// zstd or LZ4 frames. Images are located through a blobstore.BlobStore:
// local files are memory mapped, S3 and MinIO objects are downloaded.
// OpenAll loads many images in parallel under a resource.Controller.
//
// # Errors
//
// Errors from the underlying rows are returned unchanged. Malformed handles
// and virtual handles used without an anchor are programming errors and
// panic with *model.InvariantError.
package asmref
