package asmref_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/asmref"
	"github.com/hupe1980/asmref/blobstore"
	"github.com/hupe1980/asmref/testutil"
)

func Example() {
	r, err := asmref.NewReader(testutil.WinMD().PE())
	if err != nil {
		panic(err)
	}
	defer r.Close()

	for _, h := range r.AssemblyReferences() {
		ref, err := r.AssemblyReference(h)
		if err != nil {
			panic(err)
		}
		fmt.Println(ref.Name, ref.Version)
	}

	// Output:
	// Windows 255.255.255.255
	// mscorlib 4.0.0.0
	// Windows.Foundation 255.255.255.255
	// System.Runtime 4.0.0.0
	// System.Runtime.InteropServices.WindowsRuntime 4.0.0.0
	// System.ObjectModel 4.0.0.0
	// System.Runtime.WindowsRuntime 4.0.0.0
	// System.Runtime.WindowsRuntime.UI.Xaml 4.0.0.0
	// System.Numerics.Vectors 1.1.0.0
}

func ExampleSession() {
	r, _ := asmref.NewReader(testutil.WinMD().Metadata)
	defer r.Close()

	s := r.Session()
	for _, h := range r.AssemblyReferences() {
		if !h.IsVirtual() {
			continue
		}
		key, _ := s.PublicKeyOrToken(h)
		blob, _ := r.Blob(key)
		name, _ := s.Name(h)
		str, _ := r.String(name)
		fmt.Printf("%s %x\n", str, blob)
	}

	// Output:
	// System.Runtime b03f5f7f11d50a3a
	// System.Runtime.InteropServices.WindowsRuntime b03f5f7f11d50a3a
	// System.ObjectModel b03f5f7f11d50a3a
	// System.Runtime.WindowsRuntime b77a5c561934e089
	// System.Runtime.WindowsRuntime.UI.Xaml b77a5c561934e089
	// System.Numerics.Vectors b03f5f7f11d50a3a
}

func ExampleOpen() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	_ = store.Put(ctx, "Contoso.winmd", testutil.Ecma().PE())

	r, err := asmref.Open(ctx, store, "Contoso.winmd", asmref.WithoutProjections())
	if err != nil {
		panic(err)
	}
	defer r.Close()

	fmt.Println(r.Kind(), len(r.AssemblyReferences()))

	// Output:
	// Ecma335 2
}
