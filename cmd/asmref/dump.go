package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/asmref"
	"github.com/hupe1980/asmref/blobstore"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type dumpFlags struct {
	format        string
	noProjections bool
	attributes    bool
	list          bool
}

func newDumpCmd(a *app) *cobra.Command {
	var f dumpFlags
	cmd := &cobra.Command{
		Use:   "dump <image>...",
		Short: "List the assembly references of one or more images",
		Long: `List every assembly reference of an image: the AssemblyRef rows
followed, for Windows Runtime metadata, by the projected contract assemblies.

With --list each argument is a prefix and all images below it are dumped.

Example:
  asmref dump Windows.Foundation.winmd
  asmref dump --format json s3://sdk-metadata/10.0.22621/Windows.winmd
  asmref dump --list minio://sdk-metadata/10.0.22621/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}
			return a.runDump(cmd.Context(), cmd.OutOrStdout(), args, f)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&f.noProjections, "no-projections", false, "read Windows Runtime metadata without projection")
	cmd.Flags().BoolVar(&f.attributes, "attributes", false, "include custom attributes")
	cmd.Flags().BoolVar(&f.list, "list", false, "treat arguments as prefixes and dump every image below them")
	return cmd
}

type dumpImage struct {
	Name            string          `json:"name" yaml:"name"`
	Kind            string          `json:"kind" yaml:"kind"`
	MetadataVersion string          `json:"metadataVersion" yaml:"metadataVersion"`
	Fingerprint     string          `json:"fingerprint" yaml:"fingerprint"`
	Assembly        string          `json:"assembly,omitempty" yaml:"assembly,omitempty"`
	References      []dumpReference `json:"references" yaml:"references"`
}

type dumpReference struct {
	Handle           string          `json:"handle" yaml:"handle"`
	Virtual          bool            `json:"virtual" yaml:"virtual"`
	Name             string          `json:"name" yaml:"name"`
	Version          string          `json:"version" yaml:"version"`
	Culture          string          `json:"culture,omitempty" yaml:"culture,omitempty"`
	Flags            string          `json:"flags" yaml:"flags"`
	PublicKeyOrToken string          `json:"publicKeyOrToken,omitempty" yaml:"publicKeyOrToken,omitempty"`
	HashValue        string          `json:"hashValue,omitempty" yaml:"hashValue,omitempty"`
	FullName         string          `json:"fullName" yaml:"fullName"`
	Attributes       []dumpAttribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type dumpAttribute struct {
	Row   uint32 `json:"row" yaml:"row"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (a *app) runDump(ctx context.Context, w io.Writer, args []string, f dumpFlags) error {
	var extra []asmref.Option
	if f.noProjections {
		extra = append(extra, asmref.WithoutProjections())
	}

	var images []dumpImage
	for _, arg := range args {
		loc, err := parseLocation(arg)
		if err != nil {
			return err
		}
		store, err := a.store(ctx, loc)
		if err != nil {
			return err
		}

		names := []string{loc.name}
		if f.list {
			prefix := loc.name
			if loc.scheme == "file" {
				// A local prefix names a directory.
				store, prefix = blobstore.NewLocalStore(arg), ""
			}
			if names, err = store.List(ctx, prefix); err != nil {
				return err
			}
		}

		batch, err := a.dumpAll(ctx, store, names, f.attributes, extra)
		if err != nil {
			return err
		}
		images = append(images, batch...)
	}

	if f.format != formatText {
		return writeStructured(w, f.format, images)
	}
	return writeDumpText(w, images)
}

// dumpAll describes names in parallel. Each image is closed as soon as it
// is described, so a memory budget only has to hold the images in flight.
func (a *app) dumpAll(ctx context.Context, store blobstore.BlobStore, names []string, withAttributes bool, extra []asmref.Option) ([]dumpImage, error) {
	opts := a.readerOptions(extra...)
	images := make([]dumpImage, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxParallel)
	for i, name := range names {
		g.Go(func() error {
			r, err := asmref.Open(gctx, store, name, opts...)
			if err != nil {
				return err
			}
			img, err := describe(r, withAttributes)
			_ = r.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func describe(r *asmref.Reader, withAttributes bool) (dumpImage, error) {
	img := dumpImage{
		Name:            r.Name(),
		Kind:            r.Kind().String(),
		MetadataVersion: r.MetadataVersion(),
		Fingerprint:     r.Fingerprint(),
	}
	if def, ok, err := r.Assembly(); err != nil {
		return dumpImage{}, err
	} else if ok {
		img.Assembly = fmt.Sprintf("%s, Version=%s", def.Name, def.Version)
	}

	for _, h := range r.AssemblyReferences() {
		ref, err := r.AssemblyReference(h)
		if err != nil {
			return dumpImage{}, err
		}
		d := dumpReference{
			Handle:           h.String(),
			Virtual:          ref.Virtual(),
			Name:             ref.Name,
			Version:          ref.Version.String(),
			Culture:          ref.Culture,
			Flags:            ref.Flags.String(),
			PublicKeyOrToken: hex.EncodeToString(ref.PublicKeyOrToken),
			HashValue:        hex.EncodeToString(ref.HashValue),
			FullName:         ref.FullName(),
		}
		if withAttributes {
			for row := range ref.CustomAttributes.Rows() {
				ca, err := r.CustomAttribute(row)
				if err != nil {
					return dumpImage{}, err
				}
				d.Attributes = append(d.Attributes, dumpAttribute{
					Row:   row,
					Type:  ca.TypeName(),
					Value: hex.EncodeToString(ca.Value),
				})
			}
		}
		img.References = append(img.References, d)
	}
	return img, nil
}

func writeDumpText(w io.Writer, images []dumpImage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, img := range images {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", img.Name, img.Kind, img.MetadataVersion, img.Fingerprint)
		if img.Assembly != "" {
			fmt.Fprintf(tw, "  assembly\t%s\n", img.Assembly)
		}
		for _, ref := range img.References {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", ref.Handle, ref.FullName, ref.Flags)
			for _, ca := range ref.Attributes {
				fmt.Fprintf(tw, "  \t[%d] %s\t%s\n", ca.Row, ca.Type, strings.ToUpper(ca.Value))
			}
		}
	}
	return tw.Flush()
}
