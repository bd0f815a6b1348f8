package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/asmref"
	"github.com/hupe1980/asmref/blobstore"
	"github.com/hupe1980/asmref/internal/compress"
	"github.com/spf13/cobra"
)

func newPackCmd(a *app) *cobra.Command {
	var codec string
	cmd := &cobra.Command{
		Use:   "pack <in> <out>",
		Short: "Write a compressed copy of an image",
		Long: `Read an image, check that it parses, and write it to <out> as a zstd
or LZ4 frame. Packed images can be read by every other command.

Example:
  asmref pack Windows.winmd s3://sdk-metadata/Windows.winmd.zst
  asmref pack --codec lz4 Windows.winmd Windows.winmd.lz4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compress.ParseCodec(codec)
			if err != nil {
				return err
			}
			return a.runPack(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], c)
		},
	}
	cmd.Flags().StringVar(&codec, "codec", "zstd", "compression codec: zstd, lz4 or none")
	return cmd
}

func (a *app) runPack(ctx context.Context, w io.Writer, in, out string, codec compress.Codec) error {
	src, err := parseLocation(in)
	if err != nil {
		return err
	}
	dst, err := parseLocation(out)
	if err != nil {
		return err
	}

	srcStore, err := a.store(ctx, src)
	if err != nil {
		return err
	}
	blob, err := srcStore.Open(ctx, src.name)
	if err != nil {
		return err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return err
	}
	raw, err := compress.Decompress(data, asmref.DefaultMaxImageSize)
	if err != nil {
		return err
	}

	r, err := asmref.NewReader(raw, asmref.WithLogger(a.logger), asmref.WithoutProjections())
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	fingerprint := r.Fingerprint()
	_ = r.Close()

	packed, err := compress.Compress(raw, codec)
	if err != nil {
		return err
	}

	dstStore, err := a.store(ctx, dst)
	if err != nil {
		return err
	}
	if err := dstStore.Put(ctx, dst.name, packed); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s -> %s  %s  %d -> %d bytes  %s\n", src, dst, codec, len(raw), len(packed), fingerprint)
	return nil
}
