package main

import (
	"github.com/hupe1980/asmref"
	"github.com/hupe1980/asmref/cache"
	"github.com/hupe1980/asmref/resource"
	"github.com/spf13/cobra"
)

// app carries state shared by all commands, set up before any runs.
type app struct {
	cfg    config
	logger *asmref.Logger
	rc     *resource.Controller
	lru    *cache.LRU
}

func (a *app) init() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := cfg.logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.rc = resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.MemoryBytes,
		MaxConcurrentOpens: int64(cfg.MaxParallel),
		IOLimitBytesPerSec: cfg.IOLimitBytes,
	})
	return nil
}

func (a *app) readerOptions(extra ...asmref.Option) []asmref.Option {
	return append([]asmref.Option{
		asmref.WithLogger(a.logger),
		asmref.WithResourceController(a.rc),
	}, extra...)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "asmref",
		Short:        "Inspect assembly references in .NET and Windows Runtime metadata",
		SilenceUsage: true, // don't print usage on operational errors
		Long: `asmref lists the assembly references of PE files and .winmd metadata,
including the contract assemblies that the Windows Runtime projection adds.

Images are read from local paths, s3://bucket/key or minio://bucket/key and
may be zstd or LZ4 compressed. Settings come from ASMREF_* environment
variables.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	root.AddCommand(newDumpCmd(a), newProjectionsCmd(a), newPackCmd(a))
	return root
}
