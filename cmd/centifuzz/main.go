// Command centifuzz runs one shard of the fuzzing loop against a
// single target binary. Flags cover a subset of config.Environment; a
// --config file, when given, is loaded first and each flag given a
// non-zero value overrides it (a zero-valued flag leaves the file's
// value in place).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/moeing-labs/centifuzz/config"
	"github.com/moeing-labs/centifuzz/engine"
	"github.com/moeing-labs/centifuzz/execproto/subprocess"
	"github.com/moeing-labs/centifuzz/storage/localfs"
	"github.com/moeing-labs/centifuzz/telemetry"
)

type options struct {
	Config       string `long:"config" description:"path to a TOML config file overlaying defaults"`
	Binary       string `long:"binary" description:"path to the target binary"`
	Workdir      string `long:"workdir" description:"shard work directory"`
	Seed         uint64 `long:"seed" description:"PRNG seed"`
	TotalShards  int    `long:"total-shards" description:"number of shards"`
	MyShardIndex int    `long:"my-shard-index" description:"this process's shard index"`
	NumRuns      int    `long:"num-runs" description:"total mutants to attempt before stopping"`
	BatchSize    int    `long:"batch-size" description:"mutants executed per batch"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return 1
	}

	env, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	applyOverrides(&env, opts)

	if err := env.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := telemetry.NewLogger(env.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	fb, err := localfs.New(env.Workdir)
	if err != nil {
		logger.Sugar().Fatalf("opening workdir: %v", err)
	}

	l := engine.NewLoop(env, subprocess.Executor{}, fb, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		l.RequestEarlyExit(130)
		cancel()
	}()

	return l.Run(ctx)
}

func applyOverrides(env *config.Environment, opts options) {
	if opts.Binary != "" {
		env.Binary = opts.Binary
	}
	if opts.Workdir != "" {
		env.Workdir = opts.Workdir
	}
	if opts.Seed != 0 {
		env.Seed = opts.Seed
	}
	if opts.TotalShards != 0 {
		env.TotalShards = opts.TotalShards
	}
	if opts.MyShardIndex != 0 {
		env.MyShardIndex = opts.MyShardIndex
	}
	if opts.NumRuns != 0 {
		env.NumRuns = opts.NumRuns
	}
	if opts.BatchSize != 0 {
		env.BatchSize = opts.BatchSize
	}
}
