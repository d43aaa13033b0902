package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/elyx-journey/backend/internal/config"
	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/generator"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/script"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

type options struct {
	profilePath string
	outPath     string
	exportDir   string
	seed        string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.profilePath, "config", cfg.Paths.ProfilePath, "member profile (.yaml, .toml or .json)")
	flag.StringVar(&opts.outPath, "out", cfg.Paths.DataPath, "intermediate journey file to write")
	flag.StringVar(&opts.exportDir, "export", cfg.Paths.ExportDir, "optional directory for JSONL exports")
	flag.StringVar(&opts.seed, "seed", "", "seed override (defaults to JOURNEY_SEED, then the profile seed)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	override := cfg.Seed
	if opts.seed != "" {
		seed, err := strconv.ParseUint(opts.seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -seed %q: %w", opts.seed, err)
		}
		override = &seed
	}

	p, err := profile.Load(opts.profilePath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	seed := generator.SeedFor(p, override)
	gen := generator.New(generator.Config{Seed: seed}, script.NewLibrary(), persona.NewMemoryStore(persona.Seed()))

	j, err := gen.Generate(ctx, p)
	if err != nil {
		return fmt.Errorf("generate journey: %w", err)
	}

	if err := store.NewFileStore(opts.outPath).Write(ctx, j); err != nil {
		return err
	}
	if opts.exportDir != "" {
		if err := store.ExportJSONL(ctx, opts.exportDir, j); err != nil {
			return err
		}
	}

	fmt.Printf("Generated %d messages, %d decisions and %d lab panels for %s (seed %d)\n",
		len(j.Messages), len(j.Decisions), len(j.Tests), j.MemberName, seed)
	fmt.Printf("Wrote %s\n", opts.outPath)
	if opts.exportDir != "" {
		fmt.Printf("Exported JSONL to %s\n", opts.exportDir)
	}
	return nil
}
