// Package main 提供目录数据库的迁移与样例数据导入工具
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/database"
	"github.com/MorseWayne/gift_market/internal/logger"
	"github.com/MorseWayne/gift_market/internal/repo"
	"github.com/MorseWayne/gift_market/internal/service"
)

const seedTimeout = 30 * time.Second

var errUnknownAction = errors.New("unknown action")

type options struct {
	action string
	steps  int
	target uint
}

// action 在已连接的数据库上执行一种操作
type action struct {
	help string
	run  func(db *database.DB, cfg *config.Config, opts options, lg *zap.Logger) error
}

var actions = map[string]action{
	"up": {
		help: "apply all pending migrations",
		run: func(db *database.DB, cfg *config.Config, _ options, _ *zap.Logger) error {
			return db.RunMigrations(cfg.Migrations.Dir)
		},
	},
	"down": {
		help: "roll back -steps migrations",
		run: func(db *database.DB, cfg *config.Config, opts options, _ *zap.Logger) error {
			return db.MigrateDown(cfg.Migrations.Dir, opts.steps)
		},
	},
	"version": {
		help: "migrate up or down to -target",
		run: func(db *database.DB, cfg *config.Config, opts options, _ *zap.Logger) error {
			return db.MigrateToVersion(cfg.Migrations.Dir, opts.target)
		},
	},
	"force": {
		help: "set version to -target and clear the dirty flag (0 resets)",
		run: func(db *database.DB, cfg *config.Config, opts options, lg *zap.Logger) error {
			lg.Warn("forcing migration version", zap.Uint("target", opts.target))
			return db.ForceMigrationVersion(cfg.Migrations.Dir, opts.target)
		},
	},
	"seed": {
		help: "apply migrations, then replace both screens with the built-in sample data",
		run:  seed,
	},
}

func seed(db *database.DB, cfg *config.Config, _ options, lg *zap.Logger) error {
	if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
		return err
	}
	catalogService, err := service.NewCatalogService(config.CatalogSourceMySQL, repo.NewCatalogRepository(db.DB), lg)
	if err != nil {
		return fmt.Errorf("create catalog service: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()
	return catalogService.Seed(ctx)
}

// parseOptions 解析并校验参数，不接触数据库
func parseOptions(args []string, out io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.action, "action", "up", "one of: "+strings.Join(actionNames(), ", "))
	fs.IntVar(&opts.steps, "steps", 1, "number of migrations to roll back with -action=down")
	fs.UintVar(&opts.target, "target", 0, "target version for -action=version or -action=force")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: migrate -action=<action> [options]\n\nActions:\n")
		for _, name := range actionNames() {
			fmt.Fprintf(out, "  %-8s %s\n", name, actions[name].help)
		}
		fmt.Fprintln(out, "\nOptions:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if _, ok := actions[opts.action]; !ok {
		fs.Usage()
		return opts, fmt.Errorf("%w %q", errUnknownAction, opts.action)
	}
	if opts.action == "down" && opts.steps <= 0 {
		return opts, errors.New("-steps must be positive")
	}
	if opts.action == "version" && opts.target == 0 {
		return opts, errors.New("-target must be specified for -action=version")
	}
	return opts, nil
}

func actionNames() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "migrate", cfg.App.Version)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	db, err := database.New(cfg, lg)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Error("failed to close database", zap.Error(err))
		}
	}()

	lg.Info("migrate action started", zap.String("action", opts.action), zap.String("dir", cfg.Migrations.Dir))
	if err := actions[opts.action].run(db, cfg, opts, lg); err != nil {
		lg.Error("migrate action failed", zap.String("action", opts.action), zap.Error(err))
		db.Close()
		os.Exit(1)
	}
	lg.Info("migrate action completed", zap.String("action", opts.action))
}
