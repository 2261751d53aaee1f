package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/electrovir/itunes-library-migration-assistant/internal"
	"github.com/electrovir/itunes-library-migration-assistant/internal/api"
	"github.com/electrovir/itunes-library-migration-assistant/internal/library"
	"github.com/electrovir/itunes-library-migration-assistant/internal/location"
	pkgconfig "github.com/electrovir/itunes-library-migration-assistant/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

// loadConfig reads the config file when one exists. An explicitly requested
// file must exist.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cli.Command, cfg *internal.Config) error {
	m := &cfg.Migration
	if cmd.IsSet("library") {
		m.Library = cmd.String("library")
	}
	if cmd.IsSet("rules") {
		rules, err := internal.LoadRules(cmd.String("rules"))
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
		cfg.Rules = rules
	}
	if cmd.IsSet("output") {
		kind, err := library.ParseOutputKind(cmd.String("output"))
		if err != nil {
			return err
		}
		m.Output = kind
	}
	if cmd.Bool("no-validate") {
		m.Validate = false
	}
	if cmd.Bool("quiet") {
		m.Quiet = true
	}
	if cmd.Bool("no-check-paths") {
		m.CheckReplacementPaths = false
	}
	if cmd.Bool("check-files") {
		m.CheckFiles = true
	}
	if cmd.Bool("watch") {
		m.Watch = true
	}
	return cfg.Validate()
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("library path is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc := api.NewService(internal.NewLogger(cfg.Log, os.Stderr))
	lib, err := svc.Validate(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("valid: %d tracks, %d playlists\n", len(lib.Tracks), len(lib.Playlists))
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Run(ctx, internal.WithConfig(cfg), internal.WithMCP())
}

func locationAction(convert func(string) string) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() == 0 {
			return fmt.Errorf("at least one argument is required")
		}
		for _, arg := range cmd.Args().Slice() {
			fmt.Println(convert(arg))
		}
		return nil
	}
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file (YAML, TOML or JSON)",
		DefaultText: defaultConfigPath,
		Value:       defaultConfigPath,
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "itlma",
		Usage: "Migrate the file locations of an iTunes library XML file",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Rewrite track locations and emit the migrated library",
				Action: runMigrate,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Usage: "Library XML file to migrate"},
					&cli.StringFlag{Name: "rules", Aliases: []string{"r"}, Usage: "Rules file (YAML, TOML or JSON)"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write-to-file, plist-string or json-object"},
					&cli.BoolFlag{Name: "no-validate", Usage: "Skip library validation"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Disable pipeline logging"},
					&cli.BoolFlag{Name: "no-check-paths", Usage: "Allow unmatched locations and unused rules"},
					&cli.BoolFlag{Name: "check-files", Usage: "Fail when a rewritten location does not exist"},
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Migrate again whenever the library changes"},
				},
			},
			{
				Name:      "validate",
				Usage:     "Report every schema violation in a library file",
				ArgsUsage: "<library.xml>",
				Action:    runValidate,
			},
			{
				Name:  "location",
				Usage: "Convert between stored locations and plain paths",
				Commands: []*cli.Command{
					{
						Name:      "decode",
						Usage:     "Stored location to plain path",
						ArgsUsage: "<location>...",
						Action:    locationAction(location.Decode),
					},
					{
						Name:      "encode",
						Usage:     "Plain path to stored location",
						ArgsUsage: "<path>...",
						Action:    locationAction(location.Encode),
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the migration tools over MCP on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
