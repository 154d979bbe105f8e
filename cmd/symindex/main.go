// Command symindex indexes a workspace's declarations and either
// answers one-shot fuzzy-search/resolve queries or serves the same
// facade to an editor/agent over the Model Context Protocol.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/fast-ide/symindex/internal/config"
	"github.com/fast-ide/symindex/internal/langs/godef"
	"github.com/fast-ide/symindex/internal/mcpserver"
	"github.com/fast-ide/symindex/internal/query"
	"github.com/fast-ide/symindex/internal/types"
	"github.com/fast-ide/symindex/internal/workspace"
)

func main() {
	app := &cli.App{
		Name:                   "symindex",
		Usage:                  "fuzzy-searchable workspace symbol index",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root directory to index",
				Value:   ".",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			resolveCommand(),
			mcpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "symindex:", err)
		os.Exit(1)
	}
}

// openHost loads the project's configuration, opens its local root as
// crate 1 via the Go semantic frontend, and returns a Host plus the
// library-root directory map every command needs.
func openHost(root string) (*workspace.Host, map[types.SourceRootID]string, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	frontend, err := godef.Open(cfg.Project.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", cfg.Project.Root, err)
	}

	host, err := workspace.NewHost(frontend)
	if err != nil {
		return nil, nil, fmt.Errorf("starting host: %w", err)
	}

	libraries := make(map[types.SourceRootID]string, len(cfg.Libraries))
	for i, lib := range cfg.Libraries {
		libraries[types.SourceRootID(1000+i)] = lib.Dir
	}
	return host, libraries, nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "fuzzy subsequence search across the workspace",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "exact"},
			&cli.BoolFlag{Name: "only-types"},
			&cli.BoolFlag{Name: "libs", Usage: "also search library roots"},
			&cli.IntFlag{Name: "limit"},
		},
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("search requires exactly one query argument", 1)
			}

			host, libraries, err := openHost(c.String("root"))
			if err != nil {
				return err
			}
			defer host.Close()

			q := query.New(c.Args().First())
			if c.Bool("exact") {
				q = q.Exact()
			}
			if c.Bool("only-types") {
				q = q.OnlyTypes()
			}
			if c.Bool("libs") {
				q = q.Libs()
			}
			if limit := c.Int("limit"); limit > 0 {
				q = q.Limit(limit)
			}

			results, err := host.WorldSymbols(context.Background(), []types.CrateID{1}, libraries, q)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve a declaration name to exactly one crate-local declaration",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("resolve requires exactly one name argument", 1)
			}

			host, _, err := openHost(c.String("root"))
			if err != nil {
				return err
			}
			defer host.Close()

			result, err := host.ResolveInCrate(context.Background(), 1, c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the workspace_symbol/crate_symbol/index_resolve tools over stdio MCP",
		Action: func(c *cli.Context) error {
			host, libraries, err := openHost(c.String("root"))
			if err != nil {
				return err
			}
			defer host.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcpserver.New(host, []types.CrateID{1}, libraries)
			return srv.Start(ctx)
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
