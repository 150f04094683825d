package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"wikicat/internal/build"
)

func main() {
	app := &cli.App{
		Name:  "wikicat",
		Usage: "build a browsable, sharded binary dataset from a Wikipedia category-link dump",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "download the dump assets and build the category dataset",
				Action: build.BuildAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "YAML config file"},
					&cli.StringFlag{Name: "language", Usage: "wiki language code (e.g. en, de)"},
					&cli.StringFlag{Name: "dest", Usage: "output directory for the dataset"},
					&cli.StringFlag{Name: "index-root-path", Usage: "URL root for generated HTML indices"},
					&cli.StringFlag{Name: "excluded-parents", Usage: "comma-separated category ids excluded with their direct subcategories"},
					&cli.StringFlag{Name: "excluded-grandparents", Usage: "comma-separated category ids excluded with two levels of subcategories"},
					&cli.StringFlag{Name: "excluded-article-categories", Usage: "comma-separated category ids whose articles are stripped"},
					&cli.IntFlag{Name: "max-articles", Usage: "max articles per category, -1 for unlimited"},
					&cli.UintFlag{Name: "operand", Usage: "modulus for balancing categories into shard directories"},
					&cli.IntFlag{Name: "percentile", Usage: "article-count percentile below which categories are pruned"},
					&cli.Int64Flag{Name: "seed", Usage: "seed for article sampling; 0 means non-deterministic"},
					&cli.IntFlag{Name: "workers", Usage: "export write workers; 0 means number of CPUs"},
					&cli.BoolFlag{Name: "dev", Usage: "enable debug logging"},
					&cli.BoolFlag{Name: "clean", Usage: "clean the destination directory before building"},
					&cli.BoolFlag{Name: "use-cache", Usage: "use local dump files and tree snapshots when available"},
					&cli.BoolFlag{Name: "no-indices", Usage: "skip HTML index generation"},
				},
			},
			{
				Name:      "index",
				Usage:     "regenerate the HTML directory indices for an existing dataset",
				ArgsUsage: "<dataset-path>",
				Action:    build.IndexAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "root-path", Usage: "URL root for generated HTML indices"},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recorded dataset builds",
				Action: build.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum number of runs to show"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
