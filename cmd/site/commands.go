package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"github.com/user/icebreaker-videos/internal/loadmore"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/sitemap"
	"github.com/user/icebreaker-videos/internal/tags"
	"github.com/user/icebreaker-videos/internal/web"
)

// newMigrateCommand applies pending schema migrations and exits
func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := db.Migrate()
			if err != nil {
				return err
			}
			fmt.Printf("Schema at version %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}
}

// newSitemapCommand writes the sitemap XML generated from the database
func newSitemapCommand() *cli.Command {
	return &cli.Command{
		Name:  "sitemap",
		Usage: "Generate sitemap.xml from the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File to write; standard output when empty",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			gen := sitemap.NewGenerator(db, tags.NewDirectory(db), cfg.Site.BaseURL)
			entries, err := gen.Entries(c.Context)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if path := c.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}
			if err := sitemap.WriteXML(w, entries); err != nil {
				return err
			}
			log.Info().Int("urls", len(entries)).Msg("Sitemap generated")
			return nil
		},
	}
}

// newVideosCommand lists videos from a running site through the load-more API
func newVideosCommand() *cli.Command {
	return &cli.Command{
		Name:  "videos",
		Usage: "List videos from a running site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Site to query",
				Value:   loadmore.DefaultFetcherConfig().BaseURL,
				EnvVars: []string{"SITE_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Search title and description",
			},
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Tag slug to filter by; repeat for any of several tags",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "short or long",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Stop after this many videos; 0 loads everything",
				Value: 100,
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "Maximum API requests per second",
				Value: loadmore.DefaultFetcherConfig().RateLimit,
			},
		},
		Action: func(c *cli.Context) error {
			setLogLevel(os.Getenv("LOG_LEVEL"))

			category := c.String("category")
			if category != "" {
				if _, ok := model.ParseCategory(category); !ok {
					return fmt.Errorf("unknown category %q", category)
				}
			}

			fetcher, err := loadmore.NewHTTPFetcher(&loadmore.FetcherConfig{
				BaseURL:   c.String("base-url"),
				RateLimit: c.Float64("rate"),
				Timeout:   10 * time.Second,
			})
			if err != nil {
				return err
			}

			req := loadmore.Request{
				Search:   c.String("search"),
				Tags:     tags.NormalizeSlugs(c.StringSlice("tag")),
				Category: model.Category(category),
			}
			return listVideos(c.Context, os.Stdout, fetcher, req, c.Int("limit"))
		},
	}
}

func listVideos(ctx context.Context, out io.Writer, fetcher loadmore.Fetcher, req loadmore.Request, limit int) error {
	first, err := fetcher.Fetch(ctx, req, 1)
	if err != nil {
		return fmt.Errorf("failed to load first page: %w", err)
	}

	ctrl := loadmore.NewController(fetcher, req, first)
	loadErr := ctrl.LoadAll(ctx, limit)

	videos := ctrl.Videos()
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	if len(videos) == 0 {
		fmt.Fprintln(out, "No videos found.")
		return loadErr
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tCATEGORY\tDURATION\tTITLE")
	fmt.Fprintln(w, "----\t--------\t--------\t-----")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			v.Slug,
			web.CategoryLabel(v),
			orDash(web.FormatDuration(v.Duration())),
			truncate(v.Title, 60))
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d of %d videos shown\n", len(videos), ctrl.Total())
	return loadErr
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
