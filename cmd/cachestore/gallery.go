package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/cachestore/internal/config"
	"github.com/vango-dev/cachestore/internal/gallery"
	"github.com/vango-dev/cachestore/pkg/cachestore"
	"github.com/vango-dev/cachestore/pkg/instrument"
)

type galleryFlags struct {
	list      bool
	postsURL  string
	imagesURL string
	timeout   string
	logLevel  string
}

func galleryCmd() *cobra.Command {
	var flags galleryFlags

	cmd := &cobra.Command{
		Use:   "gallery [experiment...]",
		Short: "Run example experiments",
		Long: `Run scripted sessions of the example screens and print the
state of their store after every interaction.

With no arguments every experiment runs in menu order.

Examples:
  cachestore gallery --list
  cachestore gallery counter sharedState
  cachestore gallery favoritePosts --posts-url=http://localhost:3000/posts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGallery(cmd.Context(), cmd.OutOrStdout(), flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "List experiments and exit")
	cmd.Flags().StringVar(&flags.postsURL, "posts-url", "", "Posts endpoint (default from cachestore.json)")
	cmd.Flags().StringVar(&flags.imagesURL, "images-url", "", "Image API base URL (default from cachestore.json)")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "", "Fetch timeout (default from cachestore.json)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

func runGallery(ctx context.Context, w io.Writer, flags galleryFlags, ids []string) error {
	if flags.list {
		listExperiments(w)
		return nil
	}

	cfg, err := loadConfig(func(cfg *config.Config) {
		if flags.logLevel != "" {
			cfg.Log.Level = flags.logLevel
		}
		if flags.postsURL != "" {
			cfg.Gallery.PostsURL = flags.postsURL
		}
		if flags.imagesURL != "" {
			cfg.Gallery.ImagesURL = flags.imagesURL
		}
		if flags.timeout != "" {
			cfg.Gallery.Timeout = flags.timeout
		}
	})
	if err != nil {
		return err
	}

	experiments, err := selectExperiments(ids)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stderr)
	env := newEnv(cfg, logger)
	env.Options = append(env.Options, cachestore.WithMiddleware(instrument.Logging(logger)))
	defer env.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	for _, e := range experiments {
		report, err := e.Run(ctx, env)
		if err != nil {
			errorMsg("%s: %v", e.ID(), err)
			return err
		}
		report.Write(w)
		fmt.Fprintln(w)
	}
	return nil
}

func listExperiments(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range gallery.All() {
		fmt.Fprintf(tw, "  %s\t%s\n", e.ID(), e.Title())
	}
	tw.Flush()
}

func selectExperiments(ids []string) ([]gallery.Experiment, error) {
	if len(ids) == 0 {
		return gallery.All(), nil
	}
	out := make([]gallery.Experiment, 0, len(ids))
	for _, id := range ids {
		e, err := gallery.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// newEnv builds the gallery environment from cfg.
func newEnv(cfg *config.Config, logger *slog.Logger) *gallery.Env {
	return &gallery.Env{
		Logger:    logger,
		Client:    &http.Client{Timeout: cfg.GalleryTimeout()},
		PostsURL:  cfg.Gallery.PostsURL,
		ImagesURL: cfg.Gallery.ImagesURL,
	}
}
