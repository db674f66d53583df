package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/views"
)

func newBuildCmd(c *cli) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the static site into the output directory",
		Long: `The build command imports the content directory and renders the home page,
every post, the 404 page, the RSS feed and the sitemap into the configured
output directory (default './public/'). The output directory is cleared first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir != "" {
				c.cfg.OutputDir = outDir
			}
			return c.runBuild(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides outputDir)")
	return cmd
}

func (c *cli) runBuild(ctx context.Context) error {
	store, err := pubsite.NewStore(c.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := content.Import(ctx, c.cfg.ContentDir, store, c.logger); err != nil {
		return err
	}

	app := pubsite.New(c.cfg, views.Funcs(),
		pubsite.WithLogger(c.logger),
		pubsite.WithStore(store),
	)
	defer app.Close()

	res, err := app.Export(ctx, app.Config.OutputDir)
	if err != nil {
		return err
	}
	c.logger.Info("build complete", zap.Int("files", len(res.Pages)))
	return nil
}
