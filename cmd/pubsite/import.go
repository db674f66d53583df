package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
)

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Loads the content directory into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := pubsite.NewStore(c.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()
			posts, err := content.Import(cmd.Context(), c.cfg.ContentDir, store, c.logger)
			if err != nil {
				return err
			}
			cmd.Printf("imported %d posts from %s\n", len(posts), c.cfg.ContentDir)
			return nil
		},
	}
}
