package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubsite/scaffold"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <dir>",
		Short: "Creates a new pubsite project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			name := filepath.Base(filepath.Clean(dir))
			fmt.Printf("Creating new pubsite project: %s\n\n", dir)
			data := scaffold.Data{
				SiteName: scaffold.ToTitle(name),
				Date:     time.Now().Format("2006-01-02"),
			}
			if err := scaffold.Generate(dir, data, os.Stdout); err != nil {
				return err
			}
			fmt.Println()
			fmt.Println("Done! Next steps:")
			fmt.Println()
			fmt.Printf("  cd %s\n", dir)
			fmt.Println("  PUBSITE_SESSIONSECRET=change-me pubsite serve --watch")
			fmt.Println()
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the pubsite version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pubsite %s\n", version)
		},
	}
}
