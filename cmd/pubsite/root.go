package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/pubsite"
)

// cli holds state shared by all subcommands once the root's pre-run has
// loaded configuration.
type cli struct {
	cfgFile string
	verbose bool

	cfg    pubsite.SiteConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "pubsite",
		Short: "pubsite - a personal blog built from Markdown posts",
		Long: `pubsite reads Markdown posts with front matter, orders them by their
"order" field, and serves or exports them as a blog with previous/next
navigation between posts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "new" || cmd.Name() == "version" {
				return nil
			}
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "human-readable debug logging")

	root.AddCommand(
		newServeCmd(c),
		newBuildCmd(c),
		newImportCmd(c),
		newNewCmd(),
		newVersionCmd(),
	)
	return root
}

func (c *cli) init() error {
	logger, err := newLogger(c.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.logger = logger

	cfg, used, err := loadConfig(c.cfgFile)
	if err != nil {
		return err
	}
	if used != "" {
		logger.Info("using config file", zap.String("path", used))
	} else {
		logger.Info("no config file found, using defaults and environment")
	}
	c.cfg = cfg
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig reads config.yaml (or cfgFile) and PUBSITE_* environment
// variables into a SiteConfig. It returns the config file used, if any.
func loadConfig(cfgFile string) (pubsite.SiteConfig, string, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can override it during Unmarshal.
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("pathPrefix", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("databasePath", "data/blog.db")
	v.SetDefault("contentDir", "content/blog")
	v.SetDefault("outputDir", "public")
	v.SetDefault("sessionSecret", "")
	v.SetDefault("cookieSecure", false)
	v.SetDefault("postCacheTTL", "5m")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PUBSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	used := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return pubsite.SiteConfig{}, "", fmt.Errorf("read config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg pubsite.SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return pubsite.SiteConfig{}, "", fmt.Errorf("decode config: %w", err)
	}
	return cfg, used, nil
}
