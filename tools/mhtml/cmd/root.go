package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mhtml/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "mhtml [flags] FILE...",
		Short: "Unpack MHTML web archives into plain HTML",
		Long: `Unpack MHTML web archives (.mht, .mhtml) into HTML most browsers can
display. Without a subcommand, the archives named are converted.`,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: setup,
		RunE:              RunConvert,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	configFile string

	v   = config.New()
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "the configuration file to read")
	rootCmd.PersistentFlags().String("log-level", "info", "the log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().Bool("no-color", false, "turn off colored logging")

	convertFlags(rootCmd)

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// FilesMode reports whether the program was invoked under a name asking for
// directory mode by default, e.g., mhtml-files.
func FilesMode(program string) bool {
	return strings.Contains(filepath.Base(program), "file")
}

// setup loads the configuration and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if FilesMode(os.Args[0]) {
		v.SetDefault("mode", "directory")
	}

	if err := config.Bind(v, cmd.Flags()); err != nil {
		return err
	}

	if files, err := cmd.Flags().GetBool("files"); err == nil && files {
		v.Set("mode", "directory")
	}

	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}

	slog.SetDefault(NewLogger(cfg))

	return nil
}

// NewLogger returns a logger writing to stderr at the configured level.
func NewLogger(c *config.Config) *slog.Logger {
	return slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      c.Level(),
			NoColor:    c.NoColor,
			TimeFormat: time.Kitchen,
		}),
	)
}

// Execute runs the command named on the command line.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
