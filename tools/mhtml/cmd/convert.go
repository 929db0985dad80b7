package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	mhtml "github.com/zostay/go-mhtml"
	"github.com/zostay/go-mhtml/internal/config"
	"github.com/zostay/go-mhtml/sniff"
	"github.com/zostay/go-mhtml/transcode"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] FILE...",
	Short: "Convert archives into HTML files",
	Long: `Convert each archive into an HTML file named after it. Referenced parts
are embedded as data: URIs, or with --files written as blob files next to
the output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: RunConvert,
}

func init() {
	convertFlags(convertCmd)
}

func convertFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("files", "f", false, "write referenced parts to blob files instead of data: URIs")
	cmd.Flags().StringP("output", "o", "", "the output file, only when converting a single archive")
	cmd.Flags().String("suffix", mhtml.DefaultSuffix, "the suffix replacing the extension of each archive")
	cmd.Flags().Bool("no-minify", false, "do not minify scripts and stylesheets")
	cmd.Flags().Bool("no-images", false, "do not scale and recompress images")
	cmd.Flags().Bool("no-sniff", false, "do not sniff the type of poorly labeled parts")
	cmd.Flags().Int("max-dimension", transcode.DefaultMaxDimension, "the largest width or height of a recompressed image")
	cmd.Flags().Int("quality", transcode.DefaultQuality, "the JPEG quality of recompressed images")
	cmd.Flags().IntP("jobs", "j", 0, "the number of archives to convert at once, 0 for one per processor")
}

// NewConverter builds a converter from the settings.
func NewConverter(c *config.Config, logger *slog.Logger) (*mhtml.Converter, error) {
	mode, err := mhtml.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	topts := []transcode.Option{transcode.WithLogger(logger)}
	if !c.Minify {
		topts = append(topts, transcode.WithMinifier(nil))
	}
	if c.Images {
		topts = append(topts, transcode.WithImageTranscoder(&transcode.ImageShrinker{
			MaxDimension: c.MaxDimension,
			Quality:      c.Quality,
		}))
	} else {
		topts = append(topts, transcode.WithImageTranscoder(nil))
	}

	opts := []mhtml.Option{
		mhtml.WithMode(mode),
		mhtml.WithSuffix(c.Suffix),
		mhtml.WithCompressor(transcode.New(topts...)),
		mhtml.WithLogger(logger),
	}
	if !c.Sniff {
		opts = append(opts, mhtml.WithSniffer(nil))
	} else {
		opts = append(opts, mhtml.WithSniffer(sniff.Magic{}))
	}

	return mhtml.New(opts...), nil
}

// RunConvert converts the archives named in args.
func RunConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	if cfg.Output != "" && len(args) > 1 {
		return errors.New("--output may only be used with a single archive")
	}

	conv, err := NewConverter(cfg, slog.Default())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		_, err := conv.ConvertFile(args[0], cfg.Output)
		return err
	}

	return conv.ConvertFiles(cmd.Context(), args, cfg.Jobs)
}
