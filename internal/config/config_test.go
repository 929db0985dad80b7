package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mhtml/internal/config"
)

func flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("suffix", ".conv.html", "")
	fs.String("output", "", "")
	fs.Int("quality", 30, "")
	fs.Int("max-dimension", 1024, "")
	fs.Int("jobs", 0, "")
	fs.String("log-level", "info", "")
	fs.Bool("no-color", false, "")
	fs.Bool("no-minify", false, "")
	fs.Bool("no-images", false, "")
	fs.Bool("no-sniff", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	v := config.New()
	v.AddConfigPath(t.TempDir())

	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, &config.Config{
		Mode:         "inline",
		Suffix:       ".conv.html",
		Sniff:        true,
		Minify:       true,
		Images:       true,
		MaxDimension: 1024,
		Quality:      30,
		LogLevel:     "info",
	}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mhtml.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: directory
quality: 50
max_dimension: 800
minify: false
log_level: debug
`), 0o644))

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "directory", cfg.Mode)
	assert.Equal(t, 50, cfg.Quality)
	assert.Equal(t, 800, cfg.MaxDimension)
	assert.False(t, cfg.Minify)
	assert.True(t, cfg.Images)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"quality: 0\n", "mode: zip\n", "log_level: loud\n", "max_dimension: -1\n"} {
		path := filepath.Join(t.TempDir(), "mhtml.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		_, err := config.Load(config.New(), path)
		assert.Error(t, err, body)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MHTML_QUALITY", "75")
	t.Setenv("MHTML_MODE", "directory")

	v := config.New()
	v.AddConfigPath(t.TempDir())

	cfg, err := config.Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Quality)
	assert.Equal(t, "directory", cfg.Mode)
}

func TestBind(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mhtml.toml")
	require.NoError(t, os.WriteFile(path, []byte("quality = 40\njobs = 3\n"), 0o644))

	fs := flags()
	require.NoError(t, fs.Parse([]string{"--quality", "90", "--no-images", "--suffix", ".html"}))

	v := config.New()
	require.NoError(t, config.Bind(v, fs))

	cfg, err := config.Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Quality)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, 1024, cfg.MaxDimension)
	assert.Equal(t, ".html", cfg.Suffix)
	assert.False(t, cfg.Images)
	assert.True(t, cfg.Minify)
	assert.True(t, cfg.Sniff)
}
