package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestLoad_MissingFileReturnsEmpty(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Empty(t, cfg.Title)
	require.Empty(t, cfg.Path)
	require.Equal(t, DefaultPosition, cfg.PositionOr(DefaultPosition))
	require.Equal(t, "fallback", cfg.TitleOr("fallback"))
}

func TestLoad_RootKeys(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "title: \"Blog\"\nauthor: \"A\"\ntheme: dark\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Blog", cfg.Title)
	require.Equal(t, "A", cfg.Author)
	require.Equal(t, "dark", cfg.ThemeName())
	require.Equal(t, "dark.css", cfg.Stylesheet())
	require.Equal(t, filepath.Join(dir, FileName), cfg.Path)
	require.NoError(t, cfg.RequireSiteKeys())
}

func TestLoad_ThemeDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "title: Blog\nauthor: A\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, DefaultTheme, cfg.ThemeName())
	require.Equal(t, "default.css", cfg.Stylesheet())
}

func TestLoad_SubdirectoryPosition(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "title: Notes\nposition: 5\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Notes", cfg.TitleOr("notes"))
	require.Equal(t, 5, cfg.PositionOr(DefaultPosition))
}

func TestLoad_ExplicitZeroPositionIsKept(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "position: 0\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.PositionOr(DefaultPosition))
}

func TestLoad_MalformedReturnsWarning(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "title: [unterminated\n")

	cfg, err := Load(dir)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMalformed)
	require.True(t, ferrors.HasSeverity(err, ferrors.SeverityWarning))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NotNil(t, cfg)
	require.Empty(t, cfg.Title)
}

func TestLoad_WrongTypeIsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "position: first\n")

	cfg, err := Load(dir)
	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, DefaultPosition, cfg.PositionOr(DefaultPosition))
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PICOPAGE_TEST_AUTHOR", "Ada")
	dir := t.TempDir()
	writeConfig(t, dir, "title: Blog\nauthor: ${PICOPAGE_TEST_AUTHOR}\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Ada", cfg.Author)
}

func TestLoad_KeepsBareDollarText(t *testing.T) {
	t.Setenv("HOME", "/home/ada")
	dir := t.TempDir()
	writeConfig(t, dir, "title: \"Save $5 today\"\nauthor: \"$HOME and $ co\"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Save $5 today", cfg.Title)
	require.Equal(t, "$HOME and $ co", cfg.Author)
}

func TestRequireSiteKeys(t *testing.T) {
	t.Run("missing both", func(t *testing.T) {
		err := (&File{}).RequireSiteKeys()
		require.ErrorIs(t, err, ErrMissingTitle)
		require.ErrorIs(t, err, ErrMissingAuthor)
		require.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))
	})
	t.Run("missing author", func(t *testing.T) {
		err := (&File{Title: "Blog"}).RequireSiteKeys()
		require.ErrorIs(t, err, ErrMissingAuthor)
		require.NotErrorIs(t, err, ErrMissingTitle)
	})
	t.Run("nil file", func(t *testing.T) {
		var f *File
		require.ErrorIs(t, f.RequireSiteKeys(), ErrMissingTitle)
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("PICOPAGE_TEST_FROM_ENV=site\n"), 0o644))
	t.Setenv("PICOPAGE_TEST_FROM_ENV", "")
	require.NoError(t, os.Unsetenv("PICOPAGE_TEST_FROM_ENV"))

	require.NoError(t, LoadEnv(dir))
	require.Equal(t, "site", os.Getenv("PICOPAGE_TEST_FROM_ENV"))
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("PICOPAGE_TEST_KEEP=file\n"), 0o644))
	t.Setenv("PICOPAGE_TEST_KEEP", "process")

	require.NoError(t, LoadEnv(dir))
	require.Equal(t, "process", os.Getenv("PICOPAGE_TEST_KEEP"))
}

func TestLoadEnv_MissingFile(t *testing.T) {
	require.NoError(t, LoadEnv(t.TempDir()))
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mysite")

	require.NoError(t, Init(dir, "", "Ada", "2024-01-01", false))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "mysite", cfg.Title)
	require.Equal(t, "Ada", cfg.Author)
	require.Equal(t, DefaultTheme, cfg.ThemeName())

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	require.Contains(t, string(index), "created: 2024-01-01")

	require.Error(t, Init(dir, "", "Ada", "2024-01-01", false))
	require.NoError(t, Init(dir, "Other", "Ada", "2024-01-01", true))

	cfg, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Other", cfg.Title)
}

func TestInit_RequiresAuthor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mysite")

	require.ErrorIs(t, Init(dir, "", "  ", "2024-01-01", false), ErrMissingAuthor)
	require.NoDirExists(t, dir)
}
