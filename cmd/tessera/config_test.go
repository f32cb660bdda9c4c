package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/engine/enginetest"
	"github.com/gardar/tessera/pkg/tessera"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "eng", cfg.Languages)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, float64(tessera.DefaultDPI), cfg.DPI)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeFile(t, "tessera.yaml", `
languages: isl+eng
mode: lstm_only
page_seg_mode: single_line
workers: 2
whitelist: "0123456789"
variables:
  user_defined_dpi: "300"
`)
	t.Setenv("TESSERA_WORKERS", "4")
	t.Setenv("TESSERA_PSM", "6")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "isl+eng", cfg.Languages)
	assert.Equal(t, engine.ModeLSTMOnly, cfg.Mode)
	assert.Equal(t, engine.PSMSingleBlock, cfg.PageSegMode)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "0123456789", cfg.Whitelist)
	assert.Equal(t, "OCR Text", cfg.LayerName)

	rc := cfg.Recognition()
	assert.Equal(t, "0123456789", rc.Whitelist)
	assert.Equal(t, engine.PSMSingleBlock, rc.PageSegMode)
	assert.Equal(t, "300", rc.Variables["user_defined_dpi"])
	assert.Equal(t, engine.AllLevels, rc.Levels)
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	path := writeFile(t, "tessera.yaml", "languages: fra\n")
	t.Setenv(ConfigEnv, path)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "fra", cfg.Languages)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "workers: [1"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "mode.yaml", "mode: quantum\n"))
	assert.Error(t, err)

}

func TestConfigValidate(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "workers.yaml", "workers: 0\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.validate(), "workers")

	cfg, err = LoadConfig(writeFile(t, "dpi.yaml", "dpi: 0\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.validate(), "dpi")

	cfg, err = LoadConfig(writeFile(t, "langs.yaml", "languages: \"+\"\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.validate(), "languages")

	assert.NoError(t, DefaultConfig().validate())
}

func TestApplyFlags(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"--lang", "deu+eng", "--psm", "7", "-j", "3", "--oem", "1"}))

	cfg := DefaultConfig()
	cfg.Whitelist = "abc"
	require.NoError(t, applyFlags(rootCmd, &cfg))
	assert.Equal(t, "deu+eng", cfg.Languages)
	assert.Equal(t, engine.PSMSingleLine, cfg.PageSegMode)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, engine.ModeLSTMOnly, cfg.Mode)
	assert.Equal(t, "abc", cfg.Whitelist, "unset flags keep the loaded value")
}

func TestFlagsRepairFileConfig(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "zero.yaml", "workers: 0\ndpi: 0\n"))
	require.NoError(t, err)

	require.NoError(t, rootCmd.ParseFlags([]string{"-j", "4", "--dpi", "150"}))
	require.NoError(t, applyFlags(rootCmd, &cfg))
	require.NoError(t, cfg.validate())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, float64(150), cfg.DPI)
}

func TestPDFConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LayerName = "Scan"
	cfg.Force = true
	pc := cfg.PDF()
	assert.Equal(t, "Scan", pc.LayerName)
	assert.True(t, pc.Force)
	assert.Equal(t, 1, pc.StartPage)
}

func TestOutputFlags(t *testing.T) {
	existing := writeFile(t, "out.txt", "old")

	o := outputFlags{path: existing}
	assert.ErrorContains(t, o.check(), "already exists")
	o.overwrite = true
	require.NoError(t, o.check())
	require.NoError(t, o.write(nil, []byte("new")))
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	var buf bytes.Buffer
	o = outputFlags{}
	require.NoError(t, o.check())
	require.NoError(t, o.write(&buf, []byte("stdout")))
	assert.Equal(t, "stdout", buf.String())
}

func TestImageFiles(t *testing.T) {
	dir := t.TempDir()
	png, err := tessera.EncodeImage(enginetest.RenderText("ab", 1))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), png, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), png, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	names, images, err := imageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, names)
	assert.Len(t, images, 2)

	loaded, err := loadImages(names, 72)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	_, err = loadImages([]string{filepath.Join(dir, "notes.txt")}, 72)
	assert.ErrorIs(t, err, tessera.ErrImageConversion)
}

func TestToPageBlocks(t *testing.T) {
	s, err := tessera.New(nil, tessera.Options{Backend: &enginetest.Backend{}})
	require.NoError(t, err)
	defer s.Close()

	res, err := s.PerformOCR(enginetest.RenderText("ab", 1))
	require.NoError(t, err)

	pb := toPageBlocks(1, tessera.LevelWord, res)
	assert.Equal(t, 1, pb.Page)
	assert.Equal(t, "word", pb.Level)
	assert.Equal(t, res.Size.X, pb.Width)
	require.Len(t, pb.Blocks, 2)
	assert.Equal(t, "Hello", pb.Blocks[0].Text)
	assert.Equal(t, float64(enginetest.Confidence), pb.Blocks[0].Confidence)
	assert.Less(t, pb.Blocks[0].X1, pb.Blocks[0].X2)
}
