package config

import (
	"image/color"
	"testing"

	"gif_frame_node/frame_extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.Equal(t, "frame_node.sqlite", cfg.DBFile)
	assert.Equal(t, "embedded", cfg.Method)
	assert.Equal(t, "frame", cfg.Command)

	extractorCfg, err := cfg.ExtractorConfig()
	require.NoError(t, err)
	assert.Equal(t, frame_extractor.MethodEmbedded, extractorCfg.Method)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, extractorCfg.PadBackground)
	assert.Equal(t, int64(256*1000*1000), extractorCfg.MaxSourceSize)
	assert.Equal(t, "ffmpeg", extractorCfg.FFmpegBin)
	assert.Equal(t, "convert", extractorCfg.MagickBin)
	assert.Equal(t, "gifsicle", extractorCfg.GifsicleBin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FRAME_OUTPUT_DIR", "/srv/frames")
	t.Setenv("FRAME_METHOD", "ImageMagick")
	t.Setenv("FRAME_PAD_BACKGROUND", "#000")
	t.Setenv("FRAME_MAX_SOURCE_SIZE", "0")
	t.Setenv("FRAME_MAGICK_BIN", "magick")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/frames", cfg.OutputDir)

	extractorCfg, err := cfg.ExtractorConfig()
	require.NoError(t, err)
	assert.Equal(t, frame_extractor.MethodImageMagick, extractorCfg.Method)
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, extractorCfg.PadBackground)
	assert.Zero(t, extractorCfg.MaxSourceSize)
	assert.Equal(t, "magick", extractorCfg.MagickBin)
}

func TestExtractorConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "method", cfg: Config{Method: "photoshop", PadBackground: "#fff"}},
		{name: "background", cfg: Config{PadBackground: "white"}},
		{name: "size", cfg: Config{PadBackground: "#fff", MaxSourceSize: "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.ExtractorConfig()
			assert.Error(t, err)
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{in: "#ffffff", want: color.NRGBA{255, 255, 255, 255}},
		{in: "#f0a", want: color.NRGBA{255, 0, 170, 255}},
		{in: "102030", want: color.NRGBA{16, 32, 48, 255}},
		{in: "#00000080", want: color.NRGBA{0, 0, 0, 128}},
	}

	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#ff", "#gggggg", "#12345"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}
