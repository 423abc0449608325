package config

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"gif_frame_node/frame_extractor"

	"github.com/caarlos0/env/v11"
	"github.com/docker/go-units"
)

type Config struct {
	OutputDir string `env:"FRAME_OUTPUT_DIR" envDefault:"outputs"`
	DBFile    string `env:"FRAME_DB_FILE"    envDefault:"frame_node.sqlite"`

	Method        string `env:"FRAME_METHOD"          envDefault:"embedded"`
	PadBackground string `env:"FRAME_PAD_BACKGROUND"  envDefault:"#ffffff"`
	MaxSourceSize string `env:"FRAME_MAX_SOURCE_SIZE" envDefault:"256MB"`
	FFmpegBin     string `env:"FRAME_FFMPEG_BIN"      envDefault:"ffmpeg"`
	MagickBin     string `env:"FRAME_MAGICK_BIN"      envDefault:"convert"`
	GifsicleBin   string `env:"FRAME_GIFSICLE_BIN"    envDefault:"gifsicle"`

	Command string `env:"FRAME_COMMAND" envDefault:"frame"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExtractorConfig turns the raw settings into frame_extractor options.
func (c *Config) ExtractorConfig() (frame_extractor.Config, error) {
	method, err := frame_extractor.ParseMethod(c.Method)
	if err != nil {
		return frame_extractor.Config{}, err
	}

	background, err := ParseHexColor(c.PadBackground)
	if err != nil {
		return frame_extractor.Config{}, fmt.Errorf("FRAME_PAD_BACKGROUND: %w", err)
	}

	var maxSize int64
	if s := strings.TrimSpace(c.MaxSourceSize); s != "" && s != "0" {
		maxSize, err = units.FromHumanSize(s)
		if err != nil {
			return frame_extractor.Config{}, fmt.Errorf("FRAME_MAX_SOURCE_SIZE: %w", err)
		}
	}

	return frame_extractor.Config{
		Method:        method,
		PadBackground: background,
		MaxSourceSize: maxSize,
		FFmpegBin:     c.FFmpegBin,
		MagickBin:     c.MagickBin,
		GifsicleBin:   c.GifsicleBin,
	}, nil
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa, with or without the
// leading hash.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}

	if len(h) == 6 {
		h += "ff"
	}

	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	b, err := hex.DecodeString(h)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}
