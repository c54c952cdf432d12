package main

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"strings"
	"time"

	"sketchify/internal/adapters/converter"
	"sketchify/internal/adapters/file"
	"sketchify/internal/adapters/generator"
	"sketchify/internal/core/domain"
	"sketchify/internal/core/port"
	"sketchify/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting sketchify...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("log.level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if len(os.Args) < 3 {
		log.Fatal().Msg("usage: sketchify <style> <input> [output]")
	}

	style, err := domain.ParseStyle(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid style")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	source, err := loadImage(ctx, os.Args[2])
	if err != nil {
		log.Fatal().Err(err).Msg("could not load input image")
	}

	normalizer := converter.NewNormalizer()
	effect := service.NewEffect(normalizer, buildProviders(normalizer)...)

	request := &domain.EffectRequest{
		Source:    source,
		Style:     style,
		Watermark: viper.GetBool("pipeline.watermark"),
		LocalOnly: !viper.GetBool("remote.enabled"),
	}

	outcome, err := effect.Produce(ctx, request)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid effect request")
	}

	if !outcome.Success {
		for _, failure := range outcome.Failures {
			log.Error().Str("provider", failure.Provider).Str("reason", failure.Reason).
				Msg("provider failed")
		}
		log.Fatal().Dur("elapsed", outcome.Elapsed).Msg("no provider could produce the effect")
	}

	encoded, err := converter.EncodePNG(outcome.Result.Pixels)
	if err != nil {
		log.Fatal().Err(err).Msg("could not encode result")
	}

	output, err := saveResult(encoded)
	if err != nil {
		log.Fatal().Err(err).Msg("could not save result")
	}

	log.Info().
		Str("provider", string(outcome.Provider)).
		Dur("elapsed", outcome.Elapsed).
		Str("output", output).
		Msg("effect produced")
}

func buildProviders(normalizer port.Normalizer) []port.Provider {
	prompts := stylePrompts()

	dashScope := generator.NewDashScope(generator.DashScopeConfig{
		APIKey:       viper.GetString("remote.api_key"),
		BaseURL:      viper.GetString("remote.base_url"),
		Model:        viper.GetString("remote.model"),
		PollInterval: configDuration("remote.poll_interval"),
		MaxWait:      configDuration("remote.max_wait"),
		PollTimeout:  configDuration("remote.poll_timeout"),
		Prompts:      prompts,
	}, normalizer)

	imageEdit := generator.NewImageEdit(generator.ImageEditConfig{
		APIKey:  viper.GetString("edit.api_key"),
		BaseURL: viper.GetString("edit.base_url"),
		Model:   viper.GetString("edit.model"),
		Timeout: configDuration("edit.timeout"),
		Prompts: prompts,
	}, normalizer)

	sketch := generator.NewSketch(sketchParams(), domain.LocalSizePolicy)

	return []port.Provider{dashScope, imageEdit, sketch}
}

func sketchParams() generator.SketchParams {
	params := generator.SketchParams{
		BlurKernel:       viper.GetInt("local.blur_kernel"),
		DetailBlurKernel: viper.GetInt("local.detail_blur_kernel"),
		EdgeLow:          viper.GetInt("local.edge_low"),
		EdgeHigh:         viper.GetInt("local.edge_high"),
		Alpha:            viper.GetFloat64("local.alpha"),
		Beta:             viper.GetFloat64("local.beta"),
		ColorIntensity:   viper.GetFloat64("local.color_intensity"),
	}

	if viper.IsSet("local.sharpen") {
		sharpen := viper.GetBool("local.sharpen")
		params.Sharpen = &sharpen
	}

	return params
}

func stylePrompts() domain.StylePrompts {
	prompts := domain.DefaultStylePrompts()
	for style, prompt := range viper.GetStringMapString("prompts") {
		if prompt != "" {
			prompts[domain.Style(style)] = prompt
		}
	}
	return prompts
}

func configDuration(key string) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return 0
	}

	duration, err := time.ParseDuration(raw)
	if err != nil {
		log.Panic().Err(err).Str("key", key).Msg("invalid duration in config")
	}

	return duration
}

func loadImage(ctx context.Context, path string) (domain.Image, error) {
	var data []byte
	var err error

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		data, err = file.DownloadFile(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.Image{}, err
	}

	pixels, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, err
	}

	return domain.Image{Pixels: pixels, Origin: path}, nil
}

func saveResult(encoded []byte) (string, error) {
	if len(os.Args) > 3 {
		path := os.Args[3]
		return path, os.WriteFile(path, encoded, 0o600)
	}

	return file.SaveTempFile(encoded, ".png")
}
