package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gif_frame_node/composite_renderer"
	"gif_frame_node/config"
	"gif_frame_node/databases/sqlite"
	"gif_frame_node/discord_bot"
	"gif_frame_node/frame_extractor"
	"gif_frame_node/frame_node"
	"gif_frame_node/frame_queue"
	"gif_frame_node/image_store"
	"gif_frame_node/repositories/default_settings"
	"gif_frame_node/repositories/extracted_frames"
)

// Bot parameters
var (
	guildID            = flag.String("guild", "", "Guild ID for the bot's commands")
	botToken           = flag.String("token", "", "Bot access token")
	frameCommandFlag   = flag.String("command", "", "Frame command name. Defaults to FRAME_COMMAND or \"frame\"")
	removeCommandsFlag = flag.Bool("remove", false, "Delete all commands when bot exits")
)

// One-shot parameters
var (
	imagePath  = flag.String("image", "", "Extract a single frame from this image and exit")
	frameIndex = flag.Int("frame", frame_extractor.DefaultFrameIndex, "Frame index, starting at 0")
	width      = flag.Int("width", frame_extractor.DefaultWidth, "Output width, used together with -height")
	height     = flag.Int("height", frame_extractor.DefaultHeight, "Output height, used together with -width")
	scale      = flag.Float64("scale", frame_extractor.DefaultScale, "Uniform scale when no width and height are given")
	crop       = flag.Bool("crop", frame_extractor.DefaultCrop, "Crop to fit instead of padding to fit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	extractorCfg, err := cfg.ExtractorConfig()
	if err != nil {
		log.Fatalf("Invalid extractor configuration: %v", err)
	}

	extractor, err := frame_extractor.New(extractorCfg)
	if err != nil {
		log.Fatalf("Failed to create frame extractor: %v", err)
	}

	ctx := context.Background()

	sqliteDB, err := sqlite.New(ctx, cfg.DBFile)
	if err != nil {
		log.Fatalf("Failed to create sqlite database: %v", err)
	}
	defer sqliteDB.Close()

	frameRepo, err := extracted_frames.NewRepository(&extracted_frames.Config{DB: sqliteDB})
	if err != nil {
		log.Fatalf("Failed to create extracted frame repository: %v", err)
	}

	renderer, err := composite_renderer.New(composite_renderer.Config{})
	if err != nil {
		log.Fatalf("Failed to create composite renderer: %v", err)
	}

	store, err := image_store.New(image_store.Config{
		OutputDir: cfg.OutputDir,
		Renderer:  renderer,
		FrameRepo: frameRepo,
	})
	if err != nil {
		log.Fatalf("Failed to create image store: %v", err)
	}

	if *imagePath != "" {
		err = runOnce(ctx, extractor, store)
		if err != nil {
			var inputErr *frame_extractor.InputError
			if errors.As(err, &inputErr) {
				log.Fatalf("Invalid input: %v", inputErr)
			}

			log.Fatalf("Failed to extract frame: %v", err)
		}

		return
	}

	if botToken == nil || *botToken == "" {
		log.Fatalf("Bot token flag is required unless -image is given")
	}

	if guildID == nil || *guildID == "" {
		log.Fatalf("Guild ID flag is required")
	}

	frameCommand := cfg.Command
	if *frameCommandFlag != "" {
		frameCommand = *frameCommandFlag
	}

	defaultSettingsRepo, err := default_settings.NewRepository(&default_settings.Config{DB: sqliteDB})
	if err != nil {
		log.Fatalf("Failed to create default settings repository: %v", err)
	}

	frameQueue, err := frame_queue.New(frame_queue.Config{
		Extractor:         extractor,
		InvocationContext: store,
	})
	if err != nil {
		log.Fatalf("Failed to create frame queue: %v", err)
	}

	bot, err := discord_bot.New(discord_bot.Config{
		BotToken:            *botToken,
		GuildID:             *guildID,
		FrameCommand:        frameCommand,
		FrameQueue:          frameQueue,
		ImageStore:          store,
		DefaultSettingsRepo: defaultSettingsRepo,
		MaxDownloadSize:     extractorCfg.MaxSourceSize,
		RemoveCommands:      *removeCommandsFlag,
	})
	if err != nil {
		log.Fatalf("Error creating Discord bot: %v", err)
	}

	bot.Start()

	log.Println("Gracefully shutting down.")
}

func runOnce(ctx context.Context, extractor frame_extractor.Extractor, store image_store.Store) error {
	req := frame_extractor.NewRequest(*imagePath)
	req.FrameIndex = *frameIndex
	req.Width = *width
	req.Height = *height
	req.Scale = *scale
	req.Crop = *crop

	node, err := frame_node.New(frame_node.Config{
		Extractor: extractor,
		Request:   req,
	})
	if err != nil {
		return err
	}

	output, err := node.Invoke(ctx, store)
	if err != nil {
		return err
	}

	log.Printf("Frame saved to %v", store.Path(output.Image.ImageName))

	return json.NewEncoder(os.Stdout).Encode(output)
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "  Run the Discord bot with -token and -guild, or extract one frame with -image.")
		flag.PrintDefaults()
	}
}
