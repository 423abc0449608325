package discord_bot

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"gif_frame_node/frame_queue"
	"gif_frame_node/image_store"
	"gif_frame_node/repositories/default_settings"

	"github.com/bwmarrin/discordgo"
)

const defaultsCommandSuffix = "_defaults"

type botImpl struct {
	botSession          *discordgo.Session
	guildID             string
	frameCommand        string
	frameQueue          frame_queue.Queue
	imageStore          image_store.Store
	defaultSettingsRepo default_settings.Repository
	maxDownloadSize     int64
	removeCommands      bool
	registeredCommands  []*discordgo.ApplicationCommand
}

type Config struct {
	BotToken            string
	GuildID             string
	FrameCommand        string
	FrameQueue          frame_queue.Queue
	ImageStore          image_store.Store
	DefaultSettingsRepo default_settings.Repository
	// MaxDownloadSize caps attachment downloads. Zero disables the cap.
	MaxDownloadSize int64
	RemoveCommands  bool
}

func New(cfg Config) (Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("missing bot token")
	}

	if cfg.GuildID == "" {
		return nil, errors.New("missing guild ID")
	}

	if cfg.FrameCommand == "" {
		return nil, errors.New("missing frame command")
	}

	if cfg.FrameQueue == nil {
		return nil, errors.New("missing frame queue")
	}

	if cfg.ImageStore == nil {
		return nil, errors.New("missing image store")
	}

	if cfg.DefaultSettingsRepo == nil {
		return nil, errors.New("missing default settings repo")
	}

	botSession, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	botSession.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	err = botSession.Open()
	if err != nil {
		return nil, err
	}

	bot := &botImpl{
		botSession:          botSession,
		guildID:             cfg.GuildID,
		frameCommand:        cfg.FrameCommand,
		frameQueue:          cfg.FrameQueue,
		imageStore:          cfg.ImageStore,
		defaultSettingsRepo: cfg.DefaultSettingsRepo,
		maxDownloadSize:     cfg.MaxDownloadSize,
		removeCommands:      cfg.RemoveCommands,
		registeredCommands:  make([]*discordgo.ApplicationCommand, 0),
	}

	for _, cmd := range []*discordgo.ApplicationCommand{
		frameCommand(bot.frameCommand),
		defaultsCommand(bot.frameCommand + defaultsCommandSuffix),
	} {
		err = bot.addCommand(cmd)
		if err != nil {
			return nil, err
		}
	}

	botSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		switch i.ApplicationCommandData().Name {
		case bot.frameCommand:
			bot.processFrameCommand(s, i)
		case bot.frameCommand + defaultsCommandSuffix:
			bot.processDefaultsCommand(s, i)
		default:
			log.Printf("Unknown command '%v'", i.ApplicationCommandData().Name)
		}
	})

	return bot, nil
}

func (b *botImpl) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	polling := make(chan struct{})

	go func() {
		b.frameQueue.StartPolling(ctx)
		close(polling)
	}()

	log.Println("Press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	cancel()
	<-polling

	err := b.teardown()
	if err != nil {
		log.Printf("Error tearing down bot: %v", err)
	}
}

func (b *botImpl) teardown() error {
	if b.removeCommands {
		for _, cmd := range b.registeredCommands {
			err := b.botSession.ApplicationCommandDelete(b.botSession.State.User.ID, b.guildID, cmd.ID)
			if err != nil {
				log.Printf("Error deleting '%v' command: %v", cmd.Name, err)
			}
		}
	}

	return b.botSession.Close()
}

func (b *botImpl) addCommand(command *discordgo.ApplicationCommand) error {
	log.Printf("Adding command '%s'...", command.Name)

	cmd, err := b.botSession.ApplicationCommandCreate(b.botSession.State.User.ID, b.guildID, command)
	if err != nil {
		log.Printf("Error creating '%s' command: %v", command.Name, err)

		return err
	}

	b.registeredCommands = append(b.registeredCommands, cmd)

	return nil
}
