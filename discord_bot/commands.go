package discord_bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gif_frame_node/entities"
	"gif_frame_node/frame_extractor"
	"gif_frame_node/frame_node"
	"gif_frame_node/frame_queue"
	"gif_frame_node/repositories"

	"github.com/bwmarrin/discordgo"
	"github.com/docker/go-units"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	optMap := make(optionMap, len(options))
	for _, opt := range options {
		optMap[opt.Name] = opt
	}

	return optMap
}

var minZero = 0.0

// Upper bounds for the resize options, kept well inside what the extractor accepts.
const (
	maxDimension = 8192
	maxScale     = 16
)

func resizeOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "width",
			Description: "Output width, used together with height",
			MinValue:    &minZero,
			MaxValue:    maxDimension,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "height",
			Description: "Output height, used together with width",
			MinValue:    &minZero,
			MaxValue:    maxDimension,
		},
		{
			Type:        discordgo.ApplicationCommandOptionNumber,
			Name:        "scale",
			Description: "Uniform scale factor when no width and height are given",
			MinValue:    &minZero,
			MaxValue:    maxScale,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "crop",
			Description: "Crop to fit instead of padding to fit",
		},
	}
}

func frameCommand(name string) *discordgo.ApplicationCommand {
	options := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "image",
			Description: "The GIF or PNG to take the frame from",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "path",
			Description: "Path of the image on the bot's host, used when no image is attached",
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "frame",
			Description: "Frame number, starting at 0",
			MinValue:    &minZero,
		},
	}

	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: "Extract a single frame from an animated image",
		Options:     append(options, resizeOptions()...),
	}
}

func defaultsCommand(name string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: "Set your default frame size, scale and crop",
		Options:     resizeOptions(),
	}
}

func interactionMemberID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}

	if i.User != nil {
		return i.User.ID
	}

	return ""
}

// buildFrameRequest fills a request from the command options, falling back
// to the member's stored defaults for every resize option left out.
func buildFrameRequest(imagePath string, options optionMap, defaults *entities.DefaultSettings) *frame_extractor.Request {
	req := frame_extractor.NewRequest(imagePath)

	if defaults != nil {
		req.Width = defaults.Width
		req.Height = defaults.Height
		req.Crop = defaults.Crop

		if defaults.Scale > 0 {
			req.Scale = defaults.Scale
		}
	}

	if opt, ok := options["frame"]; ok {
		req.FrameIndex = int(opt.IntValue())
	}

	if opt, ok := options["width"]; ok {
		req.Width = int(opt.IntValue())
	}

	if opt, ok := options["height"]; ok {
		req.Height = int(opt.IntValue())
	}

	if opt, ok := options["scale"]; ok {
		req.Scale = opt.FloatValue()
	}

	if opt, ok := options["crop"]; ok {
		req.Crop = opt.BoolValue()
	}

	return req
}

func mergeDefaults(memberID string, current *entities.DefaultSettings, options optionMap) *entities.DefaultSettings {
	merged := &entities.DefaultSettings{
		MemberID: memberID,
		Scale:    frame_extractor.DefaultScale,
	}

	if current != nil {
		merged.Width = current.Width
		merged.Height = current.Height
		merged.Scale = current.Scale
		merged.Crop = current.Crop
	}

	if opt, ok := options["width"]; ok {
		merged.Width = int(opt.IntValue())
	}

	if opt, ok := options["height"]; ok {
		merged.Height = int(opt.IntValue())
	}

	if opt, ok := options["scale"]; ok {
		merged.Scale = opt.FloatValue()
	}

	if opt, ok := options["crop"]; ok {
		merged.Crop = opt.BoolValue()
	}

	return merged
}

func defaultsMessageContent(settings *entities.DefaultSettings) string {
	size := "original size"
	if settings.Width > 0 && settings.Height > 0 {
		fit := "padded"
		if settings.Crop {
			fit = "cropped"
		}

		size = fmt.Sprintf("%dx%d (%s)", settings.Width, settings.Height, fit)
	}

	return fmt.Sprintf("Your frame defaults: size %s, scale %v.", size, settings.Scale)
}

// frameErrorMessage is what the member sees when an extraction fails.
// Input problems are reported as is; anything else stays in the logs.
func frameErrorMessage(err error) string {
	var inputErr *frame_extractor.InputError
	if errors.As(err, &inputErr) {
		return fmt.Sprintf("Sorry, I couldn't get that frame: %v", inputErr)
	}

	return "Sorry, something went wrong while extracting that frame."
}

// downloadAttachment saves url into dir, keeping the attachment's file name,
// and refuses bodies larger than limit when limit is positive.
func downloadAttachment(ctx context.Context, client *http.Client, url, filename, dir string, limit int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status downloading attachment: %s", resp.Status)
	}

	if limit > 0 && resp.ContentLength > limit {
		return "", fmt.Errorf("attachment is %s, larger than %s", units.HumanSize(float64(resp.ContentLength)), units.HumanSize(float64(limit)))
	}

	name := path.Base(filename)
	if name == "" || name == "." || name == "/" {
		name = "attachment"
	}

	target := filepath.Join(dir, name)

	file, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}

	written, err := io.Copy(file, body)
	if err != nil {
		return "", err
	}

	if limit > 0 && written > limit {
		return "", fmt.Errorf("attachment is larger than %s", units.HumanSize(float64(limit)))
	}

	log.Printf("Downloaded attachment %s (%s)", name, units.HumanSize(float64(written)))

	return target, nil
}

// resolveSource returns a local path for the command's image, downloading the
// attachment into a scratch directory when one was given. The returned
// cleanup removes anything downloaded.
func (b *botImpl) resolveSource(ctx context.Context, i *discordgo.InteractionCreate, options optionMap) (string, string, func(), error) {
	noop := func() {}

	if opt, ok := options["image"]; ok {
		id, _ := opt.Value.(string)

		resolved := i.ApplicationCommandData().Resolved
		if resolved == nil || resolved.Attachments[id] == nil {
			return "", "", noop, errors.New("attachment missing from interaction")
		}

		attachment := resolved.Attachments[id]

		dir, err := os.MkdirTemp("", "frame-attachment-*")
		if err != nil {
			return "", "", noop, err
		}

		cleanup := func() { os.RemoveAll(dir) }

		local, err := downloadAttachment(ctx, b.botSession.Client, attachment.URL, attachment.Filename, dir, b.maxDownloadSize)
		if err != nil {
			cleanup()

			return "", "", noop, err
		}

		return local, attachment.Filename, cleanup, nil
	}

	if opt, ok := options["path"]; ok && strings.TrimSpace(opt.StringValue()) != "" {
		p := strings.TrimSpace(opt.StringValue())

		return p, p, noop, nil
	}

	return "", "", noop, errors.New("attach an image or give a path")
}

func (b *botImpl) lookupDefaults(ctx context.Context, memberID string) *entities.DefaultSettings {
	if memberID == "" {
		return nil
	}

	defaults, err := b.defaultSettingsRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			log.Printf("Error getting default settings for member %v: %v", memberID, err)
		}

		return nil
	}

	return defaults
}

func (b *botImpl) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string, files ...*discordgo.File) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Files:   files,
	})
	if err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

func (b *botImpl) processFrameCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)

		return
	}

	ctx := context.Background()
	options := newOptionMap(i.ApplicationCommandData().Options)
	memberID := interactionMemberID(i.Interaction)

	imagePath, sourceName, cleanup, err := b.resolveSource(ctx, i, options)
	if err != nil {
		log.Printf("Error resolving frame source: %v", err)

		b.editResponse(s, i, fmt.Sprintf("Sorry, I couldn't read that image: %v", err))

		return
	}

	req := buildFrameRequest(imagePath, options, b.lookupDefaults(ctx, memberID))

	position, err := b.frameQueue.AddFrame(&frame_queue.QueueItem{
		Request:  req,
		MemberID: memberID,
		Done: func(output *frame_node.ImageOutput, err error) {
			defer cleanup()

			b.finishFrameCommand(s, i, req, sourceName, memberID, output, err)
		},
	})
	if err != nil {
		cleanup()

		log.Printf("Error adding frame to queue: %v", err)

		b.editResponse(s, i, "Sorry, I'm too busy right now. Try again in a moment.")

		return
	}

	log.Printf("Queued frame %d of %v for member %v at position %d", req.FrameIndex, sourceName, memberID, position)
}

func (b *botImpl) finishFrameCommand(s *discordgo.Session, i *discordgo.InteractionCreate, req *frame_extractor.Request,
	sourceName, memberID string, output *frame_node.ImageOutput, err error,
) {
	if err != nil {
		b.editResponse(s, i, frameErrorMessage(err))

		return
	}

	reader, err := b.imageStore.Open(context.Background(), output.Image.ImageName)
	if err != nil {
		log.Printf("Error opening saved frame %v: %v", output.Image.ImageName, err)

		b.editResponse(s, i, frameErrorMessage(err))

		return
	}
	defer reader.Close()

	b.editResponse(s, i,
		fmt.Sprintf("<@%s> here is frame %d of %s (%dx%d).", memberID, req.FrameIndex, sourceName, output.Width, output.Height),
		&discordgo.File{
			ContentType: "image/png",
			Name:        output.Image.ImageName,
			Reader:      reader,
		})
}

func (b *botImpl) processDefaultsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	memberID := interactionMemberID(i.Interaction)
	options := newOptionMap(i.ApplicationCommandData().Options)

	var content string

	settings, err := b.defaultSettingsRepo.Upsert(ctx, mergeDefaults(memberID, b.lookupDefaults(ctx, memberID), options))
	if err != nil {
		log.Printf("Error updating default settings for member %v: %v", memberID, err)

		content = fmt.Sprintf("Sorry, I couldn't save those defaults: %v", err)
	} else {
		content = defaultsMessageContent(settings)
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}
