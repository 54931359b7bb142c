package presentation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/bot"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/usecases"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// Handlers routes queue commands onto the queue core.
type Handlers struct {
	manager  *usecases.QueueManager
	autoplay *usecases.AutoplayService
	searcher ports.TrackSearcher
}

// NewHandlers creates new Handlers.
func NewHandlers(
	manager *usecases.QueueManager,
	autoplay *usecases.AutoplayService,
	searcher ports.TrackSearcher,
) *Handlers {
	return &Handlers{
		manager:  manager,
		autoplay: autoplay,
		searcher: searcher,
	}
}

// HandleQueue handles the /queue command and its subcommands.
func (h *Handlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	queue, err := h.guildQueue(i)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return respondError(r, "Missing subcommand")
	}
	sub := data.Options[0]

	switch sub.Name {
	case "add":
		return h.handleAdd(i, r, queue, sub)
	case "skip":
		return h.handleSkip(r, queue)
	case "list":
		return h.handleList(r, queue)
	case "remove":
		return h.handleRemove(r, queue, sub)
	case "move":
		return h.handleMove(r, queue, sub)
	case "clear":
		count := queue.Clear()
		return respondSuccess(r, fmt.Sprintf("Removed %d tracks from the queue.", count))
	case "shuffle":
		if queue.ToggleShuffle() {
			return respondSuccess(r, "Shuffle enabled; queue reshuffled.")
		}
		return respondSuccess(r, "Shuffle disabled.")
	case "repeat":
		return h.handleRepeat(r, queue, sub)
	case "history":
		return h.handleHistory(r, queue, sub)
	case "stats":
		return h.handleStats(r, queue)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *Handlers) handleAdd(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	queue *domain.Queue,
	sub *discordgo.ApplicationCommandInteractionDataOption,
) error {
	if h.searcher == nil {
		return respondError(r, "Track search is not available")
	}

	var (
		query    string
		playNext bool
		priority int
	)
	for _, opt := range sub.Options {
		switch opt.Name {
		case "query":
			query = opt.StringValue()
		case "next":
			playNext = opt.BoolValue()
		case "priority":
			priority = int(opt.IntValue())
		}
	}

	tracks, err := h.searcher.Search(context.Background(), query)
	if err != nil {
		return respondError(r, "Track search failed")
	}
	if len(tracks) == 0 {
		return respondError(r, fmt.Sprintf("No results for %q", query))
	}
	track := tracks[0]

	var requesterID snowflake.ID
	if i.Member != nil && i.Member.User != nil {
		requesterID, _ = snowflake.Parse(i.Member.User.ID)
	}

	added := false
	if playNext {
		added = queue.AddNext(track, requesterID, nil)
	} else {
		added = queue.Add(track, requesterID, priority, nil)
	}
	if !added {
		return respondError(r, fmt.Sprintf("The queue is full (%d tracks).", queue.MaxSize()))
	}

	return respondSuccess(r, fmt.Sprintf("Queued **%s** (%d pending).", track.Title, queue.Len()))
}

func (h *Handlers) handleSkip(r bot.Responder, queue *domain.Queue) error {
	entry := queue.Get()
	if entry == nil {
		return respondError(r, "The queue is empty")
	}
	queue.MarkSkipped()

	return respondSuccess(r, fmt.Sprintf("Skipped to **%s**.", entry.Track.Title))
}

func (h *Handlers) handleList(r bot.Responder, queue *domain.Queue) error {
	entries := queue.List()
	if len(entries) == 0 {
		return respondSuccess(r, "The queue is empty.")
	}

	var sb strings.Builder
	shown := min(len(entries), 10)
	for pos, entry := range entries[:shown] {
		fmt.Fprintf(&sb, "%d. **%s** (%s)\n",
			pos+1, entry.Track.Title, entry.Track.FormattedDuration())
	}
	if len(entries) > shown {
		fmt.Fprintf(&sb, "... and %d more", len(entries)-shown)
	}

	return respondSuccess(r, sb.String())
}

func (h *Handlers) handleRemove(
	r bot.Responder,
	queue *domain.Queue,
	sub *discordgo.ApplicationCommandInteractionDataOption,
) error {
	position := 0
	for _, opt := range sub.Options {
		if opt.Name == "position" {
			position = int(opt.IntValue())
		}
	}

	entry := queue.Remove(position - 1)
	if entry == nil {
		return respondError(r, fmt.Sprintf("No track at position %d", position))
	}
	return respondSuccess(r, fmt.Sprintf("Removed **%s**.", entry.Track.Title))
}

func (h *Handlers) handleMove(
	r bot.Responder,
	queue *domain.Queue,
	sub *discordgo.ApplicationCommandInteractionDataOption,
) error {
	from, to := 0, 0
	for _, opt := range sub.Options {
		switch opt.Name {
		case "from":
			from = int(opt.IntValue())
		case "to":
			to = int(opt.IntValue())
		}
	}

	if !queue.Move(from-1, to-1) {
		return respondError(r, "Invalid positions")
	}
	return respondSuccess(r, fmt.Sprintf("Moved track from %d to %d.", from, to))
}

func (h *Handlers) handleRepeat(
	r bot.Responder,
	queue *domain.Queue,
	sub *discordgo.ApplicationCommandInteractionDataOption,
) error {
	mode := ""
	for _, opt := range sub.Options {
		if opt.Name == "mode" {
			mode = opt.StringValue()
		}
	}

	var result domain.RepeatMode
	if mode == "" {
		result = queue.ToggleRepeatMode()
	} else {
		result = queue.SetRepeatMode(domain.ParseRepeatMode(mode))
	}
	return respondSuccess(r, fmt.Sprintf("Repeat mode is now **%s**.", result))
}

func (h *Handlers) handleHistory(
	r bot.Responder,
	queue *domain.Queue,
	sub *discordgo.ApplicationCommandInteractionDataOption,
) error {
	limit := 0
	for _, opt := range sub.Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	entries := queue.History(limit)
	if len(entries) == 0 {
		return respondSuccess(r, "Nothing has been played yet.")
	}

	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "**%s** (played %d times)\n", entry.Track.Title, entry.PlayCount)
	}
	return respondSuccess(r, sb.String())
}

func (h *Handlers) handleStats(r bot.Responder, queue *domain.Queue) error {
	stats := queue.Stats()
	if stats.TotalTracks == 0 {
		return respondSuccess(r, "The queue is empty.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tracks: %d\n", stats.TotalTracks)
	fmt.Fprintf(&sb, "Total duration: %s\n", stats.TotalDuration.Round(time.Second))
	fmt.Fprintf(&sb, "Average duration: %s\n", stats.AverageDuration.Round(time.Second))
	if stats.TopArtist != "" {
		fmt.Fprintf(&sb, "Top artist: %s\n", stats.TopArtist)
	}
	return respondSuccess(r, sb.String())
}

// HandleFavorite handles the /favorite command.
func (h *Handlers) HandleFavorite(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	queue, err := h.guildQueue(i)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return respondError(r, "Missing subcommand")
	}
	sub := data.Options[0]

	url := ""
	for _, opt := range sub.Options {
		if opt.Name == "url" {
			url = opt.StringValue()
		}
	}

	switch sub.Name {
	case "add":
		queue.AddFavorite(url)
		return respondSuccess(r, "Added to favorites.")
	case "remove":
		queue.RemoveFavorite(url)
		return respondSuccess(r, "Removed from favorites.")
	case "list":
		favorites := queue.Favorites()
		if len(favorites) == 0 {
			return respondSuccess(r, "No favorites yet.")
		}
		return respondSuccess(r, strings.Join(favorites, "\n"))
	default:
		return respondError(r, "Unknown subcommand")
	}
}

// HandleAutoplay handles the /autoplay command.
func (h *Handlers) HandleAutoplay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	queue, err := h.guildQueue(i)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return respondError(r, "Missing subcommand")
	}
	sub := data.Options[0]

	switch sub.Name {
	case "enable":
		queue.SetAutoplay(true)
		return respondSuccess(r, "Autoplay enabled.")
	case "disable":
		queue.SetAutoplay(false)
		return respondSuccess(r, "Autoplay disabled.")
	case "suggest":
		return h.handleSuggest(r, queue, sub)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *Handlers) handleSuggest(
	r bot.Responder,
	queue *domain.Queue,
	sub *discordgo.ApplicationCommandInteractionDataOption,
) error {
	if h.autoplay == nil {
		return respondError(r, "Autoplay is not available")
	}

	limit := 0
	for _, opt := range sub.Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	recent := queue.History(1)
	if len(recent) == 0 {
		return respondError(r, "Nothing has been played yet")
	}

	suggestions := h.autoplay.Suggest(context.Background(), queue, recent[0].Track, limit)
	if len(suggestions) == 0 {
		return respondSuccess(r, "No suggestions right now.")
	}

	var sb strings.Builder
	for _, track := range suggestions {
		if track.Artist != "" {
			fmt.Fprintf(&sb, "**%s** by %s\n", track.Title, track.Artist)
		} else {
			fmt.Fprintf(&sb, "**%s**\n", track.Title)
		}
	}
	return respondSuccess(r, sb.String())
}

func (h *Handlers) guildQueue(i *discordgo.InteractionCreate) (*domain.Queue, error) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return nil, err
	}
	return h.manager.Queue(guildID), nil
}

func respondSuccess(r bot.Responder, description string) error {
	return respond(r, description, colorSuccess)
}

func respondError(r bot.Responder, description string) error {
	return respond(r, description, colorError)
}

func respond(r bot.Responder, description string, color int) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       color,
				},
			},
		},
	})
}
