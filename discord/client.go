// Package discord connects Mathy to Discord: mention chat, commands, member
// onboarding, presence and the daily problem channel.
package discord

import (
	"context"
	"fmt"

	"github.com/Soypete/mathy-bot/ai"
	"github.com/Soypete/mathy-bot/database"
	"github.com/Soypete/mathy-bot/logging"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Responder answers mentions and writes the presence text.
type Responder interface {
	Respond(ctx context.Context, userID, username, prompt string) (string, error)
	StatusQuote(ctx context.Context, activity ai.Activity) (string, error)
}

// VoteReporter reports the live standings of the daily problem.
type VoteReporter interface {
	Votes(ctx context.Context) (string, error)
}

// VotesFunc adapts a function to VoteReporter.
type VotesFunc func(ctx context.Context) (string, error)

func (f VotesFunc) Votes(ctx context.Context) (string, error) {
	return f(ctx)
}

// StatusSink receives the flags read by the status monitor.
type StatusSink interface {
	SetError(value bool) error
	Flash() error
}

// Journal records answered mentions.
type Journal interface {
	Record(user, userMessage, botResponse string)
}

// Options configures a Client. LLM, Votes and Shutdown are required.
type Options struct {
	Token          string
	OwnerID        string
	MemberRoleName string

	LLM      Responder
	Votes    VoteReporter
	DB       database.InteractionWriter
	Journal  Journal
	Status   StatusSink
	Shutdown func(reason string)
	Logger   *logging.Logger
}

type Client struct {
	Session *discordgo.Session

	ownerID    string
	memberRole string
	llm        Responder
	votes      VoteReporter
	db         database.InteractionWriter
	journal    Journal
	status     StatusSink
	shutdown   func(reason string)
	logger     *logging.Logger
}

// Setup creates the session and registers the event handlers. The gateway
// connection is opened by Open.
func Setup(opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.LLM == nil || opts.Votes == nil || opts.Shutdown == nil {
		return nil, errors.New("discord setup needs an LLM, a vote reporter and a shutdown hook")
	}

	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, errors.Wrap(err, "error creating discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	c := &Client{
		Session:    session,
		ownerID:    opts.OwnerID,
		memberRole: opts.MemberRoleName,
		llm:        opts.LLM,
		votes:      opts.Votes,
		db:         opts.DB,
		journal:    opts.Journal,
		status:     opts.Status,
		shutdown:   opts.Shutdown,
		logger:     opts.Logger,
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.logger.Info("logged in to discord", "user", r.User.String(), "guilds", len(r.Guilds))
		c.setPresence(context.Background(), s, ai.RandomActivity())
	})
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if s.State == nil || s.State.User == nil {
			return
		}
		c.onMessage(context.Background(), s, s.State.User, m)
	})
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		c.onInteraction(context.Background(), s, i)
	})
	session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		c.onMemberJoin(s, m)
	})

	return c, nil
}

// Open connects to the gateway and registers the slash commands.
func (c *Client) Open() error {
	if err := c.Session.Open(); err != nil {
		return errors.Wrap(err, "error opening connection to discord")
	}
	for _, cmd := range SlashCommands() {
		if _, err := c.Session.ApplicationCommandCreate(c.Session.State.User.ID, "", cmd); err != nil {
			return errors.Wrapf(err, "error creating command %s", cmd.Name)
		}
	}
	c.logger.Info("discord session open", "commands", len(SlashCommands()))
	return nil
}

func (c *Client) Close() {
	c.logger.Info("closing discord session")
	if err := c.Session.Close(); err != nil {
		c.logger.Error("error closing discord session", "error", err.Error())
	}
}

// DailyChannel returns the adapter the scheduler posts through.
func (c *Client) DailyChannel(channelID string) *DailyChannel {
	return NewDailyChannel(c.Session, channelID)
}

func (c *Client) raiseError() {
	if c.status == nil {
		return
	}
	if err := c.status.SetError(true); err != nil {
		c.logger.Error("failed to raise status error flag", "error", err.Error())
	}
}

// presenceUpdater is implemented by *discordgo.Session.
type presenceUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

var activityTypes = map[ai.Activity]discordgo.ActivityType{
	ai.ActivityListening: discordgo.ActivityTypeListening,
	ai.ActivityPlaying:   discordgo.ActivityTypeGame,
	ai.ActivityWatching:  discordgo.ActivityTypeWatching,
}

func (c *Client) setPresence(ctx context.Context, s presenceUpdater, activity ai.Activity) {
	quote, err := c.llm.StatusQuote(ctx, activity)
	if err != nil {
		c.logger.Error("failed to generate status quote", "error", err.Error())
		c.raiseError()
		return
	}
	activityType, ok := activityTypes[activity]
	if !ok {
		activityType = discordgo.ActivityTypeGame
	}
	err = s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status:     string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{Name: quote, Type: activityType}},
	})
	if err != nil {
		c.logger.Error("failed to set status", "error", err.Error())
		c.raiseError()
		return
	}
	c.logger.Info("status set", "activity", string(activity), "text", quote)
}

func (c *Client) onMemberJoin(api API, m *discordgo.GuildMemberAdd) {
	if c.memberRole == "" || m.Member == nil || m.User == nil {
		return
	}
	roles, err := api.GuildRoles(m.GuildID)
	if err != nil {
		c.logger.Error("failed to list guild roles", "guild", m.GuildID, "error", err.Error())
		return
	}
	for _, role := range roles {
		if role.Name != c.memberRole {
			continue
		}
		if err := api.GuildMemberRoleAdd(m.GuildID, m.User.ID, role.ID); err != nil {
			c.logger.Error("failed to assign role", "role", c.memberRole, "user", m.User.Username, "error", err.Error())
			return
		}
		c.logger.Info("assigned role", "role", c.memberRole, "user", m.User.Username)
		return
	}
	c.logger.Warn(fmt.Sprintf("role %q not found", c.memberRole), "guild", m.GuildID)
}
