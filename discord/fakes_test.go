package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/Soypete/mathy-bot/ai"
	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/types"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

type sentMessage struct {
	channelID string
	content   string
}

// fakeAPI records what the handlers send.
type fakeAPI struct {
	mu        sync.Mutex
	sent      []sentMessage
	reactions []string
	responses []*discordgo.InteractionResponse
	roleAdds  []string
	typing    int
	message   *discordgo.Message
	roles     []*discordgo.Role
	sendErr   error
	nextID    int
}

func (f *fakeAPI) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ID: fmt.Sprintf("%d", 1000+f.nextID), ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.message == nil || f.message.ID != messageID {
		return nil, fmt.Errorf("HTTP 404 Not Found, unknown message %s", messageID)
	}
	return f.message, nil
}

func (f *fakeAPI) ChannelTyping(string, ...discordgo.RequestOption) error {
	f.typing++
	return nil
}

func (f *fakeAPI) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.reactions = append(f.reactions, messageID+":"+emojiID)
	return nil
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeAPI) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.roleAdds = append(f.roleAdds, userID+":"+roleID)
	return nil
}

type mockResponder struct {
	mock.Mock
}

func (m *mockResponder) Respond(ctx context.Context, userID, username, prompt string) (string, error) {
	args := m.Called(ctx, userID, username, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockResponder) StatusQuote(ctx context.Context, activity ai.Activity) (string, error) {
	args := m.Called(ctx, activity)
	return args.String(0), args.Error(1)
}

type fakeVotes struct {
	text string
	err  error
}

func (f fakeVotes) Votes(context.Context) (string, error) {
	return f.text, f.err
}

type fakeStatus struct {
	errorRaised bool
	flashes     int
}

func (f *fakeStatus) SetError(value bool) error {
	f.errorRaised = value
	return nil
}

func (f *fakeStatus) Flash() error {
	f.flashes++
	return nil
}

type fakeDB struct {
	rows []types.Interaction
	err  error
}

func (f *fakeDB) InsertInteraction(_ context.Context, interaction types.Interaction) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, interaction)
	return nil
}

type journalEntry struct {
	user, userMessage, botResponse string
}

type fakeJournal struct {
	entries []journalEntry
}

func (f *fakeJournal) Record(user, userMessage, botResponse string) {
	f.entries = append(f.entries, journalEntry{user, userMessage, botResponse})
}

type testClient struct {
	*Client
	llm       *mockResponder
	status    *fakeStatus
	db        *fakeDB
	journal   *fakeJournal
	shutdowns []string
}

func newTestClient(votes VoteReporter) *testClient {
	tc := &testClient{
		llm:     new(mockResponder),
		status:  &fakeStatus{},
		db:      &fakeDB{},
		journal: &fakeJournal{},
	}
	tc.Client = &Client{
		ownerID:    "111111111111111111",
		memberRole: "MathMind",
		llm:        tc.llm,
		votes:      votes,
		db:         tc.db,
		journal:    tc.journal,
		status:     tc.status,
		shutdown:   func(reason string) { tc.shutdowns = append(tc.shutdowns, reason) },
		logger:     logging.Discard(),
	}
	return tc
}
