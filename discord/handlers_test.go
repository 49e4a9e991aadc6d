package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/Soypete/mathy-bot/ai"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var botUser = &discordgo.User{ID: "999999999999999999", Username: "MathMinds Bot", Bot: true}

func mentionMessage(authorID, content string, extra ...*discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "ramanujan", Discriminator: "0"},
		Mentions:  append([]*discordgo.User{botUser}, extra...),
	}}
}

func TestOnMessageAnswersMention(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	api := &fakeAPI{}
	friend := &discordgo.User{ID: "222222222222222222", Username: "hardy"}

	tc.llm.On("Respond", mock.Anything, "333333333333333333", "ramanujan", "is 1729 special? ask <@222222222222222222>").
		Return("yes bestie, taxicab number 🚕", nil).Once()

	tc.onMessage(context.Background(), api, botUser,
		mentionMessage("333333333333333333", "<@999999999999999999> is 1729 special? ask <@222222222222222222>", friend))

	require.Len(t, api.sent, 1)
	assert.Equal(t, "yes bestie, taxicab number 🚕", api.sent[0].content)
	assert.Equal(t, 1, api.typing)
	assert.Equal(t, 1, tc.status.flashes)
	assert.False(t, tc.status.errorRaised)

	require.Len(t, tc.db.rows, 1)
	assert.Equal(t, int64(333333333333333333), tc.db.rows[0].UserID)
	assert.Equal(t, "@Mathy is 1729 special? ask @hardy", tc.db.rows[0].Question)

	require.Len(t, tc.journal.entries, 1)
	assert.Equal(t, "ramanujan", tc.journal.entries[0].user)
	tc.llm.AssertExpectations(t)
}

func TestOnMessageIgnoresUnaddressed(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	api := &fakeAPI{}

	msg := mentionMessage("333333333333333333", "just chatting")
	msg.Mentions = nil
	tc.onMessage(context.Background(), api, botUser, msg)

	own := mentionMessage(botUser.ID, "<@999999999999999999> talking to myself")
	tc.onMessage(context.Background(), api, botUser, own)

	assert.Empty(t, api.sent)
	tc.llm.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnMessageShowsErrorToUser(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	api := &fakeAPI{}
	tc.llm.On("Respond", mock.Anything, mock.Anything, mock.Anything, "help").
		Return("", errors.New("quota exceeded")).Once()

	tc.onMessage(context.Background(), api, botUser, mentionMessage("333333333333333333", "<@999999999999999999> help"))

	require.Len(t, api.sent, 1)
	assert.Equal(t, "❌ Error generating response: quota exceeded", api.sent[0].content)
	assert.True(t, tc.status.errorRaised)
	assert.Empty(t, tc.db.rows)
	assert.Len(t, tc.journal.entries, 1)
}

func TestOnMessageStoreFailureStillReplies(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	tc.db.err = errors.New("db down")
	api := &fakeAPI{}
	tc.llm.On("Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("42", nil).Once()

	tc.onMessage(context.Background(), api, botUser, mentionMessage("333333333333333333", "<@999999999999999999> meaning of life"))

	require.Len(t, api.sent, 1)
	assert.Equal(t, "42", api.sent[0].content)
	assert.True(t, tc.status.errorRaised)
}

func TestMentionCommands(t *testing.T) {
	tc := newTestClient(fakeVotes{text: "**Current votes:**\n🇦 : 2\n"})
	api := &fakeAPI{}

	tc.onMessage(context.Background(), api, botUser, mentionMessage("333333333333333333", "<@999999999999999999> votes"))
	tc.onMessage(context.Background(), api, botUser, mentionMessage("333333333333333333", "<@999999999999999999> restart"))
	tc.onMessage(context.Background(), api, botUser, mentionMessage("111111111111111111", "<@999999999999999999> restart"))

	require.Len(t, api.sent, 3)
	assert.Equal(t, "**Current votes:**\n🇦 : 2\n", api.sent[0].content)
	assert.Equal(t, restartDenied, api.sent[1].content)
	assert.Equal(t, restartAccepted, api.sent[2].content)
	assert.Len(t, tc.shutdowns, 1)
	tc.llm.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func commandInteraction(name, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Data:   discordgo.ApplicationCommandInteractionData{Name: name},
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
	}}
}

func TestOnInteraction(t *testing.T) {
	tests := []struct {
		name         string
		command      string
		userID       string
		votes        fakeVotes
		wantContent  string
		wantShutdown bool
	}{
		{name: "help", command: "help", userID: "1", wantContent: helpText},
		{name: "votes", command: "votes", userID: "1", votes: fakeVotes{text: "No votes yet!"}, wantContent: "No votes yet!"},
		{name: "votes error", command: "votes", userID: "1", votes: fakeVotes{err: errors.New("unknown message")}, wantContent: "❌ Could not fetch votes right now. Try again in a bit."},
		{name: "restart denied", command: "restart", userID: "1", wantContent: restartDenied},
		{name: "restart owner", command: "restart", userID: "111111111111111111", wantContent: restartAccepted, wantShutdown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClient(tt.votes)
			api := &fakeAPI{}

			tc.onInteraction(context.Background(), api, commandInteraction(tt.command, tt.userID))

			require.Len(t, api.responses, 1)
			assert.Equal(t, tt.wantContent, api.responses[0].Data.Content)
			assert.Equal(t, tt.wantShutdown, len(tc.shutdowns) == 1)
		})
	}
}

func TestRestartWithoutOwner(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	tc.ownerID = ""
	reply, ok := tc.restartReply("")
	assert.False(t, ok)
	assert.Equal(t, restartDenied, reply)
}

func TestOnMemberJoin(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	api := &fakeAPI{roles: []*discordgo.Role{{ID: "r1", Name: "Admin"}, {ID: "r2", Name: "MathMind"}}}

	tc.onMemberJoin(api, &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u1", Username: "newbie"},
	}})
	assert.Equal(t, []string{"u1:r2"}, api.roleAdds)

	api = &fakeAPI{roles: []*discordgo.Role{{ID: "r1", Name: "Admin"}}}
	tc.onMemberJoin(api, &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u2", Username: "other"},
	}})
	assert.Empty(t, api.roleAdds)
}

type fakePresence struct {
	updates []discordgo.UpdateStatusData
}

func (f *fakePresence) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	f.updates = append(f.updates, usd)
	return nil
}

func TestSetPresence(t *testing.T) {
	tc := newTestClient(fakeVotes{})
	tc.llm.On("StatusQuote", mock.Anything, ai.ActivityListening).Return("the sound of π 🥧", nil).Once()

	presence := &fakePresence{}
	tc.setPresence(context.Background(), presence, ai.ActivityListening)

	require.Len(t, presence.updates, 1)
	require.Len(t, presence.updates[0].Activities, 1)
	assert.Equal(t, "the sound of π 🥧", presence.updates[0].Activities[0].Name)
	assert.Equal(t, discordgo.ActivityTypeListening, presence.updates[0].Activities[0].Type)

	tc.llm.On("StatusQuote", mock.Anything, ai.ActivityWatching).Return("", errors.New("boom")).Once()
	tc.setPresence(context.Background(), presence, ai.ActivityWatching)
	assert.Len(t, presence.updates, 1)
	assert.True(t, tc.status.errorRaised)
}

func TestSetupValidatesOptions(t *testing.T) {
	_, err := Setup(Options{Token: "x"})
	assert.Error(t, err)

	c, err := Setup(Options{
		Token:    "x",
		LLM:      new(mockResponder),
		Votes:    fakeVotes{},
		Shutdown: func(string) {},
	})
	require.NoError(t, err)
	assert.NotNil(t, c.DailyChannel("chan"))
	assert.Equal(t, 3, len(SlashCommands()))
}
