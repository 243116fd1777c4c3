package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/utils/ratelimit"
	"github.com/campusjam/CampusJam/utils/snowflake"
)

type messageFixture struct {
	svc       *MessageService
	users     *fakeUserRepo
	social    *SocialService
	sessions  *fakeSessionRepo
	store     *fakeMessageStore
	publisher *fakePublisher
}

func newMessageFixture(t *testing.T, limiter ratelimit.Limiter) *messageFixture {
	t.Helper()
	users := newFakeUserRepo()
	socialRepo := newFakeSocialRepo(users)
	social := NewSocialService(socialRepo, users, nil)
	sessions := newFakeSessionRepo()
	store := &fakeMessageStore{}
	publisher := &fakePublisher{}

	idGen, err := snowflake.NewGenerator(1)
	require.NoError(t, err)

	svc := NewMessageService(store, users, sessions, social, idGen, limiter, 30, publisher)
	return &messageFixture{
		svc:       svc,
		users:     users,
		social:    social,
		sessions:  sessions,
		store:     store,
		publisher: publisher,
	}
}

func TestSendDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and pushes to both parties", func(t *testing.T) {
		f := newMessageFixture(t, allowAllLimiter{})
		alice := f.users.addUser("Alice", "alice@example.com")
		bob := f.users.addUser("Bob", "bob@example.com")

		msg, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{
			RecipientID: bob.ID,
			Content:     "see you at the jam",
		})
		require.NoError(t, err)
		assert.NotZero(t, msg.ID)
		assert.False(t, msg.Read)

		// 双方展开为公共视图，客户端不需要再查用户
		assert.Equal(t, "Alice", msg.Sender.Name)
		assert.Equal(t, "alice@example.com", msg.Sender.Email)
		assert.Equal(t, "Bob", msg.Recipient.Name)

		toBob := f.publisher.eventsFor(bob.ID)
		require.Len(t, toBob, 1)
		assert.Equal(t, EventReceiveMessage, toBob[0].event)
		pushed, ok := toBob[0].payload.(*MessageView)
		require.True(t, ok)
		assert.Equal(t, "Alice", pushed.Sender.Name)

		toAlice := f.publisher.eventsFor(alice.ID)
		require.Len(t, toAlice, 1)
		assert.Equal(t, EventMessageSent, toAlice[0].event)
	})

	t.Run("rejects self, empty and oversized content", func(t *testing.T) {
		f := newMessageFixture(t, allowAllLimiter{})
		alice := f.users.addUser("Alice", "alice@example.com")
		bob := f.users.addUser("Bob", "bob@example.com")

		_, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: alice.ID, Content: "hi"})
		assert.ErrorIs(t, err, ErrSelfAction)

		_, err = f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: bob.ID, Content: ""})
		assert.ErrorIs(t, err, ErrInvalidContent)

		_, err = f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{
			RecipientID: bob.ID,
			Content:     strings.Repeat("x", 2001),
		})
		assert.ErrorIs(t, err, ErrInvalidContent)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newMessageFixture(t, allowAllLimiter{})
		alice := f.users.addUser("Alice", "alice@example.com")

		_, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: 9999, Content: "hi"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("blocked pair cannot message either way", func(t *testing.T) {
		f := newMessageFixture(t, allowAllLimiter{})
		alice := f.users.addUser("Alice", "alice@example.com")
		bob := f.users.addUser("Bob", "bob@example.com")
		require.NoError(t, f.social.Block(alice.ID, bob.ID))

		_, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: bob.ID, Content: "hi"})
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = f.svc.SendDirect(ctx, bob.ID, &SendDirectRequest{RecipientID: alice.ID, Content: "hi"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("rate limited", func(t *testing.T) {
		f := newMessageFixture(t, denyAllLimiter{})
		alice := f.users.addUser("Alice", "alice@example.com")
		bob := f.users.addUser("Bob", "bob@example.com")

		_, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: bob.ID, Content: "hi"})
		assert.ErrorIs(t, err, ErrRateLimited)
		// 被限流的消息不落库
		msgs, _ := f.store.GetDirectBetween(alice.ID, bob.ID)
		assert.Empty(t, msgs)
	})
}

func TestGetConversations(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, allowAllLimiter{})
	alice := f.users.addUser("Alice", "alice@example.com")
	bob := f.users.addUser("Bob", "bob@example.com")
	carol := f.users.addUser("Carol", "carol@example.com")

	send := func(from, to uint, content string) {
		t.Helper()
		_, err := f.svc.SendDirect(ctx, from, &SendDirectRequest{RecipientID: to, Content: content})
		require.NoError(t, err)
	}

	send(alice.ID, bob.ID, "first to bob")
	send(bob.ID, alice.ID, "bob replies")
	send(alice.ID, carol.ID, "hello carol")

	conversations, err := f.svc.GetConversations(alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// 最近的会话在前，每个会话只保留最新一条，对话对象展开
	assert.Equal(t, carol.ID, conversations[0].Counterpart.ID)
	assert.Equal(t, "Carol", conversations[0].Counterpart.Name)
	assert.Equal(t, "carol@example.com", conversations[0].Counterpart.Email)
	assert.Equal(t, "hello carol", conversations[0].LastMessage.Content)
	assert.Equal(t, bob.ID, conversations[1].Counterpart.ID)
	assert.Equal(t, "bob replies", conversations[1].LastMessage.Content)
	// 最新一条是 bob 发来的，发送方视图应指向 bob
	assert.Equal(t, "Bob", conversations[1].LastMessage.Sender.Name)
	assert.Equal(t, "Alice", conversations[1].LastMessage.Recipient.Name)
}

func TestGetDirectMessagesExpandsParties(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, allowAllLimiter{})
	alice := f.users.addUser("Alice", "alice@example.com")
	bob := f.users.addUser("Bob", "bob@example.com")

	_, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: bob.ID, Content: "hello"})
	require.NoError(t, err)
	_, err = f.svc.SendDirect(ctx, bob.ID, &SendDirectRequest{RecipientID: alice.ID, Content: "hi back"})
	require.NoError(t, err)

	messages, err := f.svc.GetDirectMessages(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Alice", messages[0].Sender.Name)
	assert.Equal(t, "bob@example.com", messages[0].Recipient.Email)
	assert.Equal(t, "Bob", messages[1].Sender.Name)
	assert.Equal(t, "Alice", messages[1].Recipient.Name)
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, allowAllLimiter{})
	alice := f.users.addUser("Alice", "alice@example.com")
	bob := f.users.addUser("Bob", "bob@example.com")

	for _, content := range []string{"one", "two", "three"} {
		_, err := f.svc.SendDirect(ctx, alice.ID, &SendDirectRequest{RecipientID: bob.ID, Content: content})
		require.NoError(t, err)
	}

	updated, err := f.svc.MarkAsRead(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	// 重复调用幂等，无新增更新
	updated, err = f.svc.MarkAsRead(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestSessionMessages(t *testing.T) {
	f := newMessageFixture(t, allowAllLimiter{})
	alice := f.users.addUser("Alice", "alice@example.com")
	bob := f.users.addUser("Bob", "bob@example.com")

	session := &models.Session{Title: "Friday jam", HostID: alice.ID, IsPublic: true, Status: models.SessionScheduled}
	require.NoError(t, f.sessions.Create(session))

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.svc.SendSessionMessage(alice.ID, 9999, &SendSessionMessageRequest{Content: "hi"})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("non-attendee cannot post or read", func(t *testing.T) {
		_, err := f.svc.SendSessionMessage(bob.ID, session.ID, &SendSessionMessageRequest{Content: "hi"})
		assert.ErrorIs(t, err, ErrNotAttendee)

		_, err = f.svc.GetSessionMessages(session.ID, bob.ID)
		assert.ErrorIs(t, err, ErrNotAttendee)
	})

	t.Run("host posts without joining the attendee list", func(t *testing.T) {
		attendee, err := f.sessions.IsAttendee(session.ID, alice.ID)
		require.NoError(t, err)
		require.False(t, attendee)

		msg, err := f.svc.SendSessionMessage(alice.ID, session.ID, &SendSessionMessageRequest{Content: "tuning up"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", msg.Sender.Name)
	})

	t.Run("attendees post and read in order", func(t *testing.T) {
		require.NoError(t, f.sessions.AddAttendee(session.ID, bob.ID))

		_, err := f.svc.SendSessionMessage(bob.ID, session.ID, &SendSessionMessageRequest{Content: "ready when you are"})
		require.NoError(t, err)

		messages, err := f.svc.GetSessionMessages(session.ID, bob.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "tuning up", messages[0].Content)
		assert.Equal(t, "Alice", messages[0].Sender.Name)
		assert.Equal(t, "ready when you are", messages[1].Content)
		assert.Equal(t, "Bob", messages[1].Sender.Name)
	})
}
