package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
)

func TestChatRetrieveOrdersAndCountsUnread(t *testing.T) {
	svc := NewChatService(newMemoryBackend(t), nil)

	thread, err := svc.Retrieve(context.Background(), employee, "INC-1001")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "msg-1", thread.Messages[0].ID)
	assert.Equal(t, 1, thread.Unread)

	thread, err = svc.Retrieve(context.Background(), admin, "INC-1001")
	require.NoError(t, err)
	assert.Equal(t, 2, thread.Unread)
}

func TestChatAccessIsLimitedToParticipants(t *testing.T) {
	svc := NewChatService(newMemoryBackend(t), nil)

	_, err := svc.Retrieve(context.Background(), supportHR, "INC-1001")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	_, err = svc.Post(context.Background(), supportHR, "INC-1001", "hello")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestChatPostAppendsAndPublishes(t *testing.T) {
	dispatcher := newDispatcher()
	log := captureEvents(dispatcher, events.EventChatMessagePosted)
	svc := NewChatService(newMemoryBackend(t), dispatcher)
	ctx := context.Background()

	posted, err := svc.Post(ctx, supportIT, "INC-1001", "  Try reinstalling the client.  ")
	require.NoError(t, err)
	assert.Equal(t, "Try reinstalling the client.", posted.Message)
	assert.Equal(t, domain.RoleSupport, posted.SenderRole)
	assert.Equal(t, "Omar Ortiz", posted.SenderName)

	thread, err := svc.Retrieve(ctx, employee, "INC-1001")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 3)
	assert.Equal(t, posted.ID, thread.Messages[2].ID)

	require.Len(t, log.all(), 1)
	assert.Equal(t, "INC-1001", log.all()[0].IncidentID)
}

func TestChatPostValidatesText(t *testing.T) {
	svc := NewChatService(newMemoryBackend(t), nil)

	_, err := svc.Post(context.Background(), employee, "INC-1001", "   ")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = svc.Post(context.Background(), employee, "INC-1001", strings.Repeat("a", maxMessageLength+1))
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestAssistantReplies(t *testing.T) {
	a := Assistant{}

	assert.Contains(t, a.Reply("I forgot my PASSWORD"), "sign-in")
	assert.Contains(t, a.Reply("hi, my VPN keeps dropping"), "IT")
	assert.Contains(t, a.Reply("When is payday? my payslip is wrong"), "HR")
	assert.Contains(t, a.Reply("there is a leak in room 4"), "Facilities")
	assert.Equal(t, fallbackReply, a.Reply("xyzzy"))
	assert.Equal(t, fallbackReply, a.Reply(""))
}

func TestAssistantMatchesWholeWords(t *testing.T) {
	a := Assistant{}

	assert.Equal(t, fallbackReply, a.Reply("my desktop will not boot"))
	assert.Equal(t, fallbackReply, a.Reply("how do I highlight text"))
	assert.Equal(t, fallbackReply, a.Reply("outdoor seating is closed"))
	assert.Contains(t, a.Reply("the lights are flickering"), "Facilities")
	assert.Contains(t, a.Reply("the sink is leaking"), "Facilities")
	assert.Contains(t, a.Reply("I cannot sign in today"), "sign-in")
}
