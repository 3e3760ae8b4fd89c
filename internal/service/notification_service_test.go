package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/repository"
)

func newTestNotificationService(t *testing.T) *notificationService {
	t.Helper()
	db := newTestDB(t)
	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		nil,
		"",
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc.(*notificationService)
}

func TestNotificationPublishDeliversToSubscriber(t *testing.T) {
	svc := newTestNotificationService(t)
	ctx := context.Background()

	stream, cleanup := svc.Subscribe(42)
	defer cleanup()
	other, otherCleanup := svc.Subscribe(43)
	defer otherCleanup()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		StudentID: 42,
		Type:      models.NotificationRoadmapReplanned,
		Title:     "<b>Roadmap Updated</b>",
		Body:      "We rescheduled 2 task(s) because 2 task(s) were missed.",
	})
	require.NoError(t, err)
	require.Equal(t, "Roadmap Updated", published.Title)
	require.NotZero(t, published.ID)

	select {
	case received := <-stream:
		require.Equal(t, published.ID, received.ID)
	case <-time.After(time.Second):
		t.Fatal("expected notification on subscriber stream")
	}

	select {
	case <-other:
		t.Fatal("notification leaked to another student")
	default:
	}

	list, err := svc.List(ctx, 42, 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.EqualValues(t, 1, list.UnreadCount)
}

func TestNotificationPublishValidatesPayload(t *testing.T) {
	svc := newTestNotificationService(t)

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		StudentID: 42,
		Type:      models.NotificationDeadlineAlert,
		Title:     "<script></script>",
		Body:      "body",
	})
	require.Error(t, err)
}

func TestNotificationPublishKeepsPlainTextUnescaped(t *testing.T) {
	svc := newTestNotificationService(t)

	resp, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		StudentID: 42,
		Type:      models.NotificationNewlyEligible,
		Title:     "<i>R&D</i> Intern",
		Body:      "Scores < 50% & \"weak\" topics &lt;b&gt;",
	})
	require.NoError(t, err)
	require.Equal(t, "R&D Intern", resp.Title)
	require.Equal(t, "Scores < 50% & \"weak\" topics", resp.Body)
}

func TestNotificationMarkRead(t *testing.T) {
	svc := newTestNotificationService(t)
	ctx := context.Background()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		StudentID: 7,
		Type:      models.NotificationNewlyEligible,
		Title:     "Newly Eligible Opportunity",
		Body:      "You are now eligible for Data Intern at Globex.",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, published.ID, 8)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	updated, err := svc.MarkRead(ctx, published.ID, 7)
	require.NoError(t, err)
	require.True(t, updated.IsRead)

	list, err := svc.List(ctx, 7, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, list.UnreadCount)
}

func TestNotificationHandleEventSkipsOwnNode(t *testing.T) {
	svc := newTestNotificationService(t)
	stream, cleanup := svc.Subscribe(5)
	defer cleanup()

	own, err := json.Marshal(notificationEvent{
		Source:       svc.nodeID,
		Notification: dto.NotificationResponse{ID: 1, StudentID: 5},
	})
	require.NoError(t, err)
	svc.handleEvent(own)

	select {
	case <-stream:
		t.Fatal("own event must not be re-broadcast")
	default:
	}

	remote, err := json.Marshal(notificationEvent{
		Source:       "other-node",
		Notification: dto.NotificationResponse{ID: 2, StudentID: 5},
	})
	require.NoError(t, err)
	svc.handleEvent(remote)

	select {
	case received := <-stream:
		require.EqualValues(t, 2, received.ID)
	case <-time.After(time.Second):
		t.Fatal("expected remote event on stream")
	}

	svc.handleEvent([]byte("not json"))
}

func TestNotificationSubscribeCleanupIsIdempotent(t *testing.T) {
	svc := newTestNotificationService(t)
	stream, cleanup := svc.Subscribe(9)

	cleanup()
	cleanup()

	_, open := <-stream
	require.False(t, open)
}
