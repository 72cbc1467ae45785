package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByIDMutatorsReportMissingRows(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, mem.MarkNotificationRead(ctx, 42), ErrNotFound)
	assert.ErrorIs(t, mem.DeleteNotification(ctx, 42), ErrNotFound)

	n, err := mem.CreateNotification(ctx, 1, "hello")
	require.NoError(t, err)

	require.NoError(t, mem.DeleteNotification(ctx, n.ID))
	assert.ErrorIs(t, mem.DeleteNotification(ctx, n.ID), ErrNotFound)
}

func TestDeletePushSubscriptionStaysIdempotent(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	// Unlike notification deletes, removing an absent subscription is a no-op
	assert.NoError(t, mem.DeletePushSubscription(ctx, 1))

	require.NoError(t, mem.SavePushSubscription(ctx, 1, "https://push.example.com/a", "p", "a"))
	assert.NoError(t, mem.DeletePushSubscription(ctx, 1))
	assert.NoError(t, mem.DeletePushSubscription(ctx, 1))
}
