package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/slot-matcher/internal/audit"
	"github.com/mauv0809/slot-matcher/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStore_AppendAndList(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	store := audit.NewStore(db)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, audit.WorkflowEvent{
		ID: "e1", Type: "first-match", Date: "2025-06-01", Time: "19:00",
		TeamIDs: []string{"h", "g1"}, Message: "ok", CreatedAt: base,
	}))
	require.NoError(t, store.Append(ctx, audit.WorkflowEvent{
		ID: "e2", Type: "next-step", Date: "2025-06-01", Time: "19:00",
		Warnings: []string{"PAYMENT_REQUEST 발송 실패"}, CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, store.Append(ctx, audit.WorkflowEvent{
		Type: "remove-team", Date: "2025-06-02", Time: "20:00", Error: "team not found",
		CreatedAt: base.Add(2 * time.Minute),
	}))

	events, err := store.List(ctx, "2025-06-01", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID, "newest first")
	assert.Equal(t, []string{"PAYMENT_REQUEST 발송 실패"}, events[0].Warnings)
	assert.Equal(t, []string{}, events[0].TeamIDs)
	assert.Equal(t, []string{"h", "g1"}, events[1].TeamIDs)
	assert.True(t, base.Equal(events[1].CreatedAt))

	all, err := store.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "remove-team", all[0].Type)
	assert.Equal(t, "team not found", all[0].Error)
	assert.NotEmpty(t, all[0].ID, "ids are generated when missing")
}

func TestEventStore_AppendIsIdempotentByID(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	store := audit.NewStore(db)
	e := audit.WorkflowEvent{ID: "dup", Type: "final-match", Date: "2025-06-01", Time: "19:00"}
	require.NoError(t, store.Append(context.Background(), e))
	require.NoError(t, store.Append(context.Background(), e))

	events, err := store.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
