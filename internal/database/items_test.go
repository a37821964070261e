package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	got, err := db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", got.Name)
	assert.True(t, got.Available)
	assert.Nil(t, got.RequestID)

	got.Available = false
	got.Description = "Broken"
	require.NoError(t, db.UpdateItem(ctx, got))

	got, err = db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, "Broken", got.Description)

	require.NoError(t, db.DeleteItem(ctx, item.ID))
	_, err = db.GetItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, db.DeleteItem(ctx, item.ID), domain.ErrNotFound)
}

func TestListItemsByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	other := seedUser(t, db, "Other", "other@example.com")
	first := seedItem(t, db, owner.ID, "Saw", true)
	seedItem(t, db, other.ID, "Hammer", true)
	second := seedItem(t, db, owner.ID, "Ladder", false)

	items, err := db.ListItemsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestSearchAvailableItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	drill := seedItem(t, db, owner.ID, "Cordless DRILL", true)
	seedItem(t, db, owner.ID, "Old drill", false)
	seedItem(t, db, owner.ID, "100% cotton tent", true)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"case insensitive", "drill", 1},
		{"description match", "cordless drill description", 1},
		{"percent is literal", "100%", 1},
		{"underscore is literal", "_", 0},
		{"no match", "boat", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := db.SearchAvailableItems(ctx, tt.text)
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}

	items, err := db.SearchAvailableItems(ctx, "DrIlL")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, drill.ID, items[0].ID)
}

func TestListItemsByRequest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := seedUser(t, db, "Req", "req@example.com")
	owner := seedUser(t, db, "Owner", "owner@example.com")
	req := &models.ItemRequest{Description: "Need a drill", RequestorID: requestor.ID, Created: time.Now()}
	require.NoError(t, db.CreateRequest(ctx, req))

	answer := &models.Item{Name: "Drill", Description: "d", Available: true, OwnerID: owner.ID, RequestID: &req.ID}
	require.NoError(t, db.CreateItem(ctx, answer))
	seedItem(t, db, owner.ID, "Unrelated", true)

	items, err := db.ListItemsByRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.RequestItem{ID: answer.ID, Name: "Drill", OwnerID: owner.ID}, items[0])
}
