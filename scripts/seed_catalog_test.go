package main

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const catalogYAML = `
users:
  - name: Ann
    email: ann@example.com
    items:
      - name: Drill
        description: Cordless drill
        available: true
      - name: Ladder
        description: Three metres
        available: false
  - name: Bob
    email: bob@example.com
    items:
      - name: Tent
        description: Two person tent
        available: true
`

func TestSeedIsIdempotent(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	var cfg CatalogConfig
	require.NoError(t, yaml.Unmarshal([]byte(catalogYAML), &cfg))

	users := service.NewUserService(db, &logger)
	bookings := service.NewBookingService(db, events.NewEventBus(), models.DefaultPageSize, &logger)
	items := service.NewItemService(db, bookings, events.NewEventBus(), &logger)
	ctx := context.Background()

	res, err := seed(ctx, cfg, users, items)
	require.NoError(t, err)
	assert.Equal(t, seedResult{users: 2, items: 3}, res)

	res, err = seed(ctx, cfg, users, items)
	require.NoError(t, err)
	assert.Equal(t, seedResult{skipped: 3}, res)

	found, err := items.SearchItems(ctx, "tent")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = items.SearchItems(ctx, "ladder")
	require.NoError(t, err)
	assert.Empty(t, found, "unavailable items are not searchable")
}
