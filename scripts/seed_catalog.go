package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type CatalogConfig struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Name  string     `yaml:"name"`
	Email string     `yaml:"email"`
	Items []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

type seedResult struct {
	users, items, skipped int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		catalogPath = flag.String("catalog", "configs/catalog.yaml", "path to catalog.yaml")
		dbPath      = flag.String("db", "data/shareit.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*catalogPath)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var cfg CatalogConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(cfg.Users) == 0 {
		return fmt.Errorf("no users in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(db, &logger)
	bookings := service.NewBookingService(db, events.NewEventBus(), models.DefaultPageSize, &logger)
	items := service.NewItemService(db, bookings, events.NewEventBus(), &logger)

	res, err := seed(ctx, cfg, users, items)
	if err != nil {
		return err
	}

	fmt.Printf("done: users=%d items=%d skipped=%d\n", res.users, res.items, res.skipped)
	return nil
}

// seed creates missing users and their items. Users are matched by e-mail
// and items by name within the owner, so reruns only add what is new.
func seed(ctx context.Context, cfg CatalogConfig, users domain.UserManager, items domain.ItemManager) (seedResult, error) {
	var res seedResult

	existing, err := users.ListUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}
	byEmail := make(map[string]*models.User, len(existing))
	for _, u := range existing {
		byEmail[u.Email] = u
	}

	for _, su := range cfg.Users {
		owner, ok := byEmail[su.Email]
		if !ok {
			owner, err = users.CreateUser(ctx, &models.User{Name: su.Name, Email: su.Email})
			if err != nil {
				return res, fmt.Errorf("create user %s: %w", su.Email, err)
			}
			byEmail[su.Email] = owner
			res.users++
		}

		owned, err := items.ListOwnerItems(ctx, owner.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return res, fmt.Errorf("list items of %s: %w", su.Email, err)
		}
		names := make(map[string]bool, len(owned))
		for _, d := range owned {
			names[d.Name] = true
		}

		for _, si := range su.Items {
			if si.Name == "" || names[si.Name] {
				res.skipped++
				continue
			}
			_, err := items.CreateItem(ctx, owner.ID, &models.Item{
				Name:        si.Name,
				Description: si.Description,
				Available:   si.Available,
			})
			if err != nil {
				return res, fmt.Errorf("create item %s: %w", si.Name, err)
			}
			names[si.Name] = true
			res.items++
		}
	}

	return res, nil
}
