package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/playground/bountyhub/internal/config"
	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/domain/hunter"
	"github.com/playground/bountyhub/internal/infra/ai/gemini"
	aiopenai "github.com/playground/bountyhub/internal/infra/ai/openai"
	mysqlp "github.com/playground/bountyhub/internal/infra/db/mysql"
	pgp "github.com/playground/bountyhub/internal/infra/db/postgres"
)

// repositories is the set of store adapters for one driver
type repositories struct {
	bounties bounty.Repository
	profiles hunter.Repository
	failures hunter.FailureRepository
}

func openDB(ctx context.Context, c *config.Config) (*sql.DB, error) {
	switch c.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, c.DSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect error: %w", err)
		}
		return db, nil
	default:
		db, err := pgp.Connect(ctx, c.DSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect error: %w", err)
		}
		return db, nil
	}
}

func newRepositories(c *config.Config, db *sql.DB) repositories {
	if c.Database.Driver == "mysql" {
		return repositories{
			bounties: mysqlp.NewBountyRepository(db),
			profiles: mysqlp.NewHunterRepository(db),
			failures: mysqlp.NewFailureRepository(db),
		}
	}
	return repositories{
		bounties: pgp.NewBountyRepository(db),
		profiles: pgp.NewHunterRepository(db),
		failures: pgp.NewFailureRepository(db),
	}
}

func migrate(ctx context.Context, c *config.Config, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if c.Database.Driver == "mysql" {
		return mysqlp.Migrate(ctx, db)
	}
	return pgp.Migrate(ctx, db)
}

// newAIClient picks the analyzer backend. Credentials come only from config.
func newAIClient(ctx context.Context, c *config.Config) (ai.Client, error) {
	switch c.AI.Provider {
	case "gemini":
		return gemini.NewClient(ctx, c.AI.APIKey, c.AI.Model, c.AI.Timeout)
	default:
		return aiopenai.NewClient(aiopenai.Config{
			APIKey:    c.AI.APIKey,
			BaseURL:   c.AI.BaseURL,
			Model:     c.AI.Model,
			MaxTokens: c.AI.MaxTokens,
			Timeout:   c.AI.Timeout,
		}), nil
	}
}
