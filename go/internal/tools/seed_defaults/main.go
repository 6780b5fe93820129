package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/courtclock/go/internal/config"
	"github.com/mcdev12/courtclock/go/internal/dbconfig"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/storage"
)

// seed_defaults creates the Postgres key/value table and writes the match
// defaults from the YAML config. Existing keys are left alone.
func main() {
	ctx := context.Background()

	// 1) Load defaults
	path := os.Getenv("COURTCLOCK_CONFIG")
	if path == "" {
		path = "courtclock.yaml"
	}
	defaults, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, storage.PostgresSchema); err != nil {
		fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Insert records that are not there yet
	records := []struct {
		key   string
		value any
	}{
		{storage.KeySettings, defaults.Settings},
		{storage.KeyHomeTeam, defaults.HomeTeam},
		{storage.KeyGuestTeam, defaults.GuestTeam},
		{storage.KeyProfiles, presetProfiles(defaults, time.Now())},
	}

	var inserted, skipped, errs int
	for _, rec := range records {
		data, err := json.Marshal(rec.value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal %s: %v\n", rec.key, err)
			errs++
			continue
		}
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO courtclock_kv (key, value, updated_at)
            VALUES ($1, $2::jsonb, now())
            ON CONFLICT (key) DO NOTHING
        `, rec.key, string(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting %s: %v\n", rec.key, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Defaults seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		len(records), inserted, skipped, errs,
	)
	if errs > 0 {
		os.Exit(1)
	}
}

// presetProfiles turns each configured preset into a saved profile.
func presetProfiles(defaults config.File, now time.Time) []models.SettingsProfile {
	profiles := make([]models.SettingsProfile, 0, len(defaults.Presets))
	for _, p := range defaults.Presets {
		profiles = append(profiles, models.SettingsProfile{
			ID:          uuid.NewString(),
			ProfileName: p.Name,
			CreatedAt:   now.UnixMilli(),
			Settings:    p.Apply(defaults.Settings),
			HomeTeam:    defaults.HomeTeam,
			GuestTeam:   defaults.GuestTeam,
		})
	}
	return profiles
}
