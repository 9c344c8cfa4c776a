package seed

import (
	"database/sql"
	"fmt"

	"github.com/raphaelsaraiva17/FeraFreshROI/internal/auth"
	"github.com/raphaelsaraiva17/FeraFreshROI/internal/roi"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string

	// Defaults is the herd snapshot (economics + health-event catalog)
	// installed on first boot: built-in values, possibly merged with the
	// operator's catalog file.
	Defaults roi.Inputs
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. Existing rows are
// never overwritten: admin edits made through the UI survive restarts.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureDefaults(tx, cfg.Defaults, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCatalog(tx, cfg.Defaults.HealthEvents, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, auth.HashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureDefaults(tx *sql.Tx, defaults roi.Inputs, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM calc_defaults WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check calc defaults existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO calc_defaults (
			id,
			milking_cows,
			replacement_cost,
			salvage_value,
			milk_price,
			lb_milk_per_lb_dm,
			dm_cost,
			death_events,
			sold_events
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		defaults.MilkingCows,
		defaults.ReplacementCost,
		defaults.SalvageValue,
		defaults.MilkPrice,
		defaults.LbMilkPerLbDM,
		defaults.DMCost,
		defaults.DeathEvents,
		defaults.SoldEvents,
	); err != nil {
		return fmt.Errorf("insert calc defaults singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureCatalog(tx *sql.Tx, events []roi.HealthEvent, stats *Stats) error {
	for position, ev := range events {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM health_event_catalog WHERE key = ? LIMIT 1)`, ev.Key).Scan(&exists); err != nil {
			return fmt.Errorf("check catalog entry %q: %w", ev.Key, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO health_event_catalog (key, name, cost_per_event, default_count, active, position)
			VALUES (?, ?, ?, ?, TRUE, ?)
		`, ev.Key, ev.Name, ev.CostPerEvent, ev.Count, position); err != nil {
			return fmt.Errorf("insert catalog entry %q: %w", ev.Key, err)
		}
		stats.Inserts++
	}
	return nil
}
