package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clash-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ErrCommit marks a failure of the final commit, as opposed to the statements
// inside the transaction.
var ErrCommit = errors.New("commit failed")

type profileRow struct {
	ID                string    `db:"id"`
	Tag               string    `db:"tag"`
	Name              string    `db:"name"`
	ExpLevel          int64     `db:"exp_level"`
	Trophies          int64     `db:"trophies"`
	BestTrophies      int64     `db:"best_trophies"`
	TownHallLevel     int64     `db:"town_hall_level"`
	WarStars          int64     `db:"war_stars"`
	Donations         int64     `db:"donations"`
	DonationsReceived int64     `db:"donations_received"`
	LastUpdated       time.Time `db:"last_updated"`
	Snapshot          []byte    `db:"snapshot"`
}

const profileColumns = `id, tag, name, exp_level, trophies, best_trophies, town_hall_level,
	war_stars, donations, donations_received, last_updated, snapshot`

type ProfileRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewProfileRepository(db *sqlx.DB, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Replace deletes every stored profile and inserts p in a single transaction.
func (r *ProfileRepository) Replace(ctx context.Context, p *domain.StoredProfile) error {
	if p.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		p.ID = id
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM profiles`)
	if err != nil {
		return fmt.Errorf("failed to delete existing profiles: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.logger.Debug().Int64("rows", n).Msg("removed previous profile")
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (:id, :tag, :name, :exp_level, :trophies, :best_trophies, :town_hall_level,
			:war_stars, :donations, :donations_received, :last_updated, :snapshot)
	`, toRow(p))
	if err != nil {
		return fmt.Errorf("failed to insert profile %s: %w", p.Tag, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	return nil
}

// Latest returns the most recently updated profile, or (nil, nil) when none is stored.
func (r *ProfileRepository) Latest(ctx context.Context) (*domain.StoredProfile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+profileColumns+`
		FROM profiles
		ORDER BY last_updated DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest profile: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles`); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

// Tags lists every stored tag. Used to verify a write actually landed.
func (r *ProfileRepository) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := r.db.SelectContext(ctx, &tags, `SELECT tag FROM profiles`); err != nil {
		return nil, fmt.Errorf("failed to list profile tags: %w", err)
	}
	return tags, nil
}

func (r *ProfileRepository) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles`); err != nil {
		return fmt.Errorf("failed to delete profiles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	return nil
}

func toRow(p *domain.StoredProfile) profileRow {
	return profileRow{
		ID:                p.ID,
		Tag:               p.Tag,
		Name:              p.Name,
		ExpLevel:          int64(p.ExpLevel),
		Trophies:          int64(p.Trophies),
		BestTrophies:      int64(p.BestTrophies),
		TownHallLevel:     int64(p.TownHallLevel),
		WarStars:          int64(p.WarStars),
		Donations:         int64(p.Donations),
		DonationsReceived: int64(p.DonationsReceived),
		LastUpdated:       p.LastUpdated.UTC(),
		Snapshot:          p.Snapshot,
	}
}

func (row profileRow) toDomain() *domain.StoredProfile {
	return &domain.StoredProfile{
		ID:                row.ID,
		Tag:               row.Tag,
		Name:              row.Name,
		ExpLevel:          int(row.ExpLevel),
		Trophies:          int(row.Trophies),
		BestTrophies:      int(row.BestTrophies),
		TownHallLevel:     int(row.TownHallLevel),
		WarStars:          int(row.WarStars),
		Donations:         int(row.Donations),
		DonationsReceived: int(row.DonationsReceived),
		LastUpdated:       row.LastUpdated,
		Snapshot:          row.Snapshot,
	}
}
