package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clash-tracker/internal/domain"
	"clash-tracker/internal/repository"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
)

var (
	ErrSaveFailed     = errors.New("failed to save profile")
	ErrCommitFailed   = errors.New("failed to commit profile changes")
	ErrDecodingFailed = errors.New("failed to decode stored profile")
	ErrNoProfile      = errors.New("no profile saved")
)

type ProfileRepository interface {
	Replace(ctx context.Context, p *domain.StoredProfile) error
	Latest(ctx context.Context) (*domain.StoredProfile, error)
	Count(ctx context.Context) (int, error)
	Tags(ctx context.Context) ([]string, error)
	DeleteAll(ctx context.Context) error
}

// ProfileStore keeps the single saved profile. Reads are served from an
// in-memory mirror that only ever reflects a durably committed row.
// Returned snapshots are shared and must not be modified.
type ProfileStore struct {
	repo   ProfileRepository
	logger zerolog.Logger
	now    func() time.Time

	// writeMu serializes every durable access that may touch the mirror.
	writeMu sync.Mutex

	mu     sync.RWMutex
	cached *domain.PlayerSnapshot
}

func NewProfileStore(repo *repository.ProfileRepository, logger zerolog.Logger) *ProfileStore {
	return newProfileStore(repo, logger)
}

func newProfileStore(repo ProfileRepository, logger zerolog.Logger) *ProfileStore {
	return &ProfileStore{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SaveProfile replaces whatever profile is stored with player.
func (s *ProfileStore) SaveProfile(ctx context.Context, player *domain.PlayerSnapshot) error {
	if player == nil {
		return fmt.Errorf("%w: nil snapshot", ErrSaveFailed)
	}

	data, err := sonic.Marshal(player)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", ErrSaveFailed, err)
	}

	row := &domain.StoredProfile{
		Tag:               player.PlayerTag,
		Name:              player.PlayerName,
		ExpLevel:          player.ExpLevel,
		Trophies:          player.Trophies,
		BestTrophies:      player.BestTrophies(),
		TownHallLevel:     player.TownHallLevel,
		WarStars:          player.WarStars,
		Donations:         player.Donations,
		DonationsReceived: player.DonationsReceived,
		LastUpdated:       s.now(),
		Snapshot:          data,
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Replace(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("tag", player.PlayerTag).Msg("failed to save profile")
		if errors.Is(err, repository.ErrCommit) {
			return fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if err := s.verify(ctx, player.PlayerTag); err != nil {
		s.setCached(nil)
		s.logger.Error().Err(err).Str("tag", player.PlayerTag).Msg("profile verification failed after commit")
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.setCached(player)
	s.logger.Info().Str("tag", player.PlayerTag).Msg("profile saved")
	return nil
}

func (s *ProfileStore) verify(ctx context.Context, tag string) error {
	tags, err := s.repo.Tags(ctx)
	if err != nil {
		return err
	}
	if len(tags) != 1 || tags[0] != tag {
		return fmt.Errorf("expected exactly one profile %s, found %v", tag, tags)
	}
	return nil
}

// GetProfile returns the saved profile, or nil when none is saved. With
// forceRefresh the mirror is ignored and reloaded from storage.
func (s *ProfileStore) GetProfile(ctx context.Context, forceRefresh bool) (*domain.PlayerSnapshot, error) {
	if !forceRefresh {
		if p := s.cachedProfile(); p != nil {
			return p, nil
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	row, err := s.repo.Latest(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read profile")
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if row == nil {
		s.setCached(nil)
		return nil, nil
	}

	var player domain.PlayerSnapshot
	if err := sonic.Unmarshal(row.Snapshot, &player); err != nil {
		s.setCached(nil)
		s.logger.Error().Err(err).Str("tag", row.Tag).Msg("stored profile is not decodable")
		return nil, fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	s.setCached(&player)
	return &player, nil
}

// HasProfile never fails; storage errors read as "no profile".
func (s *ProfileStore) HasProfile(ctx context.Context) bool {
	if s.cachedProfile() != nil {
		return true
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count profiles")
		return false
	}
	return n > 0
}

// DeleteProfile removes every stored profile, not just the expected one.
func (s *ProfileStore) DeleteProfile(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete profile")
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	s.setCached(nil)
	s.logger.Info().Msg("profile deleted")
	return nil
}

// LastUpdated reports when the stored profile was written.
func (s *ProfileStore) LastUpdated(ctx context.Context) (time.Time, error) {
	row, err := s.repo.Latest(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read profile: %w", err)
	}
	if row == nil {
		return time.Time{}, ErrNoProfile
	}
	return row.LastUpdated, nil
}

func (s *ProfileStore) cachedProfile() *domain.PlayerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

func (s *ProfileStore) setCached(p *domain.PlayerSnapshot) {
	s.mu.Lock()
	s.cached = p
	s.mu.Unlock()
}
