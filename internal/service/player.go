package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clash-tracker/internal/constants"
	"clash-tracker/internal/domain"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyTag = errors.New("please enter a player tag")
	ErrNoPlayer = errors.New("no player to save")
)

type PlayerClient interface {
	FetchPlayer(ctx context.Context, tag string) (*domain.PlayerSnapshot, error)
	ForceRefresh(ctx context.Context, tag string) (*domain.PlayerSnapshot, error)
}

// ProfileListener is told about profile changes made outside the profile
// screen, so it can show them without fetching again. ProfileChanging comes
// before the durable write and must stop older refreshes from persisting.
type ProfileListener interface {
	ProfileChanging()
	ProfileSaved(player *domain.PlayerSnapshot)
	ProfileDeleted()
}

// PlayerService backs the search and settings flows. Unlike the background
// refresh on the profile screen, every error here is returned to the caller.
type PlayerService struct {
	client   PlayerClient
	store    *ProfileStore
	listener ProfileListener
	logger   zerolog.Logger
}

func NewPlayerService(client PlayerClient, store *ProfileStore, listener ProfileListener, logger zerolog.Logger) *PlayerService {
	return &PlayerService{client: client, store: store, listener: listener, logger: logger}
}

func (s *PlayerService) Search(ctx context.Context, tag string) (*domain.PlayerSnapshot, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, ErrEmptyTag
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	s.logger.Info().Str("tag", tag).Msg("searching player")

	player, err := s.client.FetchPlayer(ctx, tag)
	if err != nil {
		s.logger.Warn().Err(err).Str("tag", tag).Msg("search failed")
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}
	return player, nil
}

func (s *PlayerService) Refresh(ctx context.Context, tag string) (*domain.PlayerSnapshot, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, ErrEmptyTag
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	player, err := s.client.ForceRefresh(ctx, tag)
	if err != nil {
		s.logger.Warn().Err(err).Str("tag", tag).Msg("refresh failed")
		return nil, fmt.Errorf("failed to refresh player: %w", err)
	}
	return player, nil
}

// SaveAsProfile persists player as the profile and hands it to the listener.
func (s *PlayerService) SaveAsProfile(ctx context.Context, player *domain.PlayerSnapshot) error {
	if player == nil {
		return ErrNoPlayer
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if s.listener != nil {
		s.listener.ProfileChanging()
	}
	if err := s.store.SaveProfile(ctx, player); err != nil {
		return err
	}

	if s.listener != nil {
		s.listener.ProfileSaved(player)
	}
	return nil
}

func (s *PlayerService) DeleteProfile(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if s.listener != nil {
		s.listener.ProfileChanging()
	}
	if err := s.store.DeleteProfile(ctx); err != nil {
		return err
	}

	if s.listener != nil {
		s.listener.ProfileDeleted()
	}
	return nil
}
