package service

import (
	"context"
	"errors"
	"testing"

	"clash-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlayerClient struct {
	mock.Mock
}

func (m *mockPlayerClient) FetchPlayer(ctx context.Context, tag string) (*domain.PlayerSnapshot, error) {
	args := m.Called(ctx, tag)
	p, _ := args.Get(0).(*domain.PlayerSnapshot)
	return p, args.Error(1)
}

func (m *mockPlayerClient) ForceRefresh(ctx context.Context, tag string) (*domain.PlayerSnapshot, error) {
	args := m.Called(ctx, tag)
	p, _ := args.Get(0).(*domain.PlayerSnapshot)
	return p, args.Error(1)
}

type mockListener struct {
	mock.Mock
}

func (m *mockListener) ProfileChanging() {
	m.Called()
}

func (m *mockListener) ProfileSaved(player *domain.PlayerSnapshot) {
	m.Called(player)
}

func (m *mockListener) ProfileDeleted() {
	m.Called()
}

func TestPlayerService_Search(t *testing.T) {
	client := new(mockPlayerClient)
	svc := NewPlayerService(client, nil, nil, zerolog.Nop())
	want := samplePlayer("#ABC123")

	client.On("FetchPlayer", mock.Anything, "abc123").Return(want, nil).Once()

	got, err := svc.Search(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Same(t, want, got)
	client.AssertExpectations(t)
}

func TestPlayerService_EmptyTag(t *testing.T) {
	client := new(mockPlayerClient)
	svc := NewPlayerService(client, nil, nil, zerolog.Nop())

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTag)
	_, err = svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyTag)

	client.AssertNotCalled(t, "FetchPlayer", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "ForceRefresh", mock.Anything, mock.Anything)
}

func TestPlayerService_FetchErrorsAreWrapped(t *testing.T) {
	client := new(mockPlayerClient)
	svc := NewPlayerService(client, nil, nil, zerolog.Nop())
	upstream := errors.New("player not found")

	client.On("FetchPlayer", mock.Anything, "#NOPE").Return(nil, upstream).Once()
	client.On("ForceRefresh", mock.Anything, "#NOPE").Return(nil, upstream).Once()

	_, err := svc.Search(context.Background(), "#NOPE")
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "failed to fetch player")

	_, err = svc.Refresh(context.Background(), "#NOPE")
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "failed to refresh player")

	client.AssertExpectations(t)
}

func TestPlayerService_SaveAsProfileNotifiesListener(t *testing.T) {
	store, _ := setupStore(t)
	listener := new(mockListener)
	svc := NewPlayerService(new(mockPlayerClient), store, listener, zerolog.Nop())
	player := samplePlayer("#ABC123")

	listener.On("ProfileChanging").Once()
	listener.On("ProfileSaved", player).Once()

	require.NoError(t, svc.SaveAsProfile(context.Background(), player))
	listener.AssertExpectations(t)

	got, err := store.GetProfile(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, player, got)
}

func TestPlayerService_SaveFailureDoesNotNotify(t *testing.T) {
	repo := &fakeRepo{dropWrites: true}
	store := newProfileStore(repo, zerolog.Nop())
	listener := new(mockListener)
	svc := NewPlayerService(new(mockPlayerClient), store, listener, zerolog.Nop())
	listener.On("ProfileChanging").Once()

	err := svc.SaveAsProfile(context.Background(), samplePlayer("#ABC123"))
	assert.ErrorIs(t, err, ErrSaveFailed)
	listener.AssertNotCalled(t, "ProfileSaved", mock.Anything)

	assert.ErrorIs(t, svc.SaveAsProfile(context.Background(), nil), ErrNoPlayer)
}

func TestPlayerService_DeleteProfile(t *testing.T) {
	store, _ := setupStore(t)
	listener := new(mockListener)
	svc := NewPlayerService(new(mockPlayerClient), store, listener, zerolog.Nop())
	ctx := context.Background()

	listener.On("ProfileChanging").Twice()
	listener.On("ProfileSaved", mock.Anything).Once()
	listener.On("ProfileDeleted").Once()

	require.NoError(t, svc.SaveAsProfile(ctx, samplePlayer("#ABC123")))
	require.NoError(t, svc.DeleteProfile(ctx))

	assert.False(t, store.HasProfile(ctx))
	listener.AssertExpectations(t)
}

func TestPlayerService_ListenerHearsChangeBeforeWrite(t *testing.T) {
	store, repo := setupStore(t)
	listener := new(mockListener)
	svc := NewPlayerService(new(mockPlayerClient), store, listener, zerolog.Nop())
	ctx := context.Background()

	// the store must still be untouched when the listener is warned
	listener.On("ProfileChanging").Run(func(mock.Arguments) {
		n, err := repo.Count(ctx)
		assert.NoError(t, err)
		assert.Zero(t, n)
	}).Once()
	listener.On("ProfileSaved", mock.Anything).Once()
	require.NoError(t, svc.SaveAsProfile(ctx, samplePlayer("#ABC123")))

	listener.On("ProfileChanging").Run(func(mock.Arguments) {
		assert.True(t, store.HasProfile(ctx))
	}).Once()
	listener.On("ProfileDeleted").Once()
	require.NoError(t, svc.DeleteProfile(ctx))

	listener.AssertExpectations(t)
}
