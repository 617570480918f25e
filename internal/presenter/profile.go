package presenter

import (
	"context"
	"errors"
	"sync"

	"clash-tracker/internal/constants"
	"clash-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

var ErrNotLoaded = errors.New("no profile loaded")

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Empty
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// State is what the profile screen shows. Player is set only when Loaded,
// Message only on Error.
type State struct {
	Status  Status
	Player  *domain.PlayerSnapshot
	Message string
}

type PlayerFetcher interface {
	ForceRefresh(ctx context.Context, tag string) (*domain.PlayerSnapshot, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, forceRefresh bool) (*domain.PlayerSnapshot, error)
	SaveProfile(ctx context.Context, player *domain.PlayerSnapshot) error
}

type observer struct {
	id int
	fn func(State)
}

// Profile drives the profile screen. Every transition that starts new work
// bumps the generation; results of older work are dropped.
type Profile struct {
	fetcher PlayerFetcher
	store   ProfileStore
	logger  zerolog.Logger

	// Lock order is persistMu, notifyMu, mu. Nothing waits for an outer
	// lock while holding an inner one.

	// persistMu makes a refresh's generation check and its store write one
	// step with respect to generation bumps.
	persistMu sync.Mutex

	// notifyMu is held from a transition until its observers return, so
	// observers see transitions in the order they happened.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	gen       uint64
	observers []observer
	nextID    int

	bg conc.WaitGroup
}

func NewProfile(fetcher PlayerFetcher, store ProfileStore, logger zerolog.Logger) *Profile {
	return &Profile{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

func (p *Profile) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for every later transition. fn runs synchronously;
// it may read State but must not start a transition itself.
func (p *Profile) Subscribe(fn func(State)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.observers = append(p.observers, observer{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, o := range p.observers {
			if o.id == id {
				p.observers = append(p.observers[:i:i], p.observers[i+1:]...)
				return
			}
		}
	}
}

// Load shows the stored profile, or Empty, and then revalidates it against
// the API in the background.
func (p *Profile) Load(ctx context.Context) {
	gen := p.begin(State{Status: Loading})

	stored, err := p.store.GetProfile(ctx, false)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to load stored profile")
		p.commit(gen, State{Status: Error, Message: constants.LoadProfileFailedMessage})
		return
	}
	if stored == nil {
		p.commit(gen, State{Status: Empty})
		return
	}

	if !p.commit(gen, State{Status: Loaded, Player: stored}) {
		return
	}
	p.revalidate(ctx, gen, stored.PlayerTag)
}

// Refresh re-fetches the shown profile in the foreground. On failure the
// state and the stored profile are left as they were.
func (p *Profile) Refresh(ctx context.Context) error {
	p.persistMu.Lock()
	p.mu.Lock()
	if p.state.Status != Loaded || p.state.Player == nil {
		p.mu.Unlock()
		p.persistMu.Unlock()
		return ErrNotLoaded
	}
	tag := p.state.Player.PlayerTag
	p.gen++
	gen := p.gen
	p.mu.Unlock()
	p.persistMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	fresh, err := p.fetcher.ForceRefresh(ctx, tag)
	if err != nil {
		p.logger.Warn().Err(err).Str("tag", tag).Msg("profile refresh failed")
		return err
	}
	return p.apply(ctx, gen, fresh)
}

// ProfileSaved shows player without fetching it again.
func (p *Profile) ProfileSaved(player *domain.PlayerSnapshot) {
	if player == nil {
		p.begin(State{Status: Empty})
		return
	}
	p.begin(State{Status: Loaded, Player: player})
}

// ProfileChanging supersedes in-flight refreshes ahead of a durable save or
// delete made elsewhere. It waits for a refresh that is already writing, and
// leaves the shown state alone so a failed change keeps it.
func (p *Profile) ProfileChanging() {
	p.persistMu.Lock()
	defer p.persistMu.Unlock()

	p.mu.Lock()
	p.gen++
	p.mu.Unlock()
}

func (p *Profile) ProfileDeleted() {
	p.begin(State{Status: Empty})
}

func (p *Profile) Clear() {
	p.begin(State{Status: Empty})
}

// Wait blocks until background refreshes have finished.
func (p *Profile) Wait() {
	if r := p.bg.WaitAndRecover(); r != nil {
		p.logger.Error().Str("panic", r.String()).Msg("background refresh panicked")
	}
}

func (p *Profile) revalidate(ctx context.Context, gen uint64, tag string) {
	ctx = context.WithoutCancel(ctx)
	p.bg.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
		defer cancel()

		fresh, err := p.fetcher.ForceRefresh(ctx, tag)
		if err != nil {
			p.logger.Warn().Err(err).Str("tag", tag).Msg("background refresh failed")
			return
		}
		if err := p.apply(ctx, gen, fresh); err != nil {
			p.logger.Warn().Err(err).Str("tag", tag).Msg("failed to persist refreshed profile")
		}
	})
}

// apply persists fresh and shows it, unless gen has been superseded.
func (p *Profile) apply(ctx context.Context, gen uint64, fresh *domain.PlayerSnapshot) error {
	p.persistMu.Lock()
	defer p.persistMu.Unlock()

	if !p.current(gen) {
		p.logger.Debug().Str("tag", fresh.PlayerTag).Msg("discarding superseded refresh")
		return nil
	}
	if err := p.store.SaveProfile(ctx, fresh); err != nil {
		return err
	}
	if !p.commit(gen, State{Status: Loaded, Player: fresh}) {
		p.logger.Debug().Str("tag", fresh.PlayerTag).Msg("refresh superseded after save")
	}
	return nil
}

func (p *Profile) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

// begin starts a new generation in state s.
func (p *Profile) begin(s State) uint64 {
	p.persistMu.Lock()
	defer p.persistMu.Unlock()

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	fns := p.set(s)
	p.mu.Unlock()

	notify(fns, s)
	return gen
}

// commit moves to s only if gen is still current.
func (p *Profile) commit(gen uint64, s State) bool {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return false
	}
	fns := p.set(s)
	p.mu.Unlock()

	notify(fns, s)
	return true
}

// set must be called with mu held. It returns the observers to notify.
func (p *Profile) set(s State) []func(State) {
	p.state = s
	fns := make([]func(State), len(p.observers))
	for i, o := range p.observers {
		fns[i] = o.fn
	}
	return fns
}

func notify(fns []func(State), s State) {
	for _, fn := range fns {
		fn(s)
	}
}
