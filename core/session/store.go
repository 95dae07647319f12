package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/storage/kvstore"
)

var ErrEmptyToken = errors.New("empty token")

// PersistMode decides what happens to a Login/Logout transition when the
// durable-storage write fails.
type PersistMode int

const (
	// PersistFailOpen keeps the in-memory transition and only logs the
	// storage error. The session then survives until the process exits but
	// not across restarts.
	PersistFailOpen PersistMode = iota
	// PersistFailClosed aborts the transition: the storage error is returned
	// and the in-memory state is left untouched.
	PersistFailClosed
)

func PersistModeFromString(s string) PersistMode {
	if core.CleanString(s, true) == "failclosed" {
		return PersistFailClosed
	}
	return PersistFailOpen
}

// TokenValidator reports whether a token/user combination is still usable.
// A plain "invalid" verdict must be (false, nil); an error means no verdict
// could be reached and is treated as invalid by callers (fail-closed).
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string, usr User) (bool, error)
}

// ValidatorFunc adapts a function to the TokenValidator interface.
type ValidatorFunc func(ctx context.Context, token string, usr User) (bool, error)

func (f ValidatorFunc) ValidateToken(ctx context.Context, token string, usr User) (bool, error) {
	return f(ctx, token, usr)
}

type (
	Options struct {
		Storage           kvstore.Storage
		Validator         TokenValidator
		Logger            core.Logger
		PersistMode       PersistMode
		TokenKey          string        // default: conf sessionTokenKey
		SnapshotKey       string        // default: conf sessionSnapshotKey
		ValidationTimeout time.Duration // default: conf validationTimeout
	}

	// Store is the single source of truth for authentication state. All
	// mutation funnels through Login and Logout; both update the in-memory
	// state and the durable copy in the same step.
	Store struct {
		storage     kvstore.Storage
		validator   TokenValidator
		logger      core.Logger
		mode        PersistMode
		tokenKey    string
		snapshotKey string
		valTimeout  time.Duration

		mutex    sync.Mutex
		state    State
		hydrated bool
	}
)

func NewStore(opts Options) *Store {
	if opts.TokenKey == "" {
		opts.TokenKey = core.Conf.GetString("sessionTokenKey")
	}
	if opts.SnapshotKey == "" {
		opts.SnapshotKey = core.Conf.GetString("sessionSnapshotKey")
	}
	if opts.ValidationTimeout <= 0 {
		opts.ValidationTimeout = core.Conf.GetDuration("validationTimeout")
	}
	if opts.Logger == nil {
		opts.Logger = core.NewStdLogger(nil)
	}
	return &Store{
		storage:     opts.Storage,
		validator:   opts.Validator,
		logger:      opts.Logger,
		mode:        opts.PersistMode,
		tokenKey:    opts.TokenKey,
		snapshotKey: opts.SnapshotKey,
		valTimeout:  opts.ValidationTimeout,
	}
}

// GetState returns a copy of the current session state.
func (s *Store) GetState() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state := s.state
	if s.state.User != nil {
		usr := *s.state.User
		state.User = &usr
	}
	return state
}

// Login persists the credential and transitions to the authenticated state.
// The durable write and the in-memory write happen in the same step; a
// storage failure is handled according to the configured PersistMode.
func (s *Store) Login(ctx context.Context, token string, usr User) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap := snapshot{ID: uuid.NewString(), Token: token, User: &usr}
	if err := s.persist(ctx, snap); err != nil {
		if s.mode == PersistFailClosed {
			return errors.Wrap(err, "persisting session")
		}
		s.logger.Warn("session persist failed; keeping in-memory state", err)
	}

	s.state.IsAuthenticated = true
	s.state.Token = token
	s.state.User = snap.User
	return nil
}

// Logout clears the credential in storage and in memory. It is idempotent:
// logging out an already logged-out session leaves the observable state
// unchanged.
func (s *Store) Logout(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.unpersist(ctx); err != nil {
		if s.mode == PersistFailClosed {
			return errors.Wrap(err, "removing persisted session")
		}
		s.logger.Warn("session removal failed; clearing in-memory state", err)
	}

	s.state.IsAuthenticated = false
	s.state.Token = ""
	s.state.User = nil
	return nil
}

// Hydrate loads the persisted session into memory. It runs exactly once; any
// restored token is revalidated asynchronously so startup is not blocked on a
// potentially remote call.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mutex.Lock()
	if s.hydrated {
		s.mutex.Unlock()
		return nil
	}
	s.hydrated = true
	s.state.HasHydrated = true

	data, err := s.storage.Get(ctx, s.snapshotKey)
	switch {
	case errors.Is(err, kvstore.ErrNotFound): // fresh start
	case err != nil:
		s.mutex.Unlock()
		return errors.Wrap(err, "loading persisted session")
	default:
		var snap snapshot
		if jErr := json.Unmarshal([]byte(data), &snap); jErr != nil {
			s.logger.Warn("discarding corrupt session snapshot", jErr)
		} else if snap.Token != "" && snap.User != nil {
			s.state.IsAuthenticated = true
			s.state.Token = snap.Token
			s.state.User = snap.User
		}
	}
	restored := s.state.Token != ""
	s.mutex.Unlock()

	if restored {
		go func() {
			valCtx, cancel := context.WithTimeout(context.Background(), s.valTimeout)
			defer cancel()
			if err := s.ValidateSavedToken(valCtx); err != nil {
				s.logger.Warn("revalidating restored session", err)
			}
		}()
	}
	return nil
}

// ValidateSavedToken checks the current token with the validation collaborator
// and logs the session out when the verdict is invalid or the collaborator
// fails (fail-closed). Returns nil when no token is present.
//
// Overlapping calls are not de-duplicated: a slow validation started against
// an older session may complete later and redundantly call Logout.
func (s *Store) ValidateSavedToken(ctx context.Context) error {
	state := s.GetState()
	if state.Token == "" {
		return nil
	}

	var usr User
	if state.User != nil {
		usr = *state.User
	}
	ok, err := s.validator.ValidateToken(ctx, state.Token, usr)
	if err != nil {
		s.logger.Warn("token validation errored; treating session as invalid", err)
		ok = false
	}
	if !ok {
		return s.Logout(ctx)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, snap snapshot) error {
	if err := s.storage.Set(ctx, s.tokenKey, snap.Token); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, s.snapshotKey, string(data))
}

func (s *Store) unpersist(ctx context.Context) error {
	if err := s.storage.Remove(ctx, s.tokenKey); err != nil {
		return err
	}
	return s.storage.Remove(ctx, s.snapshotKey)
}
