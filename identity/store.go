// Package identity derives the client identifier and keeps it stable
// for the lifetime of one tab, i.e. one identity scope.
package identity

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"context"
	goerrors "errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Key is the fixed key the identity is persisted under.
const Key = "chat-rooms:client-id"

var _ contract.IdentityStore = (*Store)(nil)

type Store struct {
	mu         sync.Mutex
	log        *slog.Logger
	repository contract.IdentityRepository
	current    domain.ClientID
}

// NewStore accepts a nil repository: every call then yields a fresh ephemeral identity.
func NewStore(log *slog.Logger, repository contract.IdentityRepository) *Store {
	return &Store{log: log, repository: repository}
}

// GetOrCreate returns the persisted identity, creating and persisting it on first use.
// When the medium is unavailable a fresh non-persisted identity is returned instead,
// so two calls may disagree in that case.
func (s *Store) GetOrCreate(ctx context.Context) domain.ClientID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" {
		return s.current
	}
	if s.repository == nil {
		return s.ephemeral(errors.ErrIdentityUnavailable)
	}

	id, err := s.repository.Load(ctx)
	switch {
	case err == nil && id != "":
		s.current = id
		return id
	case err == nil, goerrors.Is(err, errors.ErrIdentityNotFound):
	default:
		return s.ephemeral(err)
	}

	id = newClientID()
	if err := s.repository.Save(ctx, id); err != nil {
		s.log.Warn("Identity not persisted, using an ephemeral one", "error", err)
		return id
	}
	s.log.Debug("New client identity persisted", "client_id", id)
	s.current = id
	return id
}

func (s *Store) ephemeral(cause error) domain.ClientID {
	s.log.Warn("Identity storage unavailable, using an ephemeral identity", "error", cause)
	return newClientID()
}

func newClientID() domain.ClientID {
	return domain.ClientID(uuid.NewString())
}
