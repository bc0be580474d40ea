package identity

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.IdentityRepository = BadgerRepository{}

// BadgerRepository keeps the identity in a badger database dedicated to one scope.
type BadgerRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerRepository(db *badger.DB, log *slog.Logger) BadgerRepository {
	return BadgerRepository{db: db, log: log}
}

// OpenBadger opens the database of a scope. Each scope gets its own directory
// so independently started clients never share an identity.
func OpenBadger(dir, scope string) (*badger.DB, error) {
	if scope == "" {
		return nil, fmt.Errorf("%w: empty identity scope", errors.ErrIdentityUnavailable)
	}
	path := filepath.Join(dir, scope)
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrIdentityUnavailable, err)
	}
	return db, nil
}

func (r BadgerRepository) Load(_ context.Context) (domain.ClientID, error) {
	var id domain.ClientID
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id = domain.ClientID(value)
		return nil
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return "", errors.ErrIdentityNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrIdentityUnavailable, err)
	}
	return id, nil
}

func (r BadgerRepository) Save(_ context.Context, id domain.ClientID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key), []byte(id))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrIdentityUnavailable, err)
	}
	return nil
}
