package kvstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fireflow/internal/client/repositories/entries"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// SQLiteStore is the durable store: one namespace of the preferences table.
type SQLiteStore struct {
	name     string
	repo     entries.Repository
	notifier *notify.Notifier
	log      logging.Logger
}

func NewSQLiteStore(name string, repo entries.Repository, n *notify.Notifier, log logging.Logger) *SQLiteStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLiteStore{
		name:     name,
		repo:     repo,
		notifier: n,
		log:      log.With("component", "kvstore", "namespace", name),
	}
}

func (s *SQLiteStore) Name() string { return s.name }

func (s *SQLiteStore) fail(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, "preference store failure", "op", op, "error", err)
	return common.Disk(s.name+"."+op, err)
}

func (s *SQLiteStore) Contains(ctx context.Context, kind Kind, key string) (bool, error) {
	ok, err := s.repo.Exists(ctx, s.name, string(kind), key)
	if err != nil {
		return false, s.fail(ctx, "contains", err)
	}
	return ok, nil
}

func (s *SQLiteStore) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	v, ok, err := s.repo.Get(ctx, s.name, string(kind), key)
	if err != nil {
		return nil, s.fail(ctx, "get", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s %s %q: %w", s.name, kind, key, common.ErrPreferenceNotFound)
	}
	return []byte(v), nil
}

func (s *SQLiteStore) Set(ctx context.Context, kind Kind, key string, raw []byte) error {
	err := s.repo.Upsert(context.WithoutCancel(ctx), entries.Entry{
		Namespace: s.name,
		Kind:      string(kind),
		Key:       key,
		Value:     string(raw),
	})
	if err != nil {
		return s.fail(ctx, "set", err)
	}
	s.notifier.Publish(notify.PreferencesTopic(s.name))
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, kind Kind, key string) error {
	if err := s.repo.Delete(context.WithoutCancel(ctx), s.name, string(kind), key); err != nil {
		return s.fail(ctx, "remove", err)
	}
	s.notifier.Publish(notify.PreferencesTopic(s.name))
	return nil
}

func (s *SQLiteStore) RemoveAll(ctx context.Context) error {
	if err := s.repo.Clear(context.WithoutCancel(ctx), s.name); err != nil {
		return s.fail(ctx, "remove_all", err)
	}
	s.notifier.Publish(notify.PreferencesTopic(s.name))
	return nil
}

func (s *SQLiteStore) Changes(ctx context.Context) <-chan struct{} {
	return s.notifier.Subscribe(ctx, notify.PreferencesTopic(s.name))
}

// Entries lists the namespace in its stored form.
func (s *SQLiteStore) Entries(ctx context.Context) ([]entries.Entry, error) {
	list, err := s.repo.List(ctx, s.name)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return list, nil
}
