package pillar

import (
	"github.com/pillar-dev/pillar/pkg/api"
)

// Getters are pure derivations recomputed on each call. Returned slices
// are fresh copies; callers may keep or mutate them freely.

// Columns returns the cached columns in insertion order, which for a
// full list fetch is the server's order.
func (s *Store) Columns() []api.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Column, 0, len(s.columnOrder))
	for _, id := range s.columnOrder {
		out = append(out, s.columns[id])
	}
	return out
}

// ColumnByID looks up one column. ok is false when it is not cached.
func (s *Store) ColumnByID(id string) (api.Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[id]
	return c, ok
}

// PostsByColumn returns the cached posts whose column field equals cid,
// in insertion order.
func (s *Store) PostsByColumn(cid string) []api.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []api.Post
	for _, id := range s.postOrder {
		if p := s.posts[id]; p.Column == cid {
			out = append(out, p)
		}
	}
	return out
}

// PostByID looks up one post. ok is false when it is not cached.
func (s *Store) PostByID(id string) (api.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	return p, ok
}

// Token returns the current auth token, "" when signed out. It doubles
// as the API client's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ColumnsLoaded reports whether the full column list was fetched once.
func (s *Store) ColumnsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columnsLoaded
}

// LoadedColumns returns the ids of columns whose post batches were
// fetched, in fetch order.
func (s *Store) LoadedColumns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.loadedColumns...)
}

// Loading returns the loading flag.
func (s *Store) Loading() bool {
	return s.loading.Get()
}

// LastError returns the global error slot.
func (s *Store) LastError() Failure {
	return s.failure.Get()
}

// User returns the current user slot.
func (s *Store) User() CurrentUser {
	return s.user.Get()
}

// OnLoadingChange subscribes to loading flag changes. Returns an
// unsubscribe function.
func (s *Store) OnLoadingChange(fn func(bool)) func() {
	return s.loading.Subscribe(fn)
}

// OnErrorChange subscribes to error slot changes.
func (s *Store) OnErrorChange(fn func(Failure)) func() {
	return s.failure.Subscribe(fn)
}

// OnUserChange subscribes to user slot changes.
func (s *Store) OnUserChange(fn func(CurrentUser)) func() {
	return s.user.Subscribe(fn)
}
