package pillar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pillar-dev/pillar/pkg/api"
	"github.com/pillar-dev/pillar/pkg/signal"
)

// CurrentUser is the store's single user slot: the server profile plus a
// login flag. The zero value is the signed-out state.
type CurrentUser struct {
	IsLogin bool
	api.User
}

// Failure is the store's global error slot. Last failure wins; the UI
// layer clears it by writing the zero value.
type Failure struct {
	Status  bool
	Message string
}

// TokenStore persists the auth token across process restarts.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)

	// Save replaces the stored token.
	Save(ctx context.Context, token string) error

	// Clear removes the stored token.
	Clear(ctx context.Context) error
}

// Store is the client-side state container for the blog application. It
// caches columns and posts by id, tracks the current user and auth token,
// and synchronizes all of it with the remote API.
//
// Mutations are the only writers of store state and each one runs
// atomically under the store mutex. Actions perform one network call and
// apply the matching mutation on success; a failed call leaves the state
// untouched and returns the error unchanged. Memoization guards are
// read-then-act: two overlapping dispatches of the same fetch may both
// reach the network, matching the behavior this store replaces.
type Store struct {
	client     *api.Client
	tokenStore TokenStore
	logger     *slog.Logger
	metrics    *storeMetrics
	tracer     storeTracer

	mu sync.RWMutex

	token string

	columns       map[string]api.Column
	columnOrder   []string
	columnsLoaded bool

	posts     map[string]api.Post
	postOrder []string

	// loadedColumns lists column ids whose post batches were already
	// fetched. Distinct from per-post presence: a column with zero posts
	// is still "loaded".
	loadedColumns []string

	loading *signal.Signal[bool]
	failure *signal.Signal[Failure]
	user    *signal.Signal[CurrentUser]
}

// New creates a Store and initializes it from durable storage: if a
// token store is configured and holds a token, the store starts
// authenticated with it.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		tokenStore: cfg.tokenStore,
		logger:     cfg.logger,
		metrics:    newStoreMetrics(cfg.registry),
		tracer:     newStoreTracer(cfg.tracerName),
		columns:    make(map[string]api.Column),
		posts:      make(map[string]api.Post),
		loading:    signal.New(false),
		failure:    signal.New(Failure{}),
		user:       signal.New(CurrentUser{}),
	}

	if cfg.client != nil {
		s.client = cfg.client
	} else {
		s.client = api.NewClient(cfg.baseURL,
			api.WithTokenSource(api.TokenSourceFunc(s.Token)),
			api.WithHTTPClient(cfg.httpClient),
			api.WithLogger(cfg.logger),
		)
	}

	if s.tokenStore != nil {
		token, err := s.tokenStore.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load persisted token: %w", err)
		}
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
	}

	return s, nil
}

// ---------------------------------------------------------------------------
// Mutations. Synchronous, no I/O beyond token persistence, each atomic
// with respect to concurrent readers.
// ---------------------------------------------------------------------------

// SetLoading writes the loading flag. Driven by the UI layer around
// action dispatches; actions themselves never touch it.
func (s *Store) SetLoading(v bool) {
	s.loading.Set(v)
}

// SetError writes the global error slot. Not cleared automatically.
func (s *Store) SetError(f Failure) {
	s.failure.Set(f)
}

// applyColumns replaces the whole column cache with a freshly fetched
// list and marks the list as loaded.
func (s *Store) applyColumns(list []api.Column) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.columns = make(map[string]api.Column, len(list))
	s.columnOrder = s.columnOrder[:0]
	for _, c := range list {
		s.columns[c.ID] = c
		s.columnOrder = append(s.columnOrder, c.ID)
	}
	s.columnsLoaded = true
}

// applyColumn upserts a single column.
func (s *Store) applyColumn(c api.Column) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.columns[c.ID]; !ok {
		s.columnOrder = append(s.columnOrder, c.ID)
	}
	s.columns[c.ID] = c
}

// applyPosts merges a fetched batch into the post cache, preserving
// entries from other columns, and records the source column as loaded.
// The caller's memoization guard is the only duplicate protection for
// the loadedColumns append.
func (s *Store) applyPosts(cid string, list []api.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range list {
		if _, ok := s.posts[p.ID]; !ok {
			s.postOrder = append(s.postOrder, p.ID)
		}
		s.posts[p.ID] = p
	}
	s.loadedColumns = append(s.loadedColumns, cid)
}

// applyPost upserts a single post.
func (s *Store) applyPost(p api.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; !ok {
		s.postOrder = append(s.postOrder, p.ID)
	}
	s.posts[p.ID] = p
}

// applyRemovePost removes one post by id.
func (s *Store) applyRemovePost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return
	}
	delete(s.posts, id)
	for i, pid := range s.postOrder {
		if pid == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
}

// applyLogin stores the token in memory and durable storage. The API
// client reads the token through the store's TokenSource on every
// request, so no shared header state needs mutating.
func (s *Store) applyLogin(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.tokenStore != nil {
		if err := s.tokenStore.Save(ctx, token); err != nil {
			return fmt.Errorf("persist token: %w", err)
		}
	}
	return nil
}

// applyUser replaces the user slot with a logged-in profile.
func (s *Store) applyUser(u api.User) {
	s.user.Set(CurrentUser{IsLogin: true, User: u})
}

// applySignOut clears the token everywhere and resets the user slot.
func (s *Store) applySignOut(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.user.Set(CurrentUser{})

	if s.tokenStore != nil {
		if err := s.tokenStore.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted token: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cache invalidation, used by the live update feed.
// ---------------------------------------------------------------------------

// InvalidatePost evicts one post so the next FetchPost refetches it.
func (s *Store) InvalidatePost(id string) {
	s.applyRemovePost(id)
}

// InvalidateColumn evicts a column and forgets that its posts were
// loaded, so the next FetchColumn/FetchPosts refetch.
func (s *Store) InvalidateColumn(cid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.columns[cid]; ok {
		delete(s.columns, cid)
		for i, id := range s.columnOrder {
			if id == cid {
				s.columnOrder = append(s.columnOrder[:i], s.columnOrder[i+1:]...)
				break
			}
		}
	}
	for i, id := range s.loadedColumns {
		if id == cid {
			s.loadedColumns = append(s.loadedColumns[:i], s.loadedColumns[i+1:]...)
			break
		}
	}
}
