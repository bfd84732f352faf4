package pillar

import (
	"context"

	"github.com/pillar-dev/pillar/pkg/api"
)

// Actions wrap one remote call each and, on success, apply the matching
// mutation. They return the response payload so composite flows can
// chain. Memoized dispatches return without touching the network; a
// failed call propagates its error unchanged and applies no mutation.

// FetchColumns loads one page of the column list into the cache. Once
// the list has been fetched, further dispatches are served from the
// cache and return (nil, nil).
func (s *Store) FetchColumns(ctx context.Context, page, size int) (*api.ColumnList, error) {
	ctx, span := s.tracer.start(ctx, "fetch_columns")

	s.mu.RLock()
	loaded := s.columnsLoaded
	s.mu.RUnlock()
	if loaded {
		s.metrics.recordCacheHit("fetch_columns")
		s.logger.Debug("fetch_columns served from cache")
		s.tracer.end(span, nil, true)
		return nil, nil
	}

	list, err := s.client.Columns(ctx, page, size)
	s.metrics.recordRequest("fetch_columns", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyColumns(list.List)
	s.tracer.end(span, nil, false)
	return list, nil
}

// FetchColumn loads a single column. A column already in the cache is
// not refetched; the dispatch returns (nil, nil).
func (s *Store) FetchColumn(ctx context.Context, cid string) (*api.Column, error) {
	ctx, span := s.tracer.start(ctx, "fetch_column")

	s.mu.RLock()
	_, cached := s.columns[cid]
	s.mu.RUnlock()
	if cached {
		s.metrics.recordCacheHit("fetch_column")
		s.logger.Debug("fetch_column served from cache", "cid", cid)
		s.tracer.end(span, nil, true)
		return nil, nil
	}

	col, err := s.client.Column(ctx, cid)
	s.metrics.recordRequest("fetch_column", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyColumn(*col)
	s.tracer.end(span, nil, false)
	return col, nil
}

// FetchPosts loads the posts of one column, merging them into the cache
// so posts from other columns survive. A column whose batch was already
// fetched is not refetched, even if it had zero posts.
func (s *Store) FetchPosts(ctx context.Context, cid string) (*api.PostList, error) {
	ctx, span := s.tracer.start(ctx, "fetch_posts")

	if s.columnPostsLoaded(cid) {
		s.metrics.recordCacheHit("fetch_posts")
		s.logger.Debug("fetch_posts served from cache", "cid", cid)
		s.tracer.end(span, nil, true)
		return nil, nil
	}

	list, err := s.client.ColumnPosts(ctx, cid)
	s.metrics.recordRequest("fetch_posts", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyPosts(cid, list.List)
	s.tracer.end(span, nil, false)
	return list, nil
}

// FetchPost loads a single post with its content body. A cached entry
// that already has content is returned as-is; a cached stub from a list
// view (no content) still triggers the fetch.
func (s *Store) FetchPost(ctx context.Context, id string) (*api.Post, error) {
	ctx, span := s.tracer.start(ctx, "fetch_post")

	s.mu.RLock()
	cached, ok := s.posts[id]
	s.mu.RUnlock()
	if ok && cached.Content != "" {
		s.metrics.recordCacheHit("fetch_post")
		s.logger.Debug("fetch_post served from cache", "id", id)
		s.tracer.end(span, nil, true)
		return &cached, nil
	}

	p, err := s.client.Post(ctx, id)
	s.metrics.recordRequest("fetch_post", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyPost(*p)
	s.tracer.end(span, nil, false)
	return p, nil
}

// Login exchanges credentials for a token and stores it, in memory and
// in the configured token store. Always hits the network.
func (s *Store) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := s.tracer.start(ctx, "login")

	token, err := s.client.Login(ctx, email, password)
	s.metrics.recordRequest("login", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return "", err
	}

	if err := s.applyLogin(ctx, token); err != nil {
		s.tracer.end(span, err, false)
		return "", err
	}
	s.tracer.end(span, nil, false)
	return token, nil
}

// FetchCurrentUser loads the profile behind the current token into the
// user slot. Always hits the network.
func (s *Store) FetchCurrentUser(ctx context.Context) (*api.User, error) {
	ctx, span := s.tracer.start(ctx, "fetch_current_user")

	u, err := s.client.CurrentUser(ctx)
	s.metrics.recordRequest("fetch_current_user", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyUser(*u)
	s.tracer.end(span, nil, false)
	return u, nil
}

// LoginAndFetch runs Login and, only on success, FetchCurrentUser.
func (s *Store) LoginAndFetch(ctx context.Context, email, password string) (*api.User, error) {
	if _, err := s.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return s.FetchCurrentUser(ctx)
}

// CreatePost creates a post and upserts the server's copy into the
// cache.
func (s *Store) CreatePost(ctx context.Context, np api.NewPost) (*api.Post, error) {
	ctx, span := s.tracer.start(ctx, "create_post")

	p, err := s.client.CreatePost(ctx, np)
	s.metrics.recordRequest("create_post", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyPost(*p)
	s.tracer.end(span, nil, false)
	return p, nil
}

// UpdatePost patches a post and upserts the updated copy into the cache.
func (s *Store) UpdatePost(ctx context.Context, id string, patch api.PostPatch) (*api.Post, error) {
	ctx, span := s.tracer.start(ctx, "update_post")

	p, err := s.client.UpdatePost(ctx, id, patch)
	s.metrics.recordRequest("update_post", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	s.applyPost(*p)
	s.tracer.end(span, nil, false)
	return p, nil
}

// DeletePost deletes a post remotely and removes it from the cache.
func (s *Store) DeletePost(ctx context.Context, id string) (*api.Post, error) {
	ctx, span := s.tracer.start(ctx, "delete_post")

	p, err := s.client.DeletePost(ctx, id)
	s.metrics.recordRequest("delete_post", err)
	if err != nil {
		s.tracer.end(span, err, false)
		return nil, err
	}

	removed := id
	if p.ID != "" {
		removed = p.ID
	}
	s.applyRemovePost(removed)
	s.tracer.end(span, nil, false)
	return p, nil
}

// SignOut clears the token from memory and durable storage and resets
// the user slot. No network call is involved.
func (s *Store) SignOut(ctx context.Context) error {
	_, span := s.tracer.start(ctx, "sign_out")
	err := s.applySignOut(ctx)
	s.tracer.end(span, err, false)
	return err
}

// columnPostsLoaded reports whether a column's post batch was fetched.
func (s *Store) columnPostsLoaded(cid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.loadedColumns {
		if id == cid {
			return true
		}
	}
	return false
}
