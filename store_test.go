package pillar

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/pillar-dev/pillar/internal/apitest"
	"github.com/pillar-dev/pillar/internal/tokenstore"
	"github.com/pillar-dev/pillar/pkg/api"
	"github.com/pillar-dev/pillar/pkg/live"
)

// The live update feed drives the store through this interface.
var _ live.Invalidator = (*Store)(nil)

// newTestStore builds a store against a fake API seeded with two columns,
// three posts and one user.
func newTestStore(t *testing.T, opts ...Option) (*Store, *apitest.Server) {
	t.Helper()

	fake := apitest.New()
	fake.AddColumn(api.Column{ID: "c1", Title: "go notes", Description: "d1"})
	fake.AddColumn(api.Column{ID: "c2", Title: "rust notes", Description: "d2"})
	fake.AddPost(api.Post{ID: "p1", Title: "first", Content: "body one", Column: "c1"})
	fake.AddPost(api.Post{ID: "p2", Title: "second", Content: "body two", Column: "c1"})
	fake.AddPost(api.Post{ID: "p3", Title: "third", Content: "body three", Column: "c2"})
	fake.AddUser("ann@example.com", "secret", "tok-ann", api.User{ID: "u1", NickName: "ann", Email: "ann@example.com"})

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := New(context.Background(), append([]Option{WithBaseURL(srv.URL)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, fake
}

func TestApplyColumnUpsertIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	col := api.Column{ID: "c9", Title: "t", Description: "d"}
	s.applyColumn(col)
	s.applyColumn(col)

	got := s.Columns()
	if len(got) != 1 {
		t.Fatalf("expected 1 column after double upsert, got %d", len(got))
	}
	if got[0] != col {
		t.Errorf("expected %+v, got %+v", col, got[0])
	}
}

func TestApplyColumnsReplacesWholeCache(t *testing.T) {
	s, _ := newTestStore(t)

	s.applyColumn(api.Column{ID: "stale", Title: "old"})
	s.applyColumns([]api.Column{
		{ID: "c1", Title: "a"},
		{ID: "c2", Title: "b"},
	})

	if _, ok := s.ColumnByID("stale"); ok {
		t.Error("replace must drop entries absent from the new list")
	}
	got := s.Columns()
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Errorf("expected server order [c1 c2], got %+v", got)
	}
	if !s.ColumnsLoaded() {
		t.Error("expected columnsLoaded after full fetch")
	}
}

func TestApplyPostsMergesAcrossColumns(t *testing.T) {
	s, _ := newTestStore(t)

	s.applyPosts("c1", []api.Post{
		{ID: "p1", Title: "a", Column: "c1"},
		{ID: "p2", Title: "b", Column: "c1"},
	})
	s.applyPosts("c2", []api.Post{
		{ID: "p3", Title: "c", Column: "c2"},
	})

	if len(s.PostsByColumn("c1")) != 2 {
		t.Error("c1 posts must survive c2 merge")
	}
	if len(s.PostsByColumn("c2")) != 1 {
		t.Error("expected c2 posts present")
	}

	loaded := s.LoadedColumns()
	if len(loaded) != 2 || loaded[0] != "c1" || loaded[1] != "c2" {
		t.Errorf("expected loadedColumns [c1 c2], got %v", loaded)
	}
}

func TestApplyRemovePost(t *testing.T) {
	s, _ := newTestStore(t)

	s.applyPost(api.Post{ID: "p1", Title: "a", Column: "c1"})
	s.applyRemovePost("p1")
	s.applyRemovePost("p1") // second removal is a no-op

	if _, ok := s.PostByID("p1"); ok {
		t.Error("expected post removed")
	}
	if got := s.PostsByColumn("c1"); len(got) != 0 {
		t.Errorf("expected no posts, got %+v", got)
	}
}

func TestPostsByColumnFiltersMixedCache(t *testing.T) {
	s, _ := newTestStore(t)

	s.applyPost(api.Post{ID: "p1", Column: "c1"})
	s.applyPost(api.Post{ID: "p2", Column: "c2"})
	s.applyPost(api.Post{ID: "p3", Column: "c1"})

	got := s.PostsByColumn("c1")
	if len(got) != 2 {
		t.Fatalf("expected 2 posts for c1, got %d", len(got))
	}
	for _, p := range got {
		if p.Column != "c1" {
			t.Errorf("post %s belongs to %s, not c1", p.ID, p.Column)
		}
	}
	if got := s.PostsByColumn("c3"); len(got) != 0 {
		t.Errorf("expected no posts for unknown column, got %+v", got)
	}
}

func TestGettersMissLookups(t *testing.T) {
	s, _ := newTestStore(t)

	if _, ok := s.ColumnByID("nope"); ok {
		t.Error("expected miss for unknown column")
	}
	if _, ok := s.PostByID("nope"); ok {
		t.Error("expected miss for unknown post")
	}
}

func TestSetLoadingAndSetError(t *testing.T) {
	s, _ := newTestStore(t)

	var loadingSeen []bool
	unsub := s.OnLoadingChange(func(v bool) { loadingSeen = append(loadingSeen, v) })
	defer unsub()

	s.SetLoading(true)
	if !s.Loading() {
		t.Error("expected loading true")
	}
	s.SetLoading(false)
	if len(loadingSeen) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(loadingSeen))
	}

	s.SetError(Failure{Status: true, Message: "boom"})
	if f := s.LastError(); !f.Status || f.Message != "boom" {
		t.Errorf("unexpected error slot %+v", f)
	}

	// Last error wins, no history.
	s.SetError(Failure{Status: true, Message: "later"})
	if f := s.LastError(); f.Message != "later" {
		t.Errorf("expected last error to win, got %+v", f)
	}
}

func TestNewLoadsPersistedToken(t *testing.T) {
	ctx := context.Background()
	ts := tokenstore.NewMemory()
	if err := ts.Save(ctx, "persisted-tok"); err != nil {
		t.Fatal(err)
	}

	s, err := New(ctx, WithBaseURL("http://unused"), WithTokenStore(ts))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Token() != "persisted-tok" {
		t.Errorf("expected persisted token, got %q", s.Token())
	}
}

func TestInvalidateColumn(t *testing.T) {
	s, _ := newTestStore(t)

	s.applyColumn(api.Column{ID: "c1", Title: "a"})
	s.applyPosts("c1", []api.Post{{ID: "p1", Column: "c1"}})

	s.InvalidateColumn("c1")

	if _, ok := s.ColumnByID("c1"); ok {
		t.Error("expected column evicted")
	}
	if len(s.LoadedColumns()) != 0 {
		t.Error("expected loadedColumns cleared for c1")
	}
	// The posts themselves stay; only the batch memo is dropped.
	if _, ok := s.PostByID("p1"); !ok {
		t.Error("expected post entries untouched")
	}
}
