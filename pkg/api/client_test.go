package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pillar-dev/pillar/internal/apierr"
	"github.com/pillar-dev/pillar/internal/apitest"
	"github.com/pillar-dev/pillar/pkg/api"
)

func newFixture(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()

	fake := apitest.New()
	fake.AddColumn(api.Column{ID: "c1", Title: "go notes", Description: "d1"})
	fake.AddColumn(api.Column{ID: "c2", Title: "rust notes", Description: "d2"})
	fake.AddPost(api.Post{ID: "p1", Title: "first", Content: "body one", Column: "c1"})
	fake.AddPost(api.Post{ID: "p2", Title: "second", Content: "body two", Column: "c2"})
	fake.AddUser("ann@example.com", "secret", "tok-ann", api.User{ID: "u1", NickName: "ann", Email: "ann@example.com"})

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, api.WithTokenSource(api.StaticToken("tok-ann")))
	return fake, client
}

func TestColumnsPaging(t *testing.T) {
	_, client := newFixture(t)

	list, err := client.Columns(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if list.Count != 2 {
		t.Errorf("expected count 2, got %d", list.Count)
	}
	if len(list.List) != 1 || list.List[0].ID != "c1" {
		t.Errorf("expected page of [c1], got %+v", list.List)
	}

	list, err = client.Columns(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("Columns page 2: %v", err)
	}
	if len(list.List) != 1 || list.List[0].ID != "c2" {
		t.Errorf("expected page of [c2], got %+v", list.List)
	}
}

func TestColumnNotFound(t *testing.T) {
	_, client := newFixture(t)

	_, err := client.Column(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}

	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T", err)
	}
	if ae.Code != 404 || ae.Category != apierr.CategoryNotFound {
		t.Errorf("expected 404/not_found, got %d/%s", ae.Code, ae.Category)
	}
}

func TestColumnPostsStripContent(t *testing.T) {
	_, client := newFixture(t)

	list, err := client.ColumnPosts(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ColumnPosts: %v", err)
	}
	if len(list.List) != 1 {
		t.Fatalf("expected 1 post, got %d", len(list.List))
	}
	if list.List[0].Content != "" {
		t.Error("list views must not carry content bodies")
	}

	full, err := client.Post(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if full.Content != "body one" {
		t.Errorf("detail view should carry content, got %q", full.Content)
	}
}

func TestLogin(t *testing.T) {
	_, client := newFixture(t)

	token, err := client.Login(context.Background(), "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-ann" {
		t.Errorf("expected tok-ann, got %q", token)
	}

	_, err = client.Login(context.Background(), "ann@example.com", "wrong")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Category != apierr.CategoryAuth {
		t.Errorf("expected auth error for bad password, got %v", err)
	}
}

func TestPostCRUD(t *testing.T) {
	_, client := newFixture(t)
	ctx := context.Background()

	created, err := client.CreatePost(ctx, api.NewPost{
		Title: "new post", Content: "hello", Column: "c1", Author: "u1",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if created.Author == nil || created.Author.ID != "u1" {
		t.Errorf("expected author u1, got %+v", created.Author)
	}

	updated, err := client.UpdatePost(ctx, created.ID, api.PostPatch{Title: "renamed"})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Title != "renamed" || updated.Content != "hello" {
		t.Errorf("patch should change title only, got %+v", updated)
	}

	deleted, err := client.DeletePost(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("expected deleted id %s, got %s", created.ID, deleted.ID)
	}

	if _, err := client.Post(ctx, created.ID); err == nil {
		t.Error("expected 404 after delete")
	}
}

func TestCredentialThreadedPerRequest(t *testing.T) {
	fake := apitest.New()
	fake.AddUser("ann@example.com", "secret", "tok-ann", api.User{ID: "u1", NickName: "ann"})

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	token := ""
	client := api.NewClient(srv.URL, api.WithTokenSource(api.TokenSourceFunc(func() string {
		return token
	})))

	// Unauthenticated request is rejected.
	if _, err := client.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected auth failure without token")
	}

	// Same client, token appears in the source: next request carries it.
	token = "tok-ann"
	u, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if u.NickName != "ann" {
		t.Errorf("expected ann, got %q", u.NickName)
	}
}

func TestTransportError(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1")

	_, err := client.Columns(context.Background(), 1, 5)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Category != apierr.CategoryTransport {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	_, err := client.Columns(context.Background(), 1, 5)

	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Category != apierr.CategoryDecode {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestInjectedServerFailure(t *testing.T) {
	fake, client := newFixture(t)
	fake.FailNext("maintenance")

	_, err := client.Columns(context.Background(), 1, 5)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != 503 {
		t.Errorf("expected 503 envelope error, got %v", err)
	}
}
