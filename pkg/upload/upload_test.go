package upload_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pillar-dev/pillar/internal/apierr"
	"github.com/pillar-dev/pillar/internal/apitest"
	"github.com/pillar-dev/pillar/pkg/api"
	"github.com/pillar-dev/pillar/pkg/upload"
)

func newUploadFixture(t *testing.T) string {
	t.Helper()

	fake := apitest.New()
	fake.AddUser("ann@example.com", "secret", "tok-ann", api.User{ID: "u1", NickName: "ann"})

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestAPIUploaderRoundTrip(t *testing.T) {
	baseURL := newUploadFixture(t)

	up := upload.NewAPIUploader(baseURL,
		upload.WithTokenSource(api.StaticToken("tok-ann")))

	img, err := up.Upload(context.Background(), "avatar.png", "image/png",
		strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if img.ID == "" {
		t.Error("expected server-assigned image id")
	}
	if !strings.HasSuffix(img.URL, "avatar.png") {
		t.Errorf("expected URL derived from filename, got %q", img.URL)
	}
}

func TestAPIUploaderRequiresAuth(t *testing.T) {
	baseURL := newUploadFixture(t)

	up := upload.NewAPIUploader(baseURL)

	_, err := up.Upload(context.Background(), "x.png", "image/png",
		strings.NewReader("bytes"))
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Category != apierr.CategoryAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestAPIUploaderSizeLimit(t *testing.T) {
	baseURL := newUploadFixture(t)

	up := upload.NewAPIUploader(baseURL,
		upload.WithTokenSource(api.StaticToken("tok-ann")),
		upload.WithMaxSize(8))

	_, err := up.Upload(context.Background(), "big.png", "image/png",
		strings.NewReader("more than eight bytes"))
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
