package installer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"section-hub/internal/catalog"
	"section-hub/internal/catalog/catalogtest"
	"section-hub/internal/installer"
	"section-hub/internal/model"
	"section-hub/internal/shopify"
	"section-hub/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeThemes struct {
	themes []model.Theme
	err    error
	calls  int
}

func (f *fakeThemes) ListThemes(context.Context) ([]model.Theme, error) {
	f.calls++
	return f.themes, f.err
}

type publishCall struct {
	Theme   model.Theme
	Path    string
	Content string
}

type fakePublisher struct {
	err   error
	calls []publishCall
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) Publish(_ context.Context, theme model.Theme, path, content string) error {
	f.calls = append(f.calls, publishCall{Theme: theme, Path: path, Content: content})
	return f.err
}

var themes = []model.Theme{
	{ID: "gid://shopify/OnlineStoreTheme/1", Name: "Backup", Role: "UNPUBLISHED"},
	{ID: "gid://shopify/OnlineStoreTheme/2", Name: "Dawn", Role: model.RoleMain},
}

func heroCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	root := t.TempDir()
	catalogtest.Hero(t, root)
	return catalog.New(storage.NewJSONStore(root, nil), nil)
}

func TestInstall_Success(t *testing.T) {
	lister := &fakeThemes{themes: themes}
	pub := &fakePublisher{}
	in := installer.New(heroCatalog(t), lister, pub, nil)

	result, err := in.Install(context.Background(), "hero-001")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Dawn", result.ThemeName)
	assert.Equal(t, "section-hero-001.liquid", result.SectionFileName)
	assert.Equal(t, `Hero — Simple wurde erfolgreich in "Dawn" installiert!`, result.Message)
	assert.NotEmpty(t, result.InstallID)

	assert.Equal(t, 1, lister.calls)
	require.Len(t, pub.calls, 1)
	assert.Equal(t, themes[1], pub.calls[0].Theme)
	assert.Equal(t, "sections/section-hero-001.liquid", pub.calls[0].Path)
	assert.Contains(t, pub.calls[0].Content, "<style>h1{color:red}</style>H1")
}

func TestInstall_IsIdempotent(t *testing.T) {
	pub := &fakePublisher{}
	in := installer.New(heroCatalog(t), &fakeThemes{themes: themes}, pub, nil)

	first, err := in.Install(context.Background(), "hero-001")
	require.NoError(t, err)
	second, err := in.Install(context.Background(), "hero-001")
	require.NoError(t, err)

	require.Len(t, pub.calls, 2)
	assert.Equal(t, pub.calls[0], pub.calls[1])
	assert.NotEqual(t, first.InstallID, second.InstallID)
}

func TestInstall_NoMainTheme(t *testing.T) {
	lister := &fakeThemes{themes: themes[:1]}
	pub := &fakePublisher{}
	in := installer.New(heroCatalog(t), lister, pub, nil)

	result, err := in.Install(context.Background(), "hero-001")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, installer.ErrNoActiveTheme))
	assert.Empty(t, pub.calls)

	resp, status := installer.Envelope(result, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, installer.Response{Success: false, Error: "Kein aktives Theme gefunden."}, resp)
}

func TestInstall_InputAndLookupErrors(t *testing.T) {
	tests := []struct {
		name      string
		sectionID string
		kind      installer.Kind
		status    int
		message   string
	}{
		{"missing id", "", installer.KindInput, http.StatusBadRequest, "Section ID fehlt"},
		{"blank id", "   ", installer.KindInput, http.StatusBadRequest, "Section ID fehlt"},
		{"unknown id", "does-not-exist", installer.KindNotFound, http.StatusNotFound, "Section nicht gefunden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeThemes{themes: themes}
			pub := &fakePublisher{}
			in := installer.New(heroCatalog(t), lister, pub, nil)

			_, err := in.Install(context.Background(), tt.sectionID)
			var ie *installer.Error
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.kind, ie.Kind)
			assert.Equal(t, tt.message, ie.Message)
			assert.Equal(t, tt.status, ie.HTTPStatus())
			assert.Zero(t, lister.calls)
			assert.Empty(t, pub.calls)
		})
	}
}

func TestInstall_RemoteFailures(t *testing.T) {
	t.Run("theme listing fails", func(t *testing.T) {
		pub := &fakePublisher{}
		in := installer.New(heroCatalog(t), &fakeThemes{err: errors.New("connection reset")}, pub, nil)

		_, err := in.Install(context.Background(), "hero-001")
		resp, status := installer.Envelope(nil, err)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, installer.MsgUnexpected, resp.Error)
		assert.Empty(t, pub.calls)
	})

	t.Run("publisher returns a classified error", func(t *testing.T) {
		pub := &fakePublisher{err: installer.NewError(installer.KindValidation, "Fehler beim Erstellen der Section: files: bad", nil)}
		in := installer.New(heroCatalog(t), &fakeThemes{themes: themes}, pub, nil)

		_, err := in.Install(context.Background(), "hero-001")
		resp, status := installer.Envelope(nil, err)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Fehler beim Erstellen der Section: files: bad", resp.Error)
	})

	t.Run("publisher returns a plain error", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("dial tcp: timeout")}
		in := installer.New(heroCatalog(t), &fakeThemes{themes: themes}, pub, nil)

		_, err := in.Install(context.Background(), "hero-001")
		resp, _ := installer.Envelope(nil, err)
		assert.Equal(t, installer.MsgUnexpected, resp.Error)
		assert.NotContains(t, resp.Error, "dial tcp")
	})
}

func TestEnvelope_Success(t *testing.T) {
	resp, status := installer.Envelope(&installer.Result{
		Success:         true,
		Message:         "ok",
		ThemeName:       "Dawn",
		SectionFileName: "section-a.liquid",
		InstallID:       "id-1",
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	assert.Equal(t, "Dawn", resp.ThemeName)
	assert.Empty(t, resp.Error)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"ok","themeName":"Dawn","sectionFileName":"section-a.liquid","installId":"id-1"}`, string(raw))
}

func TestPayload_DryRun(t *testing.T) {
	pub := &fakePublisher{}
	in := installer.New(heroCatalog(t), &fakeThemes{themes: themes}, pub, nil)

	p, err := in.Payload("hero-001")
	require.NoError(t, err)
	assert.Equal(t, "sections/section-hero-001.liquid", p.Path)
	assert.True(t, strings.HasSuffix(p.Content, "<style>h1{color:red}</style>H1"))
	assert.Empty(t, pub.calls)

	_, err = in.Payload("nope")
	assert.Error(t, err)
}

// TestInstall_EndToEndUpsert runs the hero-001 install against a fake Admin API.
func TestInstall_EndToEndUpsert(t *testing.T) {
	var published string
	var mutations int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Query     string `json:"query"`
			Variables struct {
				Files []struct {
					Filename string `json:"filename"`
					Body     struct {
						Value string `json:"value"`
					} `json:"body"`
				} `json:"files"`
			} `json:"variables"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(body.Query, "themeFilesUpsert") {
			mutations++
			published = body.Variables.Files[0].Body.Value
			_, _ = io.WriteString(w, `{"data":{"themeFilesUpsert":{"upsertedThemeFiles":[{"filename":"`+body.Variables.Files[0].Filename+`"}],"userErrors":[]}}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"themes":{"nodes":[{"id":"gid://shopify/OnlineStoreTheme/9","name":"Live Theme","role":"MAIN"}]}}}`)
	}))
	defer srv.Close()

	client, err := shopify.NewClient(shopify.Config{BaseURL: srv.URL, AccessToken: "token"}, srv.Client(), nil)
	require.NoError(t, err)
	pub, err := shopify.NewPublisher(shopify.TransportUpsert, client)
	require.NoError(t, err)

	in := installer.New(heroCatalog(t), client, pub, nil)
	resp, status := installer.Envelope(in.Install(context.Background(), "hero-001"))

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	assert.Equal(t, "Live Theme", resp.ThemeName)
	assert.Equal(t, 1, mutations)
	assert.Contains(t, published, "<style>h1{color:red}</style>H1")
}
