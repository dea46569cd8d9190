package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/rendium/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/rendium/pkg/config"
	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/core/services"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/metadata"
)

const testSecret = "router-test-secret"

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cfg := &config.Config{JWTSecret: testSecret, FrontendURL: "http://localhost:8080"}
	log := logger.NewNop()
	return NewRouter(cfg, log, Deps{
		Bookmarks: services.NewBookmarkService(repo, repo, nil),
		Folders:   services.NewFolderService(repo),
		Transfer:  services.NewTransferService(repo, repo, nil, log),
		Extractor: metadata.New(metadata.WithTimeout(2 * time.Second)),
	})
}

func (c *apiClient) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: c.token})
	}
	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, req)
	return rr
}

func (c *apiClient) json(method, path string, payload interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(b)
	}
	return c.do(method, path, body, "application/json")
}

func clientFor(t *testing.T, router http.Handler, email string) *apiClient {
	return &apiClient{t: t, router: router, token: generateUserToken(t, email)}
}

func generateUserToken(t *testing.T, email string) string {
	t.Helper()
	token, _, err := SignToken([]byte(testSecret), email, time.Hour)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[healthzResponse](t, rr).Status)
}

func TestAPIRequiresAuth(t *testing.T) {
	anon := &apiClient{t: t, router: newTestRouter(t)}
	rr := anon.do(http.MethodGet, "/api/v1/bookmarks", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMetadataEndpoint(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<title>Hello</title><meta property="og:image" content="/a.png">`)
	}))
	t.Cleanup(page.Close)

	c := clientFor(t, newTestRouter(t), "alice@example.com")

	rr := c.do(http.MethodGet, "/api/v1/metadata?url="+page.URL, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	m := decode[domain.Metadata](t, rr)
	assert.Equal(t, "Hello", m.Title)
	assert.Equal(t, page.URL+"/a.png", m.PreviewImageURL)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/v1/metadata", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/v1/metadata?url=not+a+url", nil, "").Code)
}

func TestBookmarkEndpoints(t *testing.T) {
	router := newTestRouter(t)
	alice := clientFor(t, router, "alice@example.com")
	bob := clientFor(t, router, "bob@example.com")

	rr := alice.json(http.MethodPost, "/api/v1/bookmarks", map[string]string{"url": "https://go.dev", "title": "Go"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.Bookmark](t, rr)
	path := fmt.Sprintf("/api/v1/bookmarks/%d", created.ID)

	assert.Equal(t, http.StatusBadRequest, alice.json(http.MethodPost, "/api/v1/bookmarks", map[string]string{"url": ""}).Code)
	assert.Equal(t, http.StatusBadRequest, alice.json(http.MethodPost, "/api/v1/bookmarks", map[string]string{"url": "not a url"}).Code)

	assert.Equal(t, http.StatusForbidden, bob.do(http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodGet, "/api/v1/bookmarks/9999", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, alice.do(http.MethodGet, "/api/v1/bookmarks/abc", nil, "").Code)

	rr = alice.json(http.MethodPatch, path, map[string]string{"description": "The Go site"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "The Go site", decode[domain.Bookmark](t, rr).Description)

	assert.Equal(t, http.StatusNoContent, alice.json(http.MethodPut, path+"/pin", map[string]bool{"pinned": true}).Code)
	assert.Equal(t, http.StatusBadRequest, alice.json(http.MethodPut, path+"/pin", map[string]string{}).Code)

	rr = alice.do(http.MethodGet, "/api/v1/bookmarks?pinned=true", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.Bookmark](t, rr), 1)
	assert.Equal(t, http.StatusBadRequest, alice.do(http.MethodGet, "/api/v1/bookmarks?pinned=maybe", nil, "").Code)

	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodPost, path+"/trash", nil, "").Code)
	rr = alice.do(http.MethodGet, "/api/v1/bookmarks/trash", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.Bookmark](t, rr), 1)

	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodPost, path+"/restore", nil, "").Code)
	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodGet, path, nil, "").Code)
}

func TestFolderEndpoints(t *testing.T) {
	router := newTestRouter(t)
	alice := clientFor(t, router, "alice@example.com")

	rr := alice.json(http.MethodPost, "/api/v1/folders", map[string]string{"name": "Work", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, rr.Code)
	folder := decode[domain.Folder](t, rr)
	folderPath := fmt.Sprintf("/api/v1/folders/%d", folder.ID)

	assert.Equal(t, http.StatusBadRequest, alice.json(http.MethodPost, "/api/v1/folders", map[string]string{"name": ""}).Code)

	rr = alice.json(http.MethodPost, "/api/v1/bookmarks", map[string]interface{}{"url": "https://a.example.com", "folder_id": folder.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	b := decode[domain.Bookmark](t, rr)

	rr = alice.json(http.MethodPut, folderPath, map[string]string{"name": "Office"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Office", decode[domain.Folder](t, rr).Name)

	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, folderPath, nil, "").Code)

	rr = alice.do(http.MethodGet, fmt.Sprintf("/api/v1/bookmarks/%d", b.ID), nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[domain.Bookmark](t, rr).FolderID)

	rr = alice.do(http.MethodGet, "/api/v1/folders", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]domain.Folder](t, rr))
}

const importFile = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 COLOR="#00ff00">Reading</H3>
    <DL><p>
        <DT><A HREF="https://blog.example.com">Blog</A>
    </DL><p>
    <DT><A HREF="https://top.example.com">Top</A>
</DL><p>
`

func TestImportExportClear(t *testing.T) {
	router := newTestRouter(t)
	alice := clientFor(t, router, "alice@example.com")

	rr := alice.do(http.MethodPost, "/api/v1/import", strings.NewReader(importFile), "text/html")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[importResponse](t, rr)
	assert.Equal(t, "Import Successful", res.Message)
	assert.Equal(t, domain.ImportSummary{Imported: 2, FoldersCreated: 1}, res.Summary)

	rr = alice.do(http.MethodPost, "/api/v1/import", strings.NewReader("not a bookmark file"), "text/plain")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Import Failed", decode[importResponse](t, rr).Message)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "bookmarks.html")
	require.NoError(t, err)
	_, _ = part.Write([]byte(importFile))
	require.NoError(t, mw.Close())
	rr = alice.do(http.MethodPost, "/api/v1/import", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = alice.do(http.MethodGet, "/api/v1/export", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Body.String(), `HREF="https://blog.example.com"`)
	assert.Contains(t, rr.Body.String(), `COLOR="#00ff00"`)

	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, "/api/v1/data", nil, "").Code)

	rr = alice.do(http.MethodGet, "/api/v1/bookmarks", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]domain.Bookmark](t, rr))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest},
		{&metadata.ParseError{URL: "x"}, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{fmt.Errorf("folder 1: %w", domain.ErrNotFound), http.StatusNotFound},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
