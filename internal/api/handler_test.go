package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filevault-backend/internal/auth"
	"filevault-backend/internal/jobs"
	"filevault-backend/internal/logging"
	"filevault-backend/internal/repository"
	"filevault-backend/internal/service"
	"filevault-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	*httptest.Server
	handler    *Handler
	dispatcher *jobs.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewInMemoryStore()
	verifier, err := auth.NewVerifier(store, bcrypt.MinCost)
	require.NoError(t, err)
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	dispatcher := &jobs.Recorder{}

	log := logging.Nop()
	users := service.NewUserService(store, verifier, auth.NewMemorySessionStore(time.Hour), log)
	files := service.NewFileService(store, blobs, dispatcher, log)

	h := NewHandler(users, files, log)
	h.AddHealthCheck("db", store.Ping)

	srv := httptest.NewServer(h.Routes([]string{"*"}))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, handler: h, dispatcher: dispatcher}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decodeBody[map[string]string](t, resp)["error"]
}

// signup registers a user and returns a session token for it
func (s *testServer) signup(t *testing.T, email, password string) string {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/users", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, s.URL+"/connect", nil)
	require.NoError(t, err)
	req.SetBasicAuth(email, password)

	connect, err := s.Client().Do(req)
	require.NoError(t, err)
	defer connect.Body.Close()
	require.Equal(t, http.StatusOK, connect.StatusCode)

	token := decodeBody[map[string]string](t, connect)["token"]
	require.NotEmpty(t, token)
	return token
}

func TestUsersAndSessions(t *testing.T) {
	srv := newTestServer(t)

	token := srv.signup(t, "bob@dylan.com", "toto1234!")

	resp := srv.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[UserResponse](t, resp)
	assert.Equal(t, "bob@dylan.com", me.Email)
	assert.NotEmpty(t, me.ID)

	resp = srv.do(t, http.MethodPost, "/users", "", map[string]string{"email": "bob@dylan.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Already exist", errorMessage(t, resp))

	resp = srv.do(t, http.MethodGet, "/disconnect", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", errorMessage(t, resp))

	resp = srv.do(t, http.MethodGet, "/disconnect", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"no body", nil, "Missing email"},
		{"missing email", map[string]string{"password": "x"}, "Missing email"},
		{"missing password", map[string]string{"email": "a@b.c"}, "Missing password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/users", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, errorMessage(t, resp))
		})
	}
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "bob@dylan.com", "toto1234!")

	cases := map[string]func(*http.Request){
		"no header":      func(r *http.Request) {},
		"wrong password": func(r *http.Request) { r.SetBasicAuth("bob@dylan.com", "nope") },
		"unknown email":  func(r *http.Request) { r.SetBasicAuth("who@dylan.com", "toto1234!") },
		"not base64":     func(r *http.Request) { r.Header.Set("Authorization", "Basic !!!") },
		"no colon": func(r *http.Request) {
			r.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("bob@dylan.com")))
		},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/connect", nil)
			require.NoError(t, err)
			setup(req)

			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestFilesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/files", "/files/8b5b3b5e-7d2a-4a8e-9b55-3b0a2b8b2f11", "/users/me"} {
		resp := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)

		resp = srv.do(t, http.MethodGet, path, "bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestFileLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.signup(t, "bob@dylan.com", "toto1234!")
	stranger := srv.signup(t, "alice@dylan.com", "secret")

	// 1. Folder at the root
	resp := srv.do(t, http.MethodPost, "/files", owner, map[string]any{"name": "Docs", "type": "folder"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	docs := decodeBody[FileResponse](t, resp)
	assert.Equal(t, "0", docs.ParentID)
	assert.Equal(t, "folder", docs.Type)
	assert.False(t, docs.IsPublic)

	// 2. File inside it
	resp = srv.do(t, http.MethodPost, "/files", owner, map[string]any{
		"name":     "a.txt",
		"type":     "file",
		"parentId": docs.ID,
		"data":     base64.StdEncoding.EncodeToString([]byte("hello")),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	file := decodeBody[FileResponse](t, resp)
	assert.Equal(t, docs.ID, file.ParentID)

	// 3. Owner reads it back
	resp = srv.do(t, http.MethodGet, "/files/"+file.ID, owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, file, decodeBody[FileResponse](t, resp))

	resp = srv.do(t, http.MethodGet, "/files/"+file.ID+"/data", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	// 4. Private to everybody else
	resp = srv.do(t, http.MethodGet, "/files/"+file.ID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", errorMessage(t, resp))
	resp = srv.do(t, http.MethodGet, "/files/"+file.ID+"/data", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = srv.do(t, http.MethodPut, "/files/"+file.ID+"/publish", stranger, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 5. Publish, then anonymous reads work
	resp = srv.do(t, http.MethodPut, "/files/"+file.ID+"/publish", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[FileResponse](t, resp).IsPublic)

	resp = srv.do(t, http.MethodGet, "/files/"+file.ID+"/data", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	resp = srv.do(t, http.MethodGet, "/files/"+file.ID, stranger, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 6. Unpublish
	resp = srv.do(t, http.MethodPut, "/files/"+file.ID+"/unpublish", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBody[FileResponse](t, resp).IsPublic)

	resp = srv.do(t, http.MethodGet, "/files/"+file.ID+"/data", stranger, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 7. Folders have no content
	resp = srv.do(t, http.MethodGet, "/files/"+docs.ID+"/data", owner, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "A folder doesn't have content", errorMessage(t, resp))
}

func TestCreateFileValidation(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "bob@dylan.com", "toto1234!")

	resp := srv.do(t, http.MethodPost, "/files", token, map[string]any{
		"name": "a.txt",
		"type": "file",
		"data": base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txt := decodeBody[FileResponse](t, resp)

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"missing name", map[string]any{"type": "folder"}, "Missing name"},
		{"missing type", map[string]any{"name": "x"}, "Missing type"},
		{"unknown type", map[string]any{"name": "x", "type": "video"}, "Missing type"},
		{"missing data", map[string]any{"name": "x", "type": "file"}, "Missing data"},
		{"unknown parent", map[string]any{"name": "x", "type": "folder", "parentId": "8b5b3b5e-7d2a-4a8e-9b55-3b0a2b8b2f11"}, "Parent not found"},
		{"malformed parent", map[string]any{"name": "x", "type": "folder", "parentId": "abc"}, "Parent not found"},
		{"parent is a file", map[string]any{"name": "x", "type": "folder", "parentId": txt.ID}, "Parent is not a folder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/files", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, errorMessage(t, resp))
		})
	}
}

func TestCreateFileAcceptsNumericRootParent(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "bob@dylan.com", "toto1234!")

	resp := srv.do(t, http.MethodPost, "/files", token, map[string]any{"name": "Docs", "type": "folder", "parentId": 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "0", decodeBody[FileResponse](t, resp).ParentID)
}

func TestCreateImageEnqueuesThumbnail(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "bob@dylan.com", "toto1234!")

	resp := srv.do(t, http.MethodPost, "/files", token, map[string]any{
		"name":     "pic.png",
		"type":     "image",
		"isPublic": true,
		"data":     base64.StdEncoding.EncodeToString([]byte("png")),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	img := decodeBody[FileResponse](t, resp)
	assert.True(t, img.IsPublic)

	queued := srv.dispatcher.Jobs()
	require.Len(t, queued, 1)
	assert.Equal(t, jobs.ThumbnailRetryPolicy, queued[0].Policy())

	// variants are served once the worker wrote them; until then they are missing
	resp = srv.do(t, http.MethodGet, "/files/"+img.ID+"/data?size=100", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/files/"+img.ID+"/data?size=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/files/"+img.ID+"/data", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestListFilesPagination(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "bob@dylan.com", "toto1234!")

	for i := range 21 {
		resp := srv.do(t, http.MethodPost, "/files", token, map[string]any{"name": fmt.Sprintf("d%02d", i), "type": "folder"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := srv.do(t, http.MethodGet, "/files", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]FileResponse](t, resp), 20)

	resp = srv.do(t, http.MethodGet, "/files?parentId=0&page=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody[[]FileResponse](t, resp)
	require.Len(t, page, 1)
	assert.Equal(t, "d20", page[0].Name)

	resp = srv.do(t, http.MethodGet, "/files?page=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]FileResponse](t, resp))

	resp = srv.do(t, http.MethodGet, "/files?parentId=nope", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]FileResponse](t, resp))

	resp = srv.do(t, http.MethodGet, "/files?page=-1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]FileResponse](t, resp), 20)
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t)
	srv.handler.AddHealthCheck("redis", func(ctx context.Context) error { return errors.New("down") })

	resp := srv.do(t, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]bool{"db": true, "redis": false}, decodeBody[map[string]bool](t, resp))
}

func TestGetFileDataInvalidSizeOnPrivateFile(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "bob@dylan.com", "toto1234!")

	resp := srv.do(t, http.MethodPost, "/files", token, map[string]any{
		"name": "pic.png",
		"type": "image",
		"data": base64.StdEncoding.EncodeToString([]byte("png")),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	img := decodeBody[FileResponse](t, resp)

	for _, size := range []string{"7", "abc"} {
		resp = srv.do(t, http.MethodGet, "/files/"+img.ID+"/data?size="+size, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, size)

		resp = srv.do(t, http.MethodGet, "/files/8b5b3b5e-7d2a-4a8e-9b55-3b0a2b8b2f11/data?size="+size, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, size)

		resp = srv.do(t, http.MethodGet, "/files/"+img.ID+"/data?size="+size, token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, size)
		assert.Equal(t, "Invalid size", errorMessage(t, resp))
	}
}
