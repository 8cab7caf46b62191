package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testServer struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                 "0",
		Env:                  "test",
		JWTSecret:            testSecret,
		SessionTTLHours:      24,
		PageSize:             10,
		IndexCacheTTLSeconds: 20,
		MediaRoot:            t.TempDir(),
		MaxUploadMB:          5,
		Language:             "en",
		FeatureFlags:         "open_signup=on,follow_stats=on",
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, testConfig(t), nil)
}

func newTestServerWith(t *testing.T, cfg *config.Config, redisClient *redis.Client) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	srv, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)
	return &testServer{srv: srv, app: srv.NewApp(), db: db}
}

// sessionCookieFor issues a session for user as the login handler would.
func (ts *testServer) sessionCookieFor(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, _, err := ts.srv.sessions.Issue(user.ID, user.Username)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: token}
}

// do sends req as user (anonymous when nil).
func (ts *testServer) do(t *testing.T, req *http.Request, user *models.User) *http.Response {
	t.Helper()
	if user != nil {
		req.AddCookie(ts.sessionCookieFor(t, user))
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) get(t *testing.T, path string, user *models.User) *http.Response {
	t.Helper()
	return ts.do(t, httptest.NewRequest(http.MethodGet, path, nil), user)
}

func (ts *testServer) postForm(t *testing.T, path string, values url.Values, user *models.User) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req, user)
}

// postMultipart submits fields plus an optional image file named "image".
func (ts *testServer) postMultipart(t *testing.T, path string, fields map[string]string, image []byte, user *models.User) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="small.gif"`)
		h.Set("Content-Type", "image/gif")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.do(t, req, user)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
