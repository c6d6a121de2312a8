package posts_test

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/database"
	"blog-admin/internal/environment"
	"blog-admin/internal/markdown"
	"blog-admin/internal/middlewares"
	"blog-admin/internal/models"
	"blog-admin/internal/posts"
	"blog-admin/internal/testutil"
	"context"
	"encoding/json"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

var settings = auth.Settings{
	SigningKey: []byte("test-signing-key"),
	TokenTtl:   time.Hour,
	CookieName: "__session",
}

// recordingRepository delegates to inner and records every call.
type recordingRepository struct {
	inner database.Repository
	calls []string
}

func (r *recordingRepository) FindPostBySlug(ctx context.Context, slug string, post *models.Post) error {
	r.calls = append(r.calls, "FindPostBySlug")
	return r.inner.FindPostBySlug(ctx, slug, post)
}

func (r *recordingRepository) FindAllPosts(ctx context.Context, posts *[]models.Post) error {
	r.calls = append(r.calls, "FindAllPosts")
	return r.inner.FindAllPosts(ctx, posts)
}

func (r *recordingRepository) FindPostsBySource(ctx context.Context, source string, posts *[]models.Post) error {
	r.calls = append(r.calls, "FindPostsBySource")
	return r.inner.FindPostsBySource(ctx, source, posts)
}

func (r *recordingRepository) CreatePost(ctx context.Context, post *models.Post) error {
	r.calls = append(r.calls, "CreatePost")
	return r.inner.CreatePost(ctx, post)
}

func (r *recordingRepository) UpdatePostBySlug(ctx context.Context, slug string, fields models.PostFields) error {
	r.calls = append(r.calls, "UpdatePostBySlug")
	return r.inner.UpdatePostBySlug(ctx, slug, fields)
}

func (r *recordingRepository) DeletePostBySlug(ctx context.Context, slug string) error {
	r.calls = append(r.calls, "DeletePostBySlug")
	return r.inner.DeletePostBySlug(ctx, slug)
}

func (r *recordingRepository) DeletePostsByIds(ctx context.Context, postIds []uint) error {
	r.calls = append(r.calls, "DeletePostsByIds")
	return r.inner.DeletePostsByIds(ctx, postIds)
}

func (r *recordingRepository) UpsertPosts(ctx context.Context, posts []models.Post) error {
	r.calls = append(r.calls, "UpsertPosts")
	return r.inner.UpsertPosts(ctx, posts)
}

func (r *recordingRepository) FindPostsBySearchTermSimple(ctx context.Context, searchTerm string, posts *[]models.Post) error {
	r.calls = append(r.calls, "FindPostsBySearchTermSimple")
	return r.inner.FindPostsBySearchTermSimple(ctx, searchTerm, posts)
}

func (r *recordingRepository) CountPostsMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error {
	r.calls = append(r.calls, "CountPostsMatchesBySearchTermSimple")
	return r.inner.CountPostsMatchesBySearchTermSimple(ctx, searchTerm, matchCount)
}

func (r *recordingRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	r.calls = append(r.calls, "FindUserLoginCredentials")
	return r.inner.FindUserLoginCredentials(ctx, username, user)
}

func (r *recordingRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.calls = append(r.calls, "CreateUser")
	return r.inner.CreateUser(ctx, user)
}

// failingRepository fails every post lookup.
type failingRepository struct {
	database.NullRepository
}

func (f *failingRepository) FindPostBySlug(ctx context.Context, slug string, post *models.Post) error {
	return errors.New("database unavailable")
}

func (f *failingRepository) UpdatePostBySlug(ctx context.Context, slug string, fields models.PostFields) error {
	return errors.New("database unavailable")
}

type fixture struct {
	engine *gin.Engine
	env    *environment.Env
	repo   *recordingRepository
}

func newEngine(env *environment.Env) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := posts.NewService(env, markdown.NewGoldmarkRenderer(markdown.Options{}))
	controller := posts.NewController(env, service)
	guard := middlewares.NewSessionGuard(settings)

	engine := gin.New()
	engine.GET("/posts", controller.ListPosts)
	engine.GET("/posts/:slug", controller.GetPost)
	engine.GET("/posts/admin", guard.RequireAdmin(controller.GetAdminIndex))
	engine.GET("/posts/admin/:slug", guard.RequireAdmin(controller.GetEditor))
	engine.POST("/posts/admin/:slug", guard.RequireAdmin(controller.SubmitEditor))
	return engine
}

func setup(t *testing.T, seed ...models.Post) fixture {
	t.Helper()

	env := testutil.SetupSqliteEnv(t)
	testutil.SeedPosts(t, env, seed...)

	repo := &recordingRepository{inner: env.Repository}
	env = env.WithRepository(repo)

	return fixture{engine: newEngine(env), env: env, repo: repo}
}

func adminCookie(t *testing.T, roles ...string) *http.Cookie {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{models.RoleAdmin}
	}
	token, _, err := auth.GenerateToken(context.Background(), settings, 1, "admin", roles)
	require.NoError(t, err)
	return &http.Cookie{Name: settings.CookieName, Value: token}
}

func (f fixture) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f fixture) submit(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f fixture) exists(t *testing.T, slug string) bool {
	t.Helper()
	var post models.Post
	err := f.env.FindPostBySlug(context.Background(), slug, &post)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type fieldErrorsBody struct {
	Errors map[string]string `json:"errors"`
}

var hello = models.Post{Slug: "hello", Title: "Hello", Markdown: "# Hi"}

// ####################### public view

func TestGetPost_Renders(t *testing.T) {
	f := setup(t, hello)

	w := f.get(t, "/posts/hello", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[posts.PostView](t, w)
	assert.Equal(t, "Hello", view.Title)
	assert.Contains(t, view.Html, `<h1 id="hi">Hi</h1>`)

	again := decode[posts.PostView](t, f.get(t, "/posts/hello", nil))
	assert.Equal(t, view, again)
}

func TestGetPost_NotFound(t *testing.T) {
	f := setup(t, hello)

	for _, slug := range []string{"missing", "new", "HELLO", "hello-world"} {
		w := f.get(t, "/posts/"+slug, nil)

		assert.Equal(t, http.StatusNotFound, w.Code, slug)
		body := decode[errorBody](t, w)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "Post "+slug+" not found", body.Message)
	}
}

func TestGetPost_StoreError(t *testing.T) {
	engine := newEngine(environment.Environment(&failingRepository{}, nil))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/hello", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListPosts_CollationOrder(t *testing.T) {
	f := setup(t,
		models.Post{Slug: "zebra", Title: "Zebra", Markdown: "z"},
		models.Post{Slug: "apple", Title: "apple", Markdown: "a"},
		models.Post{Slug: "mango", Title: "Mango", Markdown: "m"},
	)

	w := f.get(t, "/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[[]models.PostSummary](t, w)
	assert.Equal(t, []models.PostSummary{
		{Slug: "apple", Title: "apple"},
		{Slug: "mango", Title: "Mango"},
		{Slug: "zebra", Title: "Zebra"},
	}, got)
}

// ####################### session guard

func TestAdminRoutes_Unauthenticated(t *testing.T) {
	f := setup(t, hello)

	requests := map[string]func() *httptest.ResponseRecorder{
		"/posts/admin":       func() *httptest.ResponseRecorder { return f.get(t, "/posts/admin", nil) },
		"/posts/admin/hello": func() *httptest.ResponseRecorder { return f.get(t, "/posts/admin/hello", nil) },
		"/posts/admin/new": func() *httptest.ResponseRecorder {
			return f.submit(t, "/posts/admin/new", url.Values{"intent": {"create"}, "title": {"t"}, "slug": {"s"}, "markdown": {"m"}}, nil)
		},
		"/posts/admin/hello?x=1": func() *httptest.ResponseRecorder {
			return f.submit(t, "/posts/admin/hello?x=1", url.Values{"intent": {"delete"}}, nil)
		},
	}

	for path, do := range requests {
		w := do()
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, middlewares.LoginLocation(path), w.Header().Get("Location"))
	}

	assert.Empty(t, f.repo.calls)
	assert.True(t, f.exists(t, "hello"))
}

func TestAdminRoutes_NonAdmin(t *testing.T) {
	f := setup(t, hello)

	w := f.submit(t, "/posts/admin/hello", url.Values{"intent": {"delete"}}, adminCookie(t, models.RoleUser))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Empty(t, f.repo.calls)
}

// ####################### admin index & editor load

func TestGetAdminIndex(t *testing.T) {
	f := setup(t)

	w := f.get(t, "/posts/admin", adminCookie(t))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"links":[{"href":"/posts/admin/new","label":"Create New Post"}]}`, w.Body.String())
	assert.Empty(t, f.repo.calls)
}

func TestGetEditor_New(t *testing.T) {
	f := setup(t)

	w := f.get(t, "/posts/admin/new", adminCookie(t))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"post":null,"isNew":true}`, w.Body.String())
	assert.Empty(t, f.repo.calls)
}

func TestGetEditor_Existing(t *testing.T) {
	f := setup(t, hello)

	w := f.get(t, "/posts/admin/hello", adminCookie(t))
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode[posts.EditorPayload](t, w)
	assert.False(t, payload.IsNew)
	require.NotNil(t, payload.Post)
	assert.Equal(t, "hello", payload.Post.Slug)
	assert.Equal(t, "Hello", payload.Post.Title)
	assert.Equal(t, "# Hi", payload.Post.Markdown)
}

func TestGetEditor_NotFound(t *testing.T) {
	f := setup(t)

	w := f.get(t, "/posts/admin/nope", adminCookie(t))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `The post with the slug "nope" doesn't exist!`, decode[errorBody](t, w).Message)
}

func TestGetEditor_StoreError(t *testing.T) {
	engine := newEngine(environment.Environment(&failingRepository{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/posts/admin/hello", nil)
	req.AddCookie(adminCookie(t))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ####################### editor submit

func TestSubmitEditor_ValidationErrors(t *testing.T) {
	f := setup(t)

	w := f.submit(t, "/posts/admin/new", url.Values{
		"intent":   {"create"},
		"title":    {""},
		"slug":     {"abc"},
		"markdown": {"x"},
	}, adminCookie(t))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[fieldErrorsBody](t, w)
	assert.Equal(t, map[string]string{"title": "Title is required"}, body.Errors)
	assert.False(t, f.exists(t, "abc"))
}

func TestSubmitEditor_Create(t *testing.T) {
	f := setup(t)

	w := f.submit(t, "/posts/admin/new", url.Values{
		"intent":   {"create"},
		"title":    {"Fresh"},
		"slug":     {"fresh-post"},
		"markdown": {"content"},
	}, adminCookie(t))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/admin", w.Header().Get("Location"))
	assert.True(t, f.exists(t, "fresh-post"))
	assert.False(t, f.exists(t, "new"))

	view := decode[posts.PostView](t, f.get(t, "/posts/fresh-post", nil))
	assert.Equal(t, "Fresh", view.Title)
}

func TestSubmitEditor_CreateDuplicateSlug(t *testing.T) {
	f := setup(t, hello)

	w := f.submit(t, "/posts/admin/new", url.Values{
		"intent":   {"create"},
		"title":    {"Another"},
		"slug":     {"hello"},
		"markdown": {"x"},
	}, adminCookie(t))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]string{"slug": "A post with this slug already exists"}, decode[fieldErrorsBody](t, w).Errors)
}

func TestSubmitEditor_UpdateRenames(t *testing.T) {
	f := setup(t, hello)

	w := f.submit(t, "/posts/admin/hello", url.Values{
		"intent":   {"update"},
		"title":    {"Hello again"},
		"slug":     {"hello-again"},
		"markdown": {"## Again"},
	}, adminCookie(t))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/admin", w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, f.get(t, "/posts/hello", nil).Code)

	renamed := f.get(t, "/posts/hello-again", nil)
	require.Equal(t, http.StatusOK, renamed.Code)
	view := decode[posts.PostView](t, renamed)
	assert.Equal(t, "Hello again", view.Title)
	assert.Contains(t, view.Html, `<h2 id="again">Again</h2>`)
}

func TestSubmitEditor_UpdateKeepsSlug(t *testing.T) {
	f := setup(t, hello)

	w := f.submit(t, "/posts/admin/hello", url.Values{
		"title":    {"Changed"},
		"slug":     {"hello"},
		"markdown": {"# Hi"},
	}, adminCookie(t))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "Changed", decode[posts.PostView](t, f.get(t, "/posts/hello", nil)).Title)
}

func TestSubmitEditor_UpdateAbsent(t *testing.T) {
	f := setup(t)

	w := f.submit(t, "/posts/admin/ghost", url.Values{
		"intent":   {"update"},
		"title":    {"t"},
		"slug":     {"ghost"},
		"markdown": {"m"},
	}, adminCookie(t))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `The post with the slug "ghost" doesn't exist!`, decode[errorBody](t, w).Message)
}

func TestSubmitEditor_RenameOntoExisting(t *testing.T) {
	f := setup(t, hello, models.Post{Slug: "other", Title: "Other", Markdown: "o"})

	w := f.submit(t, "/posts/admin/other", url.Values{
		"intent":   {"update"},
		"title":    {"Other"},
		"slug":     {"hello"},
		"markdown": {"o"},
	}, adminCookie(t))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A post with this slug already exists", decode[fieldErrorsBody](t, w).Errors["slug"])
	assert.True(t, f.exists(t, "other"))
}

func TestSubmitEditor_Delete(t *testing.T) {
	f := setup(t, hello)

	w := f.submit(t, "/posts/admin/hello", url.Values{"intent": {"delete"}}, adminCookie(t))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/admin", w.Header().Get("Location"))
	assert.False(t, f.exists(t, "hello"))
}

func TestSubmitEditor_DeleteAbsent(t *testing.T) {
	f := setup(t)

	w := f.submit(t, "/posts/admin/ghost", url.Values{"intent": {"delete"}}, adminCookie(t))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/admin", w.Header().Get("Location"))
	assert.Equal(t, []string{"DeletePostBySlug"}, f.repo.calls)
}

func TestSubmitEditor_StoreError(t *testing.T) {
	engine := newEngine(environment.Environment(&failingRepository{}, nil))

	form := url.Values{"intent": {"update"}, "title": {"t"}, "slug": {"s"}, "markdown": {"m"}}
	req := httptest.NewRequest(http.MethodPost, "/posts/admin/hello", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(adminCookie(t))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ####################### invariants

func TestService_SlugRequired(t *testing.T) {
	env := environment.Null()
	service := posts.NewService(env, markdown.NewGoldmarkRenderer(markdown.Options{}))
	admin, err := auth.AdminFromClaims(&auth.Claims{Username: "admin", Roles: []string{models.RoleAdmin}})
	require.NoError(t, err)

	_, err = service.View(context.Background(), "")
	assert.ErrorIs(t, err, posts.ErrSlugRequired)

	_, err = service.LoadEditor(context.Background(), admin, "")
	assert.ErrorIs(t, err, posts.ErrSlugRequired)

	_, err = service.Submit(context.Background(), admin, "", posts.Submission{Intent: "delete"})
	assert.ErrorIs(t, err, posts.ErrSlugRequired)
}
