package auth_test

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/environment"
	"blog-admin/internal/middlewares"
	"blog-admin/internal/models"
	"blog-admin/internal/testutil"
	"context"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func setupController(t *testing.T) (*auth.Controller, *environment.Env) {
	t.Helper()

	env := testutil.SetupSqliteEnv(t)
	controller := auth.NewController(env, settings)

	require.NoError(t, controller.RegisterUser(context.Background(), &models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "secret",
		Role:     models.RoleAdmin,
	}))
	return controller, env
}

func engineFor(controller *auth.Controller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/login", controller.Login)
	engine.POST("/logout", controller.Logout)
	engine.GET("/token/refresh", middlewares.NewSessionGuard(settings).BearerAuth(), controller.RefreshToken)
	return engine
}

func TestRegisterUser_StoresHash(t *testing.T) {
	_, env := setupController(t)

	var stored models.User
	require.NoError(t, env.FindUserLoginCredentials(context.Background(), "admin", &stored))
	assert.NotEqual(t, "secret", stored.Password)
	assert.NoError(t, models.VerifyPassword(stored.Password, "secret"))
	assert.True(t, stored.IsAdmin())
}

func TestLogin_Json(t *testing.T) {
	controller, _ := setupController(t)
	engine := engineFor(controller)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"data":{"username":"admin","password":"secret"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Data   string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)

	claims, err := auth.ValidateToken(body.Data, settings.SigningKey)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.HasRole(models.RoleAdmin))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "__session", cookies[0].Name)
	assert.Equal(t, body.Data, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_Form(t *testing.T) {
	controller, _ := setupController(t)
	engine := engineFor(controller)

	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_Failures(t *testing.T) {
	controller, _ := setupController(t)
	engine := engineFor(controller)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "wrong password", body: `{"data":{"username":"admin","password":"nope"}}`, want: http.StatusUnauthorized},
		{name: "unknown user", body: `{"data":{"username":"ghost","password":"secret"}}`, want: http.StatusUnauthorized},
		{name: "missing password", body: `{"data":{"username":"admin"}}`, want: http.StatusUnprocessableEntity},
		{name: "broken json", body: `{"data":`, want: http.StatusUnprocessableEntity},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(test.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, test.want, w.Code)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestLogout(t *testing.T) {
	controller, _ := setupController(t)
	engine := engineFor(controller)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "__session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestRefreshToken(t *testing.T) {
	controller, _ := setupController(t)
	engine := engineFor(controller)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token/refresh", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/token/refresh", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	tokenString, _, err := auth.GenerateToken(context.Background(), settings, 1, "admin", []string{"admin"})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/token/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	claims, err := auth.ValidateToken(body.Data, settings.SigningKey)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestRefreshToken_WithoutGuard(t *testing.T) {
	controller, _ := setupController(t)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/token/refresh", nil)
	controller.RefreshToken(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePasswordHash(t *testing.T) {
	controller, _ := setupController(t)

	admin, err := auth.AdminFromClaims(&auth.Claims{Username: "admin", Roles: []string{"admin"}})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "pw", Value: "hunter2"}}

	controller.CreatePasswordHash(c, admin)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NoError(t, models.VerifyPassword(body.Data, "hunter2"))
}
