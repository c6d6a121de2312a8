package auth

import (
	"blog-admin/internal/api"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/models"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
)

// Api defines the set of authentication-related endpoints exposed by the system.
type Api interface {

	// Login checks username and password, sets the session cookie and returns the token
	Login(c *gin.Context)

	// Logout clears the session cookie
	Logout(c *gin.Context)

	// RefreshToken creates a new access token after validating the old one
	RefreshToken(c *gin.Context)

	// CreatePasswordHash creates a hashed password which can then be stored for a user
	CreatePasswordHash(c *gin.Context, admin Principal)
}

// Controller wires environment dependencies with authentication service methods.
// It fulfills the Api interface and delegates business logic to AuthService.
type Controller struct {
	*environment.Env
	*AuthService
	Settings Settings
}

// ensure Controller implements Api
var _ Api = &Controller{}

func NewController(env *environment.Env, settings Settings) *Controller {
	return &Controller{
		Env:         env,
		AuthService: &AuthService{Env: env},
		Settings:    settings,
	}
}

func (ac *Controller) Login(c *gin.Context) {
	user, err := ac.readLoginUser(c)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.SubTypeAuth), "Error reading login info: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	user.Prepare()
	err = user.Validate()
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.SubTypeAuth), "Error validating user: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("Error validating User: %v", err))
		return
	}

	err = ac.DoLogin(c.Request.Context(), &user)
	if err != nil {
		ac.LogInfof(logging.GetLogType(logging.SubTypeAuth, user.Username), "login of %s failed", user.Username)
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Login not successful"))
		return
	}

	token, _, err := GenerateToken(c.Request.Context(), ac.Settings, user.ID, user.Username, []string{user.Role})
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.SubTypeAuth), "Error creating JWT: %v", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error creating JWT"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.Settings.CookieName, token, int(ac.Settings.TokenTtl.Seconds()), "/", "", ac.Settings.SecureCookie, true)
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", token))
}

// readLoginUser accepts either the JSON envelope {"data":{"username":..,"password":..}} or form fields.
func (ac *Controller) readLoginUser(c *gin.Context) (models.User, error) {
	user := models.User{}

	if c.ContentType() != gin.MIMEJSON {
		user.Username = c.PostForm("username")
		user.Password = c.PostForm("password")
		return user, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return user, err
	}

	request := api.GenericRequest{}
	if err = request.Load(body); err != nil {
		return user, err
	}

	err = request.DecodeDataTo(&user)
	return user, err
}

func (ac *Controller) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.Settings.CookieName, "", -1, "/", "", ac.Settings.SecureCookie, true)
	c.Redirect(http.StatusFound, "/")
}

// RefreshToken reissues the token whose claims the bearer guard validated.
func (ac *Controller) RefreshToken(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("An authorization token was not supplied"))
		return
	}

	token, _, err := GenerateToken(c.Request.Context(), ac.Settings, claims.UserId, claims.Username, claims.Roles)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.SubTypeAuth, claims.Username), "error refreshing token: %v", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error refreshing JWT"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", token))
}

func (ac *Controller) CreatePasswordHash(c *gin.Context, admin Principal) {
	password := c.Param("pw")
	hashPw, hashErr := models.Hash(password)
	if hashErr != nil {
		ac.LogErrorf(logging.GetLogType(logging.SubTypeAuth, admin.Username()), "error hashing password: %v", hashErr)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("an error occurred"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "your encrypted (bcrypt) password", string(hashPw)))
}
