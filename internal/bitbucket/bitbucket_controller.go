package bitbucket

import (
	"blog-admin/internal/api"
	"blog-admin/internal/auth"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/middlewares"
	"crypto/subtle"
	"github.com/gin-gonic/gin"
	"net/http"
)

const HookSecretHeader = "X-Hook-Secret"

// Api defines the endpoints that trigger a post import from Bitbucket.
type Api interface {
	// ImportPosts imports posts on behalf of an admin.
	ImportPosts(c *gin.Context, admin auth.Principal)

	// HandleHook imports posts when Bitbucket calls the webhook with the shared secret.
	HandleHook(c *gin.Context)
}

// Controller triggers imports. Importer is nil when Bitbucket is not configured.
type Controller struct {
	*environment.Env
	Importer      *Importer
	WebhookSecret string
}

// ensure Controller implements Api
var _ Api = &Controller{}

// ImportPosts imports the markdown files of the configured Bitbucket folder as posts.
//
// @ID importPosts
// @Summary Sync posts from Bitbucket into the database
// @Tags bitbucket
// @Router /bitbucket/posts [get]
// @Success 204
// @Failure 500 {object} api.RestJsonErrorResponse
// @Failure 503 {object} api.RestJsonErrorResponse
func (bc *Controller) ImportPosts(c *gin.Context, admin auth.Principal) {
	bc.LogInfof(bc.logType(c), "post import requested by %s", admin.Username())
	bc.runImport(c)
}

func (bc *Controller) HandleHook(c *gin.Context) {
	if bc.Importer == nil {
		bc.unavailable(c)
		return
	}

	secret := c.GetHeader(HookSecretHeader)
	if len(bc.WebhookSecret) == 0 || subtle.ConstantTimeCompare([]byte(secret), []byte(bc.WebhookSecret)) != 1 {
		bc.LogWarn(bc.logType(c), "webhook called without a valid secret")
		c.AbortWithStatusJSON(http.StatusForbidden, api.NewErrorResponse("invalid hook secret"))
		return
	}

	bc.runImport(c)
}

func (bc *Controller) runImport(c *gin.Context) {
	if bc.Importer == nil {
		bc.unavailable(c)
		return
	}

	if _, err := bc.Importer.Import(c.Request.Context()); err != nil {
		bc.LogError(bc.logType(c), err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error importing posts: %s", err.Error()))
		return
	}

	c.AbortWithStatus(http.StatusNoContent)
}

func (bc *Controller) unavailable(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, api.NewErrorResponse("post import from Bitbucket is not configured"))
}

func (bc *Controller) logType(c *gin.Context) []any {
	return logging.GetLogTypeRequest(logging.SubTypeImport, "", middlewares.RequestIdFrom(c))
}
