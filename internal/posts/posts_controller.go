package posts

import (
	"blog-admin/internal/api"
	"blog-admin/internal/auth"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/middlewares"
	"blog-admin/internal/result"
	"github.com/gin-gonic/gin"
	"net/http"
)

// Api defines the public post endpoints and the admin editor endpoints.
// Admin endpoints take the admin Principal handed over by the session guard.
type Api interface {
	ListPosts(c *gin.Context)
	GetPost(c *gin.Context)
	GetAdminIndex(c *gin.Context, admin auth.Principal)
	GetEditor(c *gin.Context, admin auth.Principal)
	SubmitEditor(c *gin.Context, admin auth.Principal)
}

// Controller maps post service results to HTTP responses.
type Controller struct {
	*environment.Env
	*Service
}

// ensure Controller implements Api
var _ Api = &Controller{}

func NewController(env *environment.Env, service *Service) *Controller {
	return &Controller{Env: env, Service: service}
}

// ListPosts returns slug and title of all posts ordered by title.
//
// @ID listPosts
// @Tags posts
// @Router /posts [get]
// @Success 200 {array} models.PostSummary
// @Failure 500 {object} api.RestJsonErrorResponse
func (pc *Controller) ListPosts(c *gin.Context) {
	summaries, err := pc.List(c.Request.Context())
	if err != nil {
		pc.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetPost returns title and rendered HTML of a post.
//
// @ID getPost
// @Tags posts
// @Router /posts/{slug} [get]
// @Param slug path string true "Post slug"
// @Success 200 {object} posts.PostView
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (pc *Controller) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	r, err := pc.View(c.Request.Context(), slug)
	if err != nil {
		pc.fail(c, slug, err)
		return
	}
	respond(c, r)
}

// GetAdminIndex returns the links of the admin start page.
func (pc *Controller) GetAdminIndex(c *gin.Context, admin auth.Principal) {
	c.JSON(http.StatusOK, AdminIndex(admin))
}

// GetEditor returns the post to edit, or an empty template for the slug "new".
//
// @ID getEditor
// @Tags admin
// @Router /posts/admin/{slug} [get]
// @Param slug path string true "Post slug or new"
// @Success 200 {object} posts.EditorPayload
// @Failure 302
// @Failure 404 {object} api.RestJsonErrorResponse
func (pc *Controller) GetEditor(c *gin.Context, admin auth.Principal) {
	slug := c.Param("slug")

	r, err := pc.LoadEditor(c.Request.Context(), admin, slug)
	if err != nil {
		pc.fail(c, slug, err)
		return
	}
	respond(c, r)
}

// SubmitEditor creates, updates or deletes a post and redirects to the admin index.
//
// @ID submitEditor
// @Tags admin
// @Router /posts/admin/{slug} [post]
// @Accept x-www-form-urlencoded
// @Param slug path string true "Post slug or new"
// @Success 302
// @Failure 400 {object} api.FieldErrorsResponse
// @Failure 404 {object} api.RestJsonErrorResponse
func (pc *Controller) SubmitEditor(c *gin.Context, admin auth.Principal) {
	slug := c.Param("slug")

	submission, err := ParseSubmission(c)
	if err != nil {
		pc.LogErrorf(pc.logType(c, slug), "error parsing editor form: %v", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("error parsing form: %v", err))
		return
	}

	r, err := pc.Submit(c.Request.Context(), admin, slug, submission)
	if err != nil {
		pc.fail(c, slug, err)
		return
	}

	if r.Outcome == result.OutcomeRedirect {
		pc.LogInfof(pc.logType(c, slug), "%s applied %q to post %s", admin.Username(), submission.Intent, slug)
	}
	respond(c, r)
}

func (pc *Controller) logType(c *gin.Context, slug string) []any {
	return logging.GetLogTypeRequest(logging.SubTypePosts, slug, middlewares.RequestIdFrom(c))
}

func (pc *Controller) fail(c *gin.Context, slug string, err error) {
	pc.LogError(pc.logType(c, slug), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("an error occurred: %v", err))
}

func respond[T any](c *gin.Context, r result.Result[T]) {
	switch r.Outcome {
	case result.OutcomeOk:
		c.JSON(http.StatusOK, r.Data)
	case result.OutcomeNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse(r.Message))
	case result.OutcomeInvalid:
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewFieldErrorsResponse(r.Errors))
	case result.OutcomeRedirect, result.OutcomeUnauthorized:
		c.Redirect(http.StatusFound, r.Location)
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("unexpected outcome %s", r.Outcome))
	}
}
