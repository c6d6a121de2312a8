package search

import (
	"blog-admin/internal/api"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/middlewares"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
)

type Api interface {
	SearchPosts(c *gin.Context)
}

type Controller struct {
	*environment.Env
	*Service
}

// ensure Controller implements Api
var _ Api = &Controller{}

func NewController(env *environment.Env) *Controller {
	return &Controller{Env: env, Service: &Service{Env: env}}
}

// SearchPosts returns a page of posts matching a search term, most similar first.
//
// @ID searchPosts
// @Summary Full-text search over posts
// @Tags posts
// @Router /posts/search [post]
// @Param payload body search.Payload true "Search term and page"
// @Success 200 {object} search.Page[search.PostSearchMatch]
// @Failure 400 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (sc *Controller) SearchPosts(c *gin.Context) {
	logType := logging.GetLogTypeRequest(logging.SubTypeSearch, "", middlewares.RequestIdFrom(c))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		msg := fmt.Sprintf("error while reading request body: %s", err)
		sc.LogError(logType, msg)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(msg))
		return
	}

	var payload Payload
	if err = json.Unmarshal(body, &payload); err != nil {
		msg := fmt.Sprintf("error while unmarshaling request body: %s", err)
		sc.LogError(logType, msg)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(msg))
		return
	}

	page, err := sc.Search(c.Request.Context(), payload)
	if errors.Is(err, ErrEmptyTerm) {
		sc.LogInfo(logType, err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(err.Error()))
		return
	}
	if err != nil {
		sc.LogError(logType, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, page)
}
