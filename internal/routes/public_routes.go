package routes

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/bitbucket"
	"blog-admin/internal/constants"
	"blog-admin/internal/middlewares"
	"blog-admin/internal/posts"
	"blog-admin/internal/search"
	"github.com/gin-gonic/gin"
)

func RegisterPublicRoutes(r *gin.Engine, controllerRegistry map[int]any) {
	postsApi := controllerRegistry[constants.Posts].(posts.Api)
	r.GET("/posts", postsApi.ListPosts)
	r.GET("/posts/:slug", postsApi.GetPost)

	searchApi := controllerRegistry[constants.Search].(search.Api)
	r.POST("/posts/search", searchApi.SearchPosts)

	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/login", authApi.Login)
	r.POST("/logout", authApi.Logout)
	guard := controllerRegistry[constants.SessionGuard].(*middlewares.SessionGuard)
	r.GET("/token/refresh", guard.BearerAuth(), authApi.RefreshToken)

	bitbucketApi := controllerRegistry[constants.Bitbucket].(bitbucket.Api)
	r.POST("/hook", bitbucketApi.HandleHook)
}
