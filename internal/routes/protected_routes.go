package routes

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/bitbucket"
	"blog-admin/internal/constants"
	"blog-admin/internal/middlewares"
	"blog-admin/internal/posts"
	"github.com/gin-gonic/gin"
)

// RegisterProtectedRoutes wires the admin-only endpoints. Each handler is wrapped by the
// session guard, which is the only way to obtain the admin principal the handlers require.
func RegisterProtectedRoutes(r *gin.Engine, controllerRegistry map[int]any) {
	guard := controllerRegistry[constants.SessionGuard].(*middlewares.SessionGuard)

	adminGroup := r.Group("")
	{
		// posts
		postsApi := controllerRegistry[constants.Posts].(posts.Api)
		adminGroup.GET("/posts/admin", guard.RequireAdmin(postsApi.GetAdminIndex))
		adminGroup.GET("/posts/admin/:slug", guard.RequireAdmin(postsApi.GetEditor))
		adminGroup.POST("/posts/admin/:slug", guard.RequireAdmin(postsApi.SubmitEditor))

		// bitbucket
		bitbucketApi := controllerRegistry[constants.Bitbucket].(bitbucket.Api)
		adminGroup.GET("/bitbucket/posts", guard.RequireAdmin(bitbucketApi.ImportPosts))

		// auth
		authApi := controllerRegistry[constants.Auth].(auth.Api)
		adminGroup.GET("/hash/:pw", guard.RequireAdmin(authApi.CreatePasswordHash))
	}
}
