package routes

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/bitbucket"
	"blog-admin/internal/config"
	"blog-admin/internal/constants"
	"blog-admin/internal/environment"
	"blog-admin/internal/markdown"
	"blog-admin/internal/middlewares"
	"blog-admin/internal/posts"
	"blog-admin/internal/search"
)

// NewControllerRegistry builds all controllers keyed by their constants id.
// A nil reader disables the Bitbucket import; its endpoints then answer 503.
func NewControllerRegistry(c *config.Configuration, env *environment.Env, reader bitbucket.BitbucketReader) map[int]any {
	settings := auth.SettingsFromConfig(c)
	renderer := markdown.NewGoldmarkRenderer(markdown.OptionsFromConfig(c))

	bitbucketController := &bitbucket.Controller{
		Env:           env,
		WebhookSecret: c.BitBucket.WebhookSecret,
	}
	if reader != nil {
		bitbucketController.Importer = bitbucket.NewImporter(c, env, reader)
	}

	controllerRegistry := make(map[int]any)
	controllerRegistry[constants.Auth] = auth.NewController(env, settings)
	controllerRegistry[constants.Posts] = posts.NewController(env, posts.NewService(env, renderer))
	controllerRegistry[constants.Search] = search.NewController(env)
	controllerRegistry[constants.Bitbucket] = bitbucketController
	controllerRegistry[constants.SessionGuard] = middlewares.NewSessionGuard(settings)

	return controllerRegistry
}
