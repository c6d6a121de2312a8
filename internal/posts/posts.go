package posts

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/environment"
	"blog-admin/internal/markdown"
	"blog-admin/internal/models"
	"blog-admin/internal/result"
	"context"
	"errors"
	"fmt"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"slices"
)

const (
	NewSlug       = "new"
	AdminIndexUrl = "/posts/admin"
)

// ErrSlugRequired signals a route without a slug parameter, which is a routing defect.
var ErrSlugRequired = errors.New("slug is required")

const duplicateSlugMessage = "A post with this slug already exists"

type PostView struct {
	Title string `json:"title"`
	Html  string `json:"html"`
}

// EditorPayload is what the admin editor needs to render; Post is nil for a new post.
type EditorPayload struct {
	Post  *models.Post `json:"post"`
	IsNew bool         `json:"isNew"`
}

type Link struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

type AdminIndexPayload struct {
	Links []Link `json:"links"`
}

type Service struct {
	*environment.Env
	Renderer markdown.Renderer
}

func NewService(env *environment.Env, renderer markdown.Renderer) *Service {
	return &Service{
		Env:      env,
		Renderer: renderer,
	}
}

// View renders the post addressed by slug.
func (s *Service) View(ctx context.Context, slug string) (result.Result[PostView], error) {
	if len(slug) == 0 {
		return result.Result[PostView]{}, ErrSlugRequired
	}

	var post models.Post
	err := s.FindPostBySlug(ctx, slug, &post)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result.NotFound[PostView]("Post %s not found", slug), nil
	}
	if err != nil {
		return result.Result[PostView]{}, fmt.Errorf("error loading post %s: %w", slug, err)
	}

	html, err := s.Renderer.Render(post.Markdown)
	if err != nil {
		return result.Result[PostView]{}, fmt.Errorf("error rendering post %s: %w", slug, err)
	}

	return result.Ok(PostView{Title: post.Title, Html: html}), nil
}

// List returns all posts ordered by title.
func (s *Service) List(ctx context.Context) ([]models.PostSummary, error) {
	var posts []models.Post
	if err := s.FindAllPosts(ctx, &posts); err != nil {
		return nil, fmt.Errorf("error loading posts: %w", err)
	}

	summaries := make([]models.PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, models.PostSummary{Slug: post.Slug, Title: post.Title})
	}

	// a Collator keeps internal buffers and must not be shared between requests
	collator := collate.New(language.English)
	slices.SortStableFunc(summaries, func(a, b models.PostSummary) int {
		return collator.CompareString(a.Title, b.Title)
	})
	return summaries, nil
}

// AdminIndex links into the editor.
func AdminIndex(admin auth.Principal) AdminIndexPayload {
	return AdminIndexPayload{
		Links: []Link{{Href: AdminIndexUrl + "/" + NewSlug, Label: "Create New Post"}},
	}
}

// LoadEditor returns the post to edit, or an empty template for the slug "new".
func (s *Service) LoadEditor(ctx context.Context, admin auth.Principal, slug string) (result.Result[EditorPayload], error) {
	if len(slug) == 0 {
		return result.Result[EditorPayload]{}, ErrSlugRequired
	}
	if slug == NewSlug {
		return result.Ok(EditorPayload{IsNew: true}), nil
	}

	var post models.Post
	err := s.FindPostBySlug(ctx, slug, &post)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundInEditor[EditorPayload](slug), nil
	}
	if err != nil {
		return result.Result[EditorPayload]{}, fmt.Errorf("error loading post %s: %w", slug, err)
	}

	return result.Ok(EditorPayload{Post: &post}), nil
}

// Submit applies an editor submission to the post addressed by slug.
//
// A delete removes the post without checking that it exists. Otherwise the
// submission must be valid; the slug "new" creates a post, any other slug
// updates the post it addresses and may rename it to the submitted slug.
func (s *Service) Submit(ctx context.Context, admin auth.Principal, slug string, submission Submission) (result.Result[struct{}], error) {
	if len(slug) == 0 {
		return result.Result[struct{}]{}, ErrSlugRequired
	}

	if submission.IsDelete() {
		if err := s.DeletePostBySlug(ctx, slug); err != nil {
			return result.Result[struct{}]{}, fmt.Errorf("error deleting post %s: %w", slug, err)
		}
		return result.Redirect[struct{}](AdminIndexUrl), nil
	}

	var fields models.PostFields
	switch v := submission.Validate().(type) {
	case Invalid:
		return result.Invalid[struct{}](v.Errors), nil
	case Valid:
		fields = v.Fields
	}

	var err error
	if slug == NewSlug {
		post := models.NewPost(fields)
		err = s.CreatePost(ctx, &post)
	} else {
		err = s.UpdatePostBySlug(ctx, slug, fields)
	}

	switch {
	case err == nil:
		return result.Redirect[struct{}](AdminIndexUrl), nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return result.Invalid[struct{}](result.FieldErrors{"slug": duplicateSlugMessage}), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFoundInEditor[struct{}](slug), nil
	default:
		return result.Result[struct{}]{}, fmt.Errorf("error saving post %s: %w", slug, err)
	}
}

func notFoundInEditor[T any](slug string) result.Result[T] {
	return result.NotFound[T]("The post with the slug %q doesn't exist!", slug)
}
