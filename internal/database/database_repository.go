package database

import (
	"blog-admin/internal/models"
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"strings"
)

// Repository defines data access methods for posts and the users allowed to manage them.
//
// Lookups of a single record return gorm.ErrRecordNotFound when nothing matches.
type Repository interface {

	// FindPostBySlug fetches the post addressed by slug.
	//
	// Param slug path string true "Post slug"
	FindPostBySlug(ctx context.Context, slug string, post *models.Post) error

	// FindAllPosts retrieves all posts.
	FindAllPosts(ctx context.Context, posts *[]models.Post) error

	// FindPostsBySource retrieves all posts that originate from source (editor or bitbucket).
	FindPostsBySource(ctx context.Context, source string, posts *[]models.Post) error

	// CreatePost inserts a new post. A taken slug yields gorm.ErrDuplicatedKey.
	CreatePost(ctx context.Context, post *models.Post) error

	// UpdatePostBySlug overwrites title, slug and markdown of the post addressed by slug.
	// The slug itself may change, which renames the post.
	//
	// Param slug path string true "Current post slug"
	UpdatePostBySlug(ctx context.Context, slug string, fields models.PostFields) error

	// DeletePostBySlug removes the post addressed by slug. Deleting an absent slug is not an error.
	DeletePostBySlug(ctx context.Context, slug string) error

	// DeletePostsByIds deletes post records with the given IDs.
	//
	// Param postIds body []uint true "List of post IDs to delete"
	DeletePostsByIds(ctx context.Context, postIds []uint) error

	// UpsertPosts inserts posts or updates them on slug conflict.
	UpsertPosts(ctx context.Context, posts []models.Post) error

	FindPostsBySearchTermSimple(ctx context.Context, searchTerm string, posts *[]models.Post) error

	CountPostsMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error

	// FindUserLoginCredentials fetches the user record with the specified username.
	//
	// Param username path string true "Username"
	FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error
}

// NullRepository is a no-op implementation of the Repository interface.
// Useful for testing or default wiring when no database operations are required.
type NullRepository struct{}

// ensure NullRepository implements Repository
var _ Repository = &NullRepository{}

func (n *NullRepository) FindPostBySlug(ctx context.Context, slug string, post *models.Post) error {
	return gorm.ErrRecordNotFound
}

func (n *NullRepository) FindAllPosts(ctx context.Context, posts *[]models.Post) error {
	return nil
}

func (n *NullRepository) FindPostsBySource(ctx context.Context, source string, posts *[]models.Post) error {
	return nil
}

func (n *NullRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return nil
}

func (n *NullRepository) UpdatePostBySlug(ctx context.Context, slug string, fields models.PostFields) error {
	return nil
}

func (n *NullRepository) DeletePostBySlug(ctx context.Context, slug string) error {
	return nil
}

func (n *NullRepository) DeletePostsByIds(ctx context.Context, postIds []uint) error {
	return nil
}

func (n *NullRepository) UpsertPosts(ctx context.Context, posts []models.Post) error {
	return nil
}

func (n *NullRepository) FindPostsBySearchTermSimple(ctx context.Context, searchTerm string, posts *[]models.Post) error {
	return nil
}

func (n *NullRepository) CountPostsMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error {
	return nil
}

func (n *NullRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return gorm.ErrRecordNotFound
}

func (n *NullRepository) CreateUser(ctx context.Context, user *models.User) error {
	return nil
}

// GormRepository provides a GORM-based implementation of the Repository interface.
type GormRepository struct {
	*gorm.DB
}

// ensure GormRepository implements Repository
var _ Repository = &GormRepository{}

func (g *GormRepository) FindPostBySlug(ctx context.Context, slug string, post *models.Post) error {
	return g.DB.
		WithContext(ctx).
		Where("slug = ?", slug).
		Take(post).
		Error
}

func (g *GormRepository) FindAllPosts(ctx context.Context, posts *[]models.Post) error {
	return g.DB.
		WithContext(ctx).
		Find(posts).
		Error
}

func (g *GormRepository) FindPostsBySource(ctx context.Context, source string, posts *[]models.Post) error {
	return g.DB.
		WithContext(ctx).
		Where("source = ?", source).
		Find(posts).
		Error
}

func (g *GormRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return g.DB.
		WithContext(ctx).
		Create(post).
		Error
}

func (g *GormRepository) UpdatePostBySlug(ctx context.Context, slug string, fields models.PostFields) error {
	tx := g.DB.
		WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Updates(map[string]any{
			"title":    fields.Title,
			"slug":     fields.Slug,
			"markdown": fields.Markdown,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (g *GormRepository) DeletePostBySlug(ctx context.Context, slug string) error {
	return g.DB.
		WithContext(ctx).
		Where("slug = ?", slug).
		Delete(&models.Post{}).
		Error
}

func (g *GormRepository) DeletePostsByIds(ctx context.Context, postIds []uint) error {
	return g.DB.
		WithContext(ctx).
		Exec("DELETE FROM posts WHERE id IN ?", postIds).
		Error
}

func (g *GormRepository) UpsertPosts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	return g.DB.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			// an imported post takes over title and content of an existing post with the same slug
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "markdown", "source", "updated_at"}),
		}).
		Create(&posts).
		Error
}

const searchCondition = `LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(markdown) LIKE LOWER(?) ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern is a LIKE pattern matching searchTerm literally anywhere in a column.
func containsPattern(searchTerm string) string {
	return "%" + likeEscaper.Replace(searchTerm) + "%"
}

func (g *GormRepository) FindPostsBySearchTermSimple(ctx context.Context, searchTerm string, posts *[]models.Post) error {
	pattern := containsPattern(searchTerm)

	return g.DB.
		WithContext(ctx).
		Where(searchCondition, pattern, pattern).
		Find(posts).
		Error
}

func (g *GormRepository) CountPostsMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error {
	pattern := containsPattern(searchTerm)

	var count int64
	err := g.DB.
		WithContext(ctx).
		Model(&models.Post{}).
		Where(searchCondition, pattern, pattern).
		Count(&count).
		Error
	if err != nil {
		return err
	}

	*matchCount = int(count)
	return nil
}

func (g *GormRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return g.DB.
		WithContext(ctx).
		Model(models.User{}).
		Where("username = ?", username).
		Take(user).
		Error
}

func (g *GormRepository) CreateUser(ctx context.Context, user *models.User) error {
	return g.DB.
		WithContext(ctx).
		Create(user).
		Error
}
