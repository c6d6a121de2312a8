package models

const (
	SourceEditor    = "editor"
	SourceBitbucket = "bitbucket"
)

// Post is a blog post addressed by its slug.
type Post struct {
	Model
	Slug     string `gorm:"not null;uniqueIndex" json:"slug"`
	Title    string `gorm:"not null" json:"title"`
	Markdown string `gorm:"not null;type:text" json:"markdown"`
	Source   string `gorm:"not null;default:editor" json:"-"`
}

// PostFields are the user-editable fields of a Post.
type PostFields struct {
	Title    string
	Slug     string
	Markdown string
}

// NewPost creates an editor-sourced Post from fields.
func NewPost(fields PostFields) Post {
	return Post{
		Slug:     fields.Slug,
		Title:    fields.Title,
		Markdown: fields.Markdown,
		Source:   SourceEditor,
	}
}

// PostSummary is the listing projection of a Post.
type PostSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}
