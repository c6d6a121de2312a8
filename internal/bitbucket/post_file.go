package bitbucket

import (
	"blog-admin/internal/markdown"
	"blog-admin/internal/models"
	"fmt"
	"github.com/goliatone/go-slug"
	"path"
	"strings"
)

const markdownExtension = ".md"

var titleReplacer = strings.NewReplacer("_", " ", "-", " ")

// PostFromFile turns a markdown file into a bitbucket-sourced post.
//
// Title and slug come from the file's front matter. Without a slug the file name is
// normalized into one; without a title the file name with blanks for "_" and "-" is used.
func PostFromFile(filePath, content string) (models.Post, error) {
	extension := path.Ext(filePath)
	if extension != markdownExtension {
		return models.Post{}, fmt.Errorf("file extension is not markdown: %s", filePath)
	}
	name := strings.TrimSuffix(path.Base(filePath), extension)

	meta, body, err := markdown.ParseFrontMatter([]byte(content))
	if err != nil {
		return models.Post{}, fmt.Errorf("error parsing front matter of %s: %w", filePath, err)
	}

	postSlug := strings.TrimSpace(meta.Slug)
	if len(postSlug) == 0 {
		postSlug = name
	}
	postSlug, err = slug.Normalize(postSlug)
	if err != nil {
		return models.Post{}, fmt.Errorf("error normalizing slug of %s: %w", filePath, err)
	}
	if len(postSlug) == 0 {
		return models.Post{}, fmt.Errorf("no slug can be derived from %s", filePath)
	}

	title := strings.TrimSpace(meta.Title)
	if len(title) == 0 {
		title = strings.TrimSpace(titleReplacer.Replace(name))
	}

	if len(strings.TrimSpace(body)) == 0 {
		return models.Post{}, fmt.Errorf("file %s has no content", filePath)
	}

	return models.Post{
		Slug:     postSlug,
		Title:    title,
		Markdown: body,
		Source:   models.SourceBitbucket,
	}, nil
}
