package markdown

import (
	"bytes"
	"fmt"
	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block an imported markdown file may start with.
type FrontMatter struct {
	Title string `yaml:"title" toml:"title" json:"title"`
	Slug  string `yaml:"slug" toml:"slug" json:"slug"`
}

// ParseFrontMatter splits source into its front matter and the markdown body.
// A file without front matter yields an empty FrontMatter and the unchanged body.
func ParseFrontMatter(source []byte) (FrontMatter, string, error) {
	var meta FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	return meta, string(body), nil
}
