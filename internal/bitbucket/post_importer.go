package bitbucket

import (
	"blog-admin/internal/config"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/models"
	"blog-admin/internal/utils"
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
)

const pageLimit = 150

type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`
}

// Importer upserts the markdown files of a Bitbucket folder as posts.
type Importer struct {
	*environment.Env
	BitbucketReader
	PostHousekeeper

	ProjectName    string
	RepositoryName string
	Folder         string
	// Revision pins the import to a branch, tag or commit; empty reads the default branch.
	Revision string
}

func NewImporter(c *config.Configuration, env *environment.Env, reader BitbucketReader) *Importer {
	return &Importer{
		Env:             env,
		BitbucketReader: reader,
		PostHousekeeper: &DefaultPostHousekeeper{Env: env},
		ProjectName:     c.BitBucket.ProjectName,
		RepositoryName:  c.BitBucket.Repository,
		Folder:          c.BitBucket.Folder,
		Revision:        c.BitBucket.Revision,
	}
}

// Import reads all markdown files below Folder, upserts them by slug and deletes
// bitbucket-sourced posts whose file no longer exists. Files that cannot be read or
// turned into a post are skipped. If two files yield the same slug, the later path wins.
func (i *Importer) Import(ctx context.Context) (ImportSummary, error) {
	logType := logging.GetLogType(logging.SubTypeImport, i.RepositoryName)
	var summary ImportSummary

	filePaths, err := i.ReadPostFilePaths(i.ProjectName, i.RepositoryName, i.Folder, 0, pageLimit)
	if err != nil {
		return summary, fmt.Errorf("error reading post files: %w", err)
	}

	postsFromBitbucket := make([]models.Post, 0, len(filePaths))
	for _, filePath := range filePaths {
		content, err := i.ReadFileContentAtRevision(i.ProjectName, i.RepositoryName, filePath, i.Revision)
		if err != nil {
			i.LogError(logType, err.Error())
			summary.Skipped++
			continue
		}

		post, err := PostFromFile(filePath, content)
		if err != nil {
			i.LogWarn(logType, err.Error())
			summary.Skipped++
			continue
		}

		postsFromBitbucket = append(postsFromBitbucket, post)
	}

	postsBySlug := utils.SliceToMap(postsFromBitbucket, func(post models.Post) string { return post.Slug })
	uniquePosts := slices.SortedFunc(maps.Values(postsBySlug), func(a, b models.Post) int {
		return cmp.Compare(a.Slug, b.Slug)
	})

	var postsFromDb []models.Post
	if err = i.FindPostsBySource(ctx, models.SourceBitbucket, &postsFromDb); err != nil {
		return summary, fmt.Errorf("error fetching imported posts from the database: %w", err)
	}

	summary.Deleted, err = i.DeleteStalePosts(ctx, uniquePosts, postsFromDb)
	if err != nil {
		return summary, err
	}

	if err = i.UpsertPosts(ctx, uniquePosts); err != nil {
		return summary, fmt.Errorf("error writing imported posts into the database: %w", err)
	}
	summary.Imported = len(uniquePosts)

	i.LogInfof(logType, "imported %d post(s), skipped %d file(s), deleted %d stale post(s)", summary.Imported, summary.Skipped, summary.Deleted)
	return summary, nil
}
