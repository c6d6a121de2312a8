package bitbucket

import (
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/models"
	"blog-admin/internal/utils"
	"context"
	"fmt"
	"time"
)

// PostHousekeeper removes imported posts whose file is gone from the repository.
type PostHousekeeper interface {
	// DeleteStalePosts deletes every bitbucket-sourced post of postsFromDb whose slug is
	// not among importedPosts and returns how many were deleted. Editor posts are never deleted.
	DeleteStalePosts(ctx context.Context, importedPosts []models.Post, postsFromDb []models.Post) (int, error)
}

type DefaultPostHousekeeper struct {
	*environment.Env
}

// ensure DefaultPostHousekeeper implements PostHousekeeper
var _ PostHousekeeper = &DefaultPostHousekeeper{}

func (hk *DefaultPostHousekeeper) DeleteStalePosts(ctx context.Context, importedPosts []models.Post, postsFromDb []models.Post) (int, error) {
	logType := logging.GetLogType(logging.SubTypeImport)
	hk.LogInfo(logType, "start post clean up")

	importedBySlug := utils.SliceToMap(importedPosts, func(post models.Post) string { return post.Slug })

	staleIds := make([]uint, 0, len(postsFromDb)/2)
	for _, v := range postsFromDb {
		if v.Source != models.SourceBitbucket {
			continue
		}
		if _, ok := importedBySlug[v.Slug]; !ok {
			staleIds = append(staleIds, v.ID)
		}
	}

	if len(staleIds) == 0 {
		hk.LogInfo(logType, "no clean up of posts needed; early return")
		return 0, nil
	}

	start := time.Now()
	if err := hk.DeletePostsByIds(ctx, staleIds); err != nil {
		hk.LogError(logType, err.Error())
		return 0, fmt.Errorf("error deleting %d stale post(s) from the database: %w", len(staleIds), err)
	}

	hk.LogInfof(logType, "deleted %d stale post(s) in %dms", len(staleIds), time.Since(start).Milliseconds())
	return len(staleIds), nil
}
