package bitbucket

import (
	"blog-admin/internal/config"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"context"
	"errors"
	"fmt"
	"github.com/gfleury/go-bitbucket-v1"
	"slices"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no Bitbucket url is configured; post import is disabled then.
var ErrNotConfigured = errors.New("bitbucket url is not set")

// Result is one page of file paths read from the Bitbucket API, or the error that ended reading.
type Result struct {
	AnyFilePaths []any
	Error        error
}

// BitbucketApiServiceAdapter is the part of the Bitbucket API the post import uses.
type BitbucketApiServiceAdapter interface {
	GetContent(projectKey string, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error)
	GetRawContent(projectKey, repositorySlug, path string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error)
	StreamFiles(projectKey, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error)
}

// BitbucketApiClient implements BitbucketApiServiceAdapter on top of *bitbucketv1.APIClient.
type BitbucketApiClient struct {
	*bitbucketv1.APIClient
}

func (a *BitbucketApiClient) GetContent(projectKey string, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error) {
	return a.DefaultApi.GetContent(projectKey, repositorySlug, localVarOptionals)
}

func (a *BitbucketApiClient) GetRawContent(projectKey, repositorySlug, path string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error) {
	return a.DefaultApi.GetRawContent(projectKey, repositorySlug, path, localVarOptionals)
}

func (a *BitbucketApiClient) StreamFiles(projectKey, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error) {
	return a.DefaultApi.StreamFiles(projectKey, repositorySlug, localVarOptionals)
}

// BitbucketReader reads post files from a Bitbucket repository.
type BitbucketReader interface {

	// ReadPostFilePaths lists the paths of all files below folder, following the API's paging.
	//
	// Param projectName path string true "Bitbucket project key"
	// Param repoName path string true "Bitbucket repository name"
	// Param folder path string true "Folder holding the posts, e.g. posts/"
	// Param start query int false "Pagination start offset"
	// Param limit query int false "Pagination limit"
	ReadPostFilePaths(projectName, repoName, folder string, start, limit int) ([]string, error)

	// ReadRepoRootFolderContent returns the names of all direct children of the repository's root folder.
	ReadRepoRootFolderContent(projectName, repoName string) ([]string, error)

	// ReadFileContentAtRevision reads the raw content of a single file.
	ReadFileContentAtRevision(projectName, repoName string, filePath string, revision string) (string, error)
}

// ApiReader implements BitbucketReader with a BitbucketApiServiceAdapter.
type ApiReader struct {
	*environment.Env
	Adapter BitbucketApiServiceAdapter
}

// ensure ApiReader implements BitbucketReader
var _ BitbucketReader = &ApiReader{}

func (r *ApiReader) ReadRepoRootFolderContent(projectName, repoName string) ([]string, error) {
	if r.Adapter == nil {
		return nil, fmt.Errorf("bitbucket API not initialized")
	}

	bitbucketResponse, err := r.Adapter.GetContent(projectName, repoName, nil)
	if err != nil {
		return nil, fmt.Errorf("error reading file structure from Bitbucket: %w", err)
	}

	if bitbucketResponse == nil {
		return nil, fmt.Errorf("bitbucket API response is nil")
	}

	if bitbucketResponse.Values == nil {
		return nil, fmt.Errorf("bitbucket API response has no values")
	}

	children, ok := bitbucketResponse.Values["children"]
	if !ok {
		return nil, fmt.Errorf("bitbucket API response does not contain children (i.e. files or folders)")
	}

	if children == nil {
		return []string{}, nil
	}

	anyChildren, ok := children.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("type conversion to map; received type: %T", children)
	}

	anyValues, ok := anyChildren["values"].([]any)
	if !ok {
		return nil, fmt.Errorf("type conversion to slice of type any failed; received type: %T", anyChildren["values"])
	}

	names := make([]string, 0, len(anyValues))
	for _, v := range anyValues {
		vm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("type conversion to map failed; received type: %T", v)
		}

		p, ok := vm["path"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("type conversion of path to map failed; received type: %T", vm["path"])
		}

		n, ok := p["name"].(string)
		if !ok {
			return nil, fmt.Errorf("type conversion of name to string failed; received type: %T", p["name"])
		}

		names = append(names, n)
	}

	return names, nil
}

// ReadFileContentAtRevision reads a file at revision (a branch, tag or commit);
// an empty revision reads the default branch.
func (r *ApiReader) ReadFileContentAtRevision(projectName, repoName, filePath, revision string) (string, error) {
	if r.Adapter == nil {
		return "", fmt.Errorf("bitbucket API not initialized")
	}

	params := map[string]any{}
	if len(revision) > 0 {
		params["at"] = revision
	}

	bitbucketResponse, err := r.Adapter.GetRawContent(projectName, repoName, filePath, params)
	if err != nil {
		return "", fmt.Errorf("error reading %s from Bitbucket: %w", filePath, err)
	}

	if bitbucketResponse == nil {
		return "", fmt.Errorf("bitbucket API response is nil")
	}

	return string(bitbucketResponse.Payload), nil
}

func (r *ApiReader) ReadPostFilePaths(projectName, repoName, folder string, start, limit int) ([]string, error) {
	if r.Adapter == nil {
		return nil, fmt.Errorf("bitbucket API not initialized")
	}

	params := map[string]any{
		"start": start,
		"limit": limit,
	}
	logType := logging.GetLogType(logging.SubTypeImport, repoName)

	// done stops the producer when the consumer gives up early
	done := make(chan struct{})
	defer close(done)

	read := func() <-chan Result {
		outStream := make(chan Result)

		send := func(result Result) bool {
			select {
			case outStream <- result:
				return true
			case <-done:
				return false
			}
		}

		go func() {
			defer close(outStream)

			for {
				s := time.Now()
				bitbucketResponse, err := r.Adapter.StreamFiles(projectName, repoName, params)
				r.LogDebugf(logType, "fetched file structure page in %v", time.Since(s))

				if err != nil {
					send(Result{Error: fmt.Errorf("error reading file structure from Bitbucket: %w", err)})
					return
				}

				if bitbucketResponse == nil || bitbucketResponse.Values == nil {
					send(Result{Error: fmt.Errorf("bitbucket API response is nil or has no paged values")})
					return
				}

				values, ok := bitbucketResponse.Values["values"]
				if !ok {
					send(Result{Error: fmt.Errorf("bitbucket API response does not contain the property 'values'")})
					return
				}

				if values == nil {
					send(Result{AnyFilePaths: []any{}})
					return
				}

				anyFilePaths, ok := values.([]any)
				if !ok {
					send(Result{Error: fmt.Errorf("type conversion to slice of type any failed; received type: %T", values)})
					return
				}

				if !send(Result{AnyFilePaths: anyFilePaths}) {
					return
				}

				isLastPage, lastPageOk := bitbucketResponse.Values["isLastPage"].(bool)
				if !lastPageOk {
					r.LogWarn(logType, "bitbucket API response does not contain property 'isLastPage'")
					return
				}

				if isLastPage {
					return
				}

				nextPageStart, nextPageOk := bitbucketResponse.Values["nextPageStart"].(float64)
				if !nextPageOk {
					r.LogWarn(logType, "bitbucket API response does not contain property 'nextPageStart'")
					return
				}

				params["start"] = int(nextPageStart)
			}
		}()

		return outStream
	}

	consume := func(results <-chan Result) ([]string, error) {
		var filePaths []string

		for result := range results {
			if result.Error != nil {
				return nil, result.Error
			}

			for _, v := range result.AnyFilePaths {
				fp, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("type conversion to string failed; received type: %T", v)
				}

				if !strings.HasPrefix(fp, folder) {
					continue
				}

				filePaths = append(filePaths, fp)
			}
		}

		return filePaths, nil
	}

	return consume(read())
}

// InitBitbucket connects to the configured Bitbucket server and returns a reader for it.
// Without a configured url it returns ErrNotConfigured.
func InitBitbucket(c *config.Configuration, env *environment.Env) (*ApiReader, error) {
	if c.BitBucket.Url == nil || c.BitBucket.Url.URL == nil {
		return nil, ErrNotConfigured
	}

	env.LogInfo(logging.GetLogTypeInitialization(), "initializing Bitbucket API")

	bitbucketConfig := bitbucketv1.Configuration{
		BasePath:  c.BitBucket.Url.String(),
		Host:      c.BitBucket.Url.Host,
		Scheme:    c.BitBucket.Url.Scheme,
		UserAgent: "blog-admin",
	}

	ctx := context.Background()

	if len(c.BitBucket.AccessToken) > 0 {
		ctx = context.WithValue(ctx, bitbucketv1.ContextAccessToken, c.BitBucket.AccessToken)
	} else if len(c.BitBucket.User) > 0 && len(c.BitBucket.Password) > 0 {
		ctx = context.WithValue(ctx, bitbucketv1.ContextBasicAuth, bitbucketv1.BasicAuth{
			UserName: c.BitBucket.User,
			Password: c.BitBucket.Password,
		})
	}

	reader := &ApiReader{env, &BitbucketApiClient{bitbucketv1.NewAPIClient(ctx, &bitbucketConfig)}}

	rootFolderContent, err := reader.ReadRepoRootFolderContent(c.BitBucket.ProjectName, c.BitBucket.Repository)
	if err != nil {
		return nil, err
	}

	folder := strings.TrimSuffix(c.BitBucket.Folder, "/")
	if !slices.Contains(rootFolderContent, strings.Split(folder, "/")[0]) {
		env.LogWarnf(logging.GetLogTypeInitialization(), "repository %s has no folder %s; nothing will be imported", c.BitBucket.Repository, c.BitBucket.Folder)
	}

	env.LogDebug(logging.GetLogTypeInitialization(), "Bitbucket API initialized")

	return reader, nil
}
