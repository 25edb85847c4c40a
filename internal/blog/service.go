package blog

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/david/sochx/internal/ingest"
	"github.com/david/sochx/internal/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("invalid post")
)

const (
	indexFile     = "index.json"
	excerptLength = 200
	maxParallel   = 8
)

// Service reads posts from a directory holding index.json (a JSON array of
// post file names) and one JSON document per post.
type Service struct {
	dir    string
	policy *bluemonday.Policy
	log    *zap.Logger
}

func NewService(dir string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		dir:    dir,
		policy: bluemonday.UGCPolicy(),
		log:    log,
	}
}

// List loads every indexed post, newest first. A single unreadable post
// fails the whole listing.
func (s *Service) List(ctx context.Context) ([]models.BlogPost, error) {
	files, err := s.index()
	if err != nil {
		return nil, err
	}

	posts := make([]models.BlogPost, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			post, err := s.load(strings.TrimSuffix(file, ".json"), file)
			if err != nil {
				return err
			}
			posts[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("blog listing failed", zap.String("dir", s.dir), zap.Error(err))
		return nil, err
	}

	SortByDate(posts)
	return posts, nil
}

// Get loads the post stored as <slug>.json.
func (s *Service) Get(slug string) (models.BlogPost, error) {
	if !validSlug(slug) {
		return models.BlogPost{}, fmt.Errorf("%w: %q", ErrPostNotFound, slug)
	}
	return s.load(slug, slug+".json")
}

// SortByDate orders posts newest first. Posts without a readable date go
// last; ties keep their index order.
func SortByDate(posts []models.BlogPost) {
	slices.SortStableFunc(posts, func(a, b models.BlogPost) int {
		switch {
		case a.DateAt.IsZero() && b.DateAt.IsZero():
			return 0
		case a.DateAt.IsZero():
			return 1
		case b.DateAt.IsZero():
			return -1
		}
		return cmp.Compare(b.DateAt.UnixNano(), a.DateAt.UnixNano())
	})
}

func (s *Service) index() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("read blog index: %w", err)
	}
	var files []string
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("decode blog index: %w", err)
	}
	return files, nil
}

func (s *Service) load(slug, file string) (models.BlogPost, error) {
	if filepath.Base(file) != file {
		return models.BlogPost{}, fmt.Errorf("%w: bad file name %q", ErrInvalidPost, file)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return models.BlogPost{}, fmt.Errorf("%w: %s", ErrPostNotFound, file)
	}
	if err != nil {
		return models.BlogPost{}, fmt.Errorf("read post %s: %w", file, err)
	}

	var raw ingest.RawPost
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.BlogPost{}, fmt.Errorf("%w: %s: %v", ErrInvalidPost, file, err)
	}
	post := ingest.FromRawPost(slug, raw)
	if post.Title == "" {
		return models.BlogPost{}, fmt.Errorf("%w: %s has no title", ErrInvalidPost, file)
	}
	post.Content = s.policy.Sanitize(post.Content)
	post.Excerpt = ingest.TruncateText(ingest.HTMLToText(post.Content), excerptLength)
	return post, nil
}

func validSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, ".") {
		return false
	}
	return !strings.ContainsAny(slug, `/\`)
}
