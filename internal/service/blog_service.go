package service

import (
	"context"
	"errors"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"
)

var ErrBlogPostNotFound = errors.New("blog post not found")

// BlogService exposes public blog content.
type BlogService interface {
	ListPosts(ctx context.Context) ([]domain.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
}

type blogService struct {
	blogRepo repository.BlogRepository
}

// NewBlogService creates a new instance of blogService.
func NewBlogService(blogRepo repository.BlogRepository) BlogService {
	return &blogService{blogRepo: blogRepo}
}

func (s *blogService) ListPosts(ctx context.Context) ([]domain.BlogPost, error) {
	return s.blogRepo.List(ctx)
}

func (s *blogService) GetPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	post, err := s.blogRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return post, nil
}
