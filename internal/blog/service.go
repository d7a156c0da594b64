package blog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

const (
	maxTitleLen   = 200
	maxExcerptLen = 500
)

// ServiceParams groups dependencies for the blog service.
type ServiceParams struct {
	BlogRepo Repository
}

// Service exposes business rules for the editorial blog.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (PostListDTO, error)
	Get(ctx context.Context, postID uuid.UUID, includeDrafts bool) (PostDTO, error)
	Create(ctx context.Context, authorID uuid.UUID, authorName string, input CreatePostInput) (PostDTO, error)
	Update(ctx context.Context, postID uuid.UUID, input UpdatePostInput) (PostDTO, error)
	Delete(ctx context.Context, postID uuid.UUID) error
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (LikeDTO, error)
}

type service struct {
	blogRepo Repository
}

// NewService builds a blog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.BlogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "blog repo is required")
	}
	return &service{blogRepo: params.BlogRepo}, nil
}

// List returns a page of posts. Callers without draft access only ever
// see published posts, whatever filter they pass.
func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (PostListDTO, error) {
	params = pagination.Normalize(params)
	if filters.Published == nil {
		published := true
		filters.Published = &published
	}

	rows, total, err := s.blogRepo.List(ctx, params, filters)
	if err != nil {
		return PostListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}

	dtos := make([]PostDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ToDTO(row))
	}
	return PostListDTO{
		Posts:      dtos,
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

// Get returns one post and counts the view. Unpublished posts are hidden
// from readers without draft access.
func (s *service) Get(ctx context.Context, postID uuid.UUID, includeDrafts bool) (PostDTO, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return PostDTO{}, err
	}
	if !post.Published && !includeDrafts {
		return PostDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}

	if err := s.blogRepo.IncrementViews(ctx, post.ID); err != nil {
		return PostDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count view")
	}
	post.Views++

	return ToDTO(*post), nil
}

// Create publishes a new post under the given author.
func (s *service) Create(ctx context.Context, authorID uuid.UUID, authorName string, input CreatePostInput) (PostDTO, error) {
	if authorID == uuid.Nil || strings.TrimSpace(authorName) == "" {
		return PostDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "author is required")
	}
	if err := validatePost(input.Title, input.Excerpt, input.Content, input.Category); err != nil {
		return PostDTO{}, err
	}

	post := &models.BlogPost{
		Title:      strings.TrimSpace(input.Title),
		Excerpt:    strings.TrimSpace(input.Excerpt),
		Content:    input.Content,
		Image:      strings.TrimSpace(input.Image),
		Category:   strings.TrimSpace(input.Category),
		AuthorID:   authorID,
		AuthorName: strings.TrimSpace(authorName),
		Tags:       pq.StringArray(input.Tags),
		Published:  input.Published,
		Featured:   input.Featured,
	}
	created, err := s.blogRepo.Create(ctx, post)
	if err != nil {
		return PostDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return ToDTO(*created), nil
}

// Update applies the non-nil fields to the post.
func (s *service) Update(ctx context.Context, postID uuid.UUID, input UpdatePostInput) (PostDTO, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return PostDTO{}, err
	}

	applyUpdate(post, input)
	if err := validatePost(post.Title, post.Excerpt, post.Content, post.Category); err != nil {
		return PostDTO{}, err
	}

	updated, err := s.blogRepo.Update(ctx, post)
	if err != nil {
		return PostDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post")
	}
	return ToDTO(*updated), nil
}

// Delete removes the post.
func (s *service) Delete(ctx context.Context, postID uuid.UUID) error {
	if postID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "post id is required")
	}
	if err := s.blogRepo.Delete(ctx, postID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "post not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete post")
	}
	return nil
}

// ToggleLike flips the caller's like on a published post and returns the
// new state alongside the refreshed counter.
func (s *service) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (LikeDTO, error) {
	if userID == uuid.Nil {
		return LikeDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return LikeDTO{}, err
	}
	if !post.Published {
		return LikeDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}

	removed, err := s.blogRepo.DeleteLike(ctx, post.ID, userID)
	if err != nil {
		return LikeDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle like")
	}
	liked := false
	if !removed {
		like := &models.BlogPostLike{PostID: post.ID, UserID: userID}
		if err := s.blogRepo.CreateLike(ctx, like); err != nil && !db.IsUniqueViolation(err) {
			return LikeDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle like")
		}
		liked = true
	}

	count, err := s.blogRepo.SetLikeCount(ctx, post.ID)
	if err != nil {
		return LikeDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh like count")
	}

	return LikeDTO{PostID: post.ID, Liked: liked, Likes: count}, nil
}

func (s *service) findPost(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post id is required")
	}
	post, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	return post, nil
}

func applyUpdate(post *models.BlogPost, input UpdatePostInput) {
	if input.Title != nil {
		post.Title = strings.TrimSpace(*input.Title)
	}
	if input.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*input.Excerpt)
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Image != nil {
		post.Image = strings.TrimSpace(*input.Image)
	}
	if input.Category != nil {
		post.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		post.Tags = pq.StringArray(*input.Tags)
	}
	if input.Published != nil {
		post.Published = *input.Published
	}
	if input.Featured != nil {
		post.Featured = *input.Featured
	}
}

func validatePost(title, excerpt, content, category string) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(title) > maxTitleLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "title must be at most 200 characters")
	}
	if len(excerpt) > maxExcerptLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "excerpt must be at most 500 characters")
	}
	if strings.TrimSpace(content) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if strings.TrimSpace(category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	return nil
}
