package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/notifications"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/fremontasb/fremont-api/internal/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

// Notifier accepts notifications for delivery outside the request.
type Notifier interface {
	Enqueue(n notifications.Notification) error
}

// PostService provides business logic for post operations.
type PostService struct {
	store    *repository.Store
	notifier Notifier
}

// NewPostService creates a new PostService.
func NewPostService(store *repository.Store, notifier Notifier) *PostService {
	return &PostService{
		store:    store,
		notifier: notifier,
	}
}

// CreatePostInput represents parameters to create a new post.
type CreatePostInput struct {
	OrganizationID uint64
	Title          string
	Content        string
	Published      bool
}

// UpdatePostInput holds the fields to change; nil fields are left as they are.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Published *bool
}

// ListPostsInput filters and paginates post listings.
type ListPostsInput struct {
	OrganizationID *uint64
	Pagination     utils.PaginationParams
}

// ListPostsResult is a page of posts with the total count.
type ListPostsResult struct {
	Posts []models.Post
	Total int64
}

// ListPosts returns the published posts of the organizations the actor belongs to.
func (s *PostService) ListPosts(actor access.Actor, input ListPostsInput) (*ListPostsResult, error) {
	scopes := []func(*gorm.DB) *gorm.DB{access.PublishedForMember(actor)}
	return s.list(scopes, input)
}

// ListManagedPosts returns every post, drafts included, of the organizations the actor manages.
func (s *PostService) ListManagedPosts(actor access.Actor, input ListPostsInput) (*ListPostsResult, error) {
	scopes := []func(*gorm.DB) *gorm.DB{access.ManagedPosts(actor)}
	return s.list(scopes, input)
}

func (s *PostService) list(scopes []func(*gorm.DB) *gorm.DB, input ListPostsInput) (*ListPostsResult, error) {
	if input.OrganizationID != nil {
		scopes = append(scopes, access.PostsOfOrganization(*input.OrganizationID))
	}

	posts, total, err := s.store.Posts.List(input.Pagination, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &ListPostsResult{Posts: posts, Total: total}, nil
}

// GetPost returns a post the actor may access with the given action. Posts
// the actor may not access are reported as not found.
func (s *PostService) GetPost(actor access.Actor, postID uint64, action access.Action) (*models.Post, error) {
	post, err := s.store.Posts.FindByID(postID, "Organization")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	role, err := access.NewResolver(s.store.Organizations, s.store.Memberships).OrganizationRole(actor, post.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := access.Post(role, post, action); err != nil {
		return nil, ErrPostNotFound
	}

	return post, nil
}

// CreatePost creates a post in an organization the actor manages. Creating
// a published post notifies the organization.
func (s *PostService) CreatePost(actor access.Actor, input CreatePostInput) (*models.Post, error) {
	post := &models.Post{
		OrganizationID: input.OrganizationID,
		Title:          strings.TrimSpace(input.Title),
		Content:        input.Content,
		Published:      input.Published,
	}
	if err := validateStruct(*post); err != nil {
		return nil, err
	}

	err := s.store.Transaction(func(tx *repository.Store) error {
		if _, err := tx.Organizations.FindByID(input.OrganizationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrganizationNotFound
			}
			return err
		}

		role, err := access.NewResolver(tx.Organizations, tx.Memberships).OrganizationRole(actor, input.OrganizationID)
		if err != nil {
			return err
		}
		if err := access.Post(role, post, access.ActionCreate); err != nil {
			return err
		}

		return tx.Posts.Create(post)
	})
	if err != nil {
		return nil, wrapPostError("create", err)
	}

	s.notifyIfPublished(nil, post)
	return post, nil
}

// UpdatePost changes a post the actor manages. Moving the post from draft to
// published notifies the organization; other edits do not.
func (s *PostService) UpdatePost(actor access.Actor, postID uint64, input UpdatePostInput) (*models.Post, error) {
	var (
		post     *models.Post
		previous bool
	)

	err := s.store.Transaction(func(tx *repository.Store) error {
		found, err := tx.Posts.FindByID(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		role, err := access.NewResolver(tx.Organizations, tx.Memberships).OrganizationRole(actor, found.OrganizationID)
		if err != nil {
			return err
		}
		if err := access.Post(role, found, access.ActionUpdate); err != nil {
			if access.Post(role, found, access.ActionView) != nil {
				return ErrPostNotFound
			}
			return err
		}

		previous = found.Published

		if input.Title != nil {
			found.Title = strings.TrimSpace(*input.Title)
		}
		if input.Content != nil {
			found.Content = *input.Content
		}
		if input.Published != nil {
			found.Published = *input.Published
		}
		if err := validateStruct(*found); err != nil {
			return err
		}

		post = found
		return tx.Posts.Update(found)
	})
	if err != nil {
		return nil, wrapPostError("update", err)
	}

	s.notifyIfPublished(&previous, post)
	return post, nil
}

// DeletePost removes a post the actor manages.
func (s *PostService) DeletePost(actor access.Actor, postID uint64) error {
	err := s.store.Transaction(func(tx *repository.Store) error {
		post, err := tx.Posts.FindByID(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		role, err := access.NewResolver(tx.Organizations, tx.Memberships).OrganizationRole(actor, post.OrganizationID)
		if err != nil {
			return err
		}
		if err := access.Post(role, post, access.ActionDelete); err != nil {
			if access.Post(role, post, access.ActionView) != nil {
				return ErrPostNotFound
			}
			return err
		}

		return tx.Posts.Delete(postID)
	})
	if err != nil {
		return wrapPostError("delete", err)
	}
	return nil
}

// notifyIfPublished runs after the write has committed. Delivery problems
// are logged and never fail the write.
func (s *PostService) notifyIfPublished(previous *bool, post *models.Post) {
	if s.notifier == nil || !PublishTransition(previous, post.Published) {
		return
	}

	err := s.notifier.Enqueue(notifications.Notification{
		PostID:         post.ID,
		OrganizationID: post.OrganizationID,
		Title:          post.Title,
		Content:        post.Content,
	})
	if err != nil {
		log.Error().Err(err).Uint64("post_id", post.ID).Msg("Failed to queue post notification")
	}
}

func wrapPostError(op string, err error) error {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrOrganizationNotFound),
		errors.Is(err, ErrPermissionDenied):
		return err
	default:
		return fmt.Errorf("failed to %s post: %w", op, err)
	}
}
