package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository"
)

const MaxCommentLength = 2000

// CommentService lets authenticated guests comment on products and delete
// their own comments. Admins may delete anyone's.
type CommentService struct {
	comments repository.CommentRepository
	products repository.ProductRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		products: products,
		users:    users,
		logger:   logger,
	}
}

// AddComment posts a comment on a product. The author's username is
// snapshotted into the row so the display name survives account changes.
func (s *CommentService) AddComment(ctx context.Context, productID, userID, body string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "comment body is required")
	}
	if len(body) > MaxCommentLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ProductID: productID,
		UserID:    user.ID,
		Username:  user.Username,
		Body:      body,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		slog.String("id", comment.ID),
		slog.String("productID", productID),
		slog.String("userID", user.ID),
	)
	return comment, nil
}

// DeleteComment removes a comment if the requester wrote it (or is an
// admin); anyone else gets Forbidden and the row stays.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, requestingUserID string) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != requestingUserID {
		requester, err := s.users.GetUserByID(ctx, requestingUserID)
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			// An unknown requester is not the author either.
			return apperror.Forbidden("only the author may delete a comment")
		case err != nil:
			return err
		case !requester.IsAdmin():
			return apperror.Forbidden("only the author may delete a comment")
		}
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		slog.String("id", commentID),
		slog.String("requestedBy", requestingUserID),
	)
	return nil
}

// ListComments returns a product's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, productID string) ([]model.Comment, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.comments.ListCommentsByProduct(ctx, productID)
}
