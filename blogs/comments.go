package blogs

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-blog-client/internal/errors"
)

type commentBody struct {
	Content string `json:"content"`
}

func validComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("comment is empty: %w", errors.ErrInvalidInput)
	}
	return nil
}

func (s *Service) ListComments(ctx context.Context, blogID int64, skip, limit int) ([]*Comment, error) {
	var list []*Comment
	if err := s.api.GetJSON(ctx, commentsPath(blogID), pageQuery(skip, limit), &list); err != nil {
		return nil, fmt.Errorf("[blogs ListComments] blog %d: %w", blogID, err)
	}
	return list, nil
}

func (s *Service) CreateComment(ctx context.Context, blogID int64, content string) (*Comment, error) {
	if err := validComment(content); err != nil {
		return nil, fmt.Errorf("[blogs CreateComment] %w", err)
	}
	var c Comment
	if err := s.api.SendJSON(ctx, http.MethodPost, commentsPath(blogID), commentBody{Content: content}, &c); err != nil {
		return nil, fmt.Errorf("[blogs CreateComment] blog %d: %w", blogID, err)
	}
	return &c, nil
}

func (s *Service) UpdateComment(ctx context.Context, commentID int64, content string) (*Comment, error) {
	if err := validComment(content); err != nil {
		return nil, fmt.Errorf("[blogs UpdateComment] %w", err)
	}
	var c Comment
	if err := s.api.SendJSON(ctx, http.MethodPatch, commentPath(commentID), commentBody{Content: content}, &c); err != nil {
		return nil, fmt.Errorf("[blogs UpdateComment] comment %d: %w", commentID, err)
	}
	return &c, nil
}

func (s *Service) DeleteComment(ctx context.Context, commentID int64) error {
	if err := s.api.SendJSON(ctx, http.MethodDelete, commentPath(commentID), nil, nil); err != nil {
		return fmt.Errorf("[blogs DeleteComment] comment %d: %w", commentID, err)
	}
	return nil
}

// ToggleCommentApproval flips whether a comment is shown to readers. Superusers only.
func (s *Service) ToggleCommentApproval(ctx context.Context, commentID int64) (*Comment, error) {
	var c Comment
	if err := s.api.SendJSON(ctx, http.MethodPatch, commentApprovalPath(commentID), nil, &c); err != nil {
		return nil, fmt.Errorf("[blogs ToggleCommentApproval] comment %d: %w", commentID, err)
	}
	return &c, nil
}
