package blogs

import (
	"context"
	"fmt"
	"net/http"
)

func (s *Service) ListAttachments(ctx context.Context, blogID int64) ([]*Attachment, error) {
	var list []*Attachment
	if err := s.api.GetJSON(ctx, attachmentsPath(blogID), nil, &list); err != nil {
		return nil, fmt.Errorf("[blogs ListAttachments] blog %d: %w", blogID, err)
	}
	return list, nil
}

// CreateAttachment uploads f to the file host and registers its URL on the blog
func (s *Service) CreateAttachment(ctx context.Context, blogID int64, f File) (*Attachment, error) {
	fileURL, err := s.upload(ctx, &f)
	if err != nil {
		return nil, fmt.Errorf("[blogs CreateAttachment] %w", err)
	}

	body := struct {
		FileURL string `json:"file_url"`
	}{FileURL: fileURL}

	var a Attachment
	if err := s.api.SendJSON(ctx, http.MethodPost, attachmentsPath(blogID), body, &a); err != nil {
		return nil, fmt.Errorf("[blogs CreateAttachment] blog %d: %w", blogID, err)
	}
	return &a, nil
}

func (s *Service) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	if err := s.api.SendJSON(ctx, http.MethodDelete, attachmentPath(attachmentID), nil, nil); err != nil {
		return fmt.Errorf("[blogs DeleteAttachment] attachment %d: %w", attachmentID, err)
	}
	return nil
}
