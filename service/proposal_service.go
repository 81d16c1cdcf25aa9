package service

import (
	"context"
	"fmt"
	"strings"

	"memoryvault/core"
	"memoryvault/models"

	"gorm.io/gorm"
)

// ProposalService records answers given in the proposal section.
type ProposalService struct {
	db *gorm.DB
}

func NewProposalService(db *gorm.DB) *ProposalService {
	return &ProposalService{db: db}
}

func (s *ProposalService) Respond(ctx context.Context, response string) (*models.ProposalResponse, error) {
	response = strings.ToLower(strings.TrimSpace(response))
	switch response {
	case models.ProposalYes, models.ProposalNo:
	case "":
		return nil, core.Required("response")
	default:
		return nil, core.Invalid("response", "response must be yes or no")
	}

	p := models.ProposalResponse{Response: response}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to record proposal response: %w", err)
	}
	return &p, nil
}

// List returns every recorded answer, newest first.
func (s *ProposalService) List(ctx context.Context) ([]models.ProposalResponse, error) {
	var responses []models.ProposalResponse
	if err := s.db.WithContext(ctx).Order("responded_at DESC").Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to list proposal responses: %w", err)
	}
	return responses, nil
}
