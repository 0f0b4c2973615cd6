package app

import (
	"context"
	"fmt"
	"strings"

	"question_rotation_service/internal/domain/question"
	"question_rotation_service/internal/domain/region"
	idb "question_rotation_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the catalog service
var ErrEmptyRegionName = fmt.Errorf("region name must not be empty")
var ErrEmptyQuestionContent = fmt.Errorf("question content must not be empty")
var ErrRegionExists = fmt.Errorf("region with this name already exists")
var ErrEligibilityExists = fmt.Errorf("question is already eligible for this region")

// CatalogService provisions regions, questions, and eligibility pairs.
// Question content is immutable once created; there is no edit path.
type CatalogService struct {
	regionRepo   region.Repository
	questionRepo question.Repository
	logger       *logrus.Logger
}

func NewCatalogService(rr region.Repository, qr question.Repository, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		regionRepo:   rr,
		questionRepo: qr,
		logger:       logger,
	}
}

func (s *CatalogService) AddRegion(ctx context.Context, name string) (*region.Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRegionName
	}

	newRegion := &region.Region{Name: name}
	if err := s.regionRepo.Create(ctx, newRegion); err != nil {
		if err == idb.ErrDuplicateRegionName {
			return nil, ErrRegionExists
		}
		return nil, fmt.Errorf("failed to create region: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"region_id": newRegion.ID, "name": name}).Info("Region created.")
	return newRegion, nil
}

func (s *CatalogService) AddQuestion(ctx context.Context, content string) (*question.Question, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyQuestionContent
	}

	newQuestion := &question.Question{Content: content}
	if err := s.questionRepo.Create(ctx, newQuestion); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	s.logger.WithField("question_id", newQuestion.ID).Info("Question created.")
	return newQuestion, nil
}

// AddEligibility declares a question selectable for a region. Both sides
// are verified so a typo'd id fails loudly instead of producing a
// dangling pair.
func (s *CatalogService) AddEligibility(ctx context.Context, regionID, questionID int64) error {
	if _, err := s.regionRepo.GetByID(ctx, regionID); err != nil {
		if err == idb.ErrRegionNotFound {
			return ErrUnknownRegion
		}
		return fmt.Errorf("failed to check region %d: %w", regionID, err)
	}
	if _, err := s.questionRepo.GetByID(ctx, questionID); err != nil {
		if err == idb.ErrQuestionNotFound {
			return err
		}
		return fmt.Errorf("failed to check question %d: %w", questionID, err)
	}

	if err := s.questionRepo.AddEligibility(ctx, regionID, questionID); err != nil {
		if err == idb.ErrDuplicateEligibility {
			return ErrEligibilityExists
		}
		return fmt.Errorf("failed to add eligibility: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"region_id": regionID, "question_id": questionID}).Info("Eligibility added.")
	return nil
}

func (s *CatalogService) ListRegions(ctx context.Context) ([]*region.Region, error) {
	regions, err := s.regionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return regions, nil
}
