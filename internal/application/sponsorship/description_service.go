package sponsorship

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
)

// ErrNoCaseStudy is returned when a description is requested for a child
// without any case-study snapshot.
var ErrNoCaseStudy = shared.NewDomainError(
	"NO_CASE_STUDY",
	"Cannot generate a description for a child without a case study")

// DescriptionService writes generated child descriptions from the most
// recent case-study snapshot.
type DescriptionService struct {
	children sponsorship.ChildRepository
	studies  sponsorship.CaseStudyRepository
	logger   *zap.Logger
}

// NewDescriptionService creates a new DescriptionService
func NewDescriptionService(
	children sponsorship.ChildRepository,
	studies sponsorship.CaseStudyRepository,
	logger *zap.Logger,
) *DescriptionService {
	return &DescriptionService{
		children: children,
		studies:  studies,
		logger:   logger,
	}
}

// GenerateDescriptions composes the French description from the child's
// latest case study and stores it on the child record.
func (s *DescriptionService) GenerateDescriptions(ctx context.Context, childID uuid.UUID) (*sponsorship.Child, error) {
	child, err := s.children.FindByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	latest, err := s.studies.FindLatestByChild(ctx, childID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNoCaseStudy
		}
		return nil, err
	}

	child.DescriptionFR = sponsorship.ComposeFrenchDescription(child, latest)
	child.Touch()
	if err := s.children.Save(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to save child: %w", err)
	}
	s.logger.Info("descriptions generated",
		zap.String("child_code", child.Code),
		zap.Int("length_fr", len(child.DescriptionFR)),
	)
	return child, nil
}
