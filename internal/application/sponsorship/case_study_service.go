package sponsorship

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
)

// noneSentinel is the literal string the provider sends for an empty
// "OtherX" field. Only this exact value is dropped; any other present
// value, including an empty string, is treated as data.
const noneSentinel = "None"

// CaseStudyService fetches case studies from the provider, normalizes them
// into flat category facts and appends them to the child's history.
type CaseStudyService struct {
	children sponsorship.ChildRepository
	studies  sponsorship.CaseStudyRepository
	values   sponsorship.PropertyValueRepository
	fetcher  CaseStudyFetcher
	logger   *zap.Logger
}

// NewCaseStudyService creates a new CaseStudyService
func NewCaseStudyService(
	children sponsorship.ChildRepository,
	studies sponsorship.CaseStudyRepository,
	values sponsorship.PropertyValueRepository,
	fetcher CaseStudyFetcher,
	logger *zap.Logger,
) *CaseStudyService {
	return &CaseStudyService{
		children: children,
		studies:  studies,
		values:   values,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// FetchCaseStudy pulls the current case study for the child and stores it as
// a new snapshot. Returns (nil, nil) when the provider has none; the existing
// history is never modified.
func (s *CaseStudyService) FetchCaseStudy(ctx context.Context, childID uuid.UUID) (*sponsorship.CaseStudy, error) {
	child, err := s.children.FindByID(ctx, childID)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetcher.Fetch(ctx, child.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch case study: %w", err)
	}
	if doc == nil {
		s.logger.Info("no case study available",
			zap.String("child_code", child.Code),
		)
		return nil, nil
	}

	cs, err := s.normalize(ctx, child, doc)
	if err != nil {
		return nil, err
	}
	if err := s.studies.Create(ctx, cs); err != nil {
		return nil, fmt.Errorf("failed to save case study: %w", err)
	}
	s.logger.Info("case study fetched",
		zap.String("child_code", child.Code),
		zap.String("info_date", cs.InfoDate),
		zap.Int("facts", len(cs.Values)),
	)
	return cs, nil
}

func (s *CaseStudyService) normalize(ctx context.Context, child *sponsorship.Child, doc *CaseStudyDocument) (*sponsorship.CaseStudy, error) {
	cs := sponsorship.NewCaseStudy(child.ID, doc.ChildCaseStudyDate)
	cs.SchoolLevel = string(doc.Schooling.USSchoolEquivalent)
	cs.AttendingSchool = bool(doc.Schooling.ChildAttendingSchool)
	cs.FamilySize = int(doc.FamilySize.TotalFamilyFemalesUnder18) +
		int(doc.FamilySize.TotalFamilyMalesUnder18)

	type fact struct {
		category sponsorship.PropertyCategory
		value    string
	}
	var facts []fact
	addGroup := func(category sponsorship.PropertyCategory, group ValueGroup, other *string) {
		for _, item := range group.Items {
			facts = append(facts, fact{category, item})
		}
		if other != nil && *other != noneSentinel {
			facts = append(facts, fact{category, *other})
		}
	}

	addGroup(sponsorship.CategoryChristianActivities, doc.ChristianActivities, doc.OtherChristianActivities)
	addGroup(sponsorship.CategoryFamilyDuties, doc.FamilyDuties, doc.OtherFamilyDuties)
	addGroup(sponsorship.CategoryHobbies, doc.HobbiesAndSports, doc.OtherHobbies)
	addGroup(sponsorship.CategoryHealthConditions, doc.HealthConditions, doc.OtherHealthConditions)
	addGroup(sponsorship.CategoryGuardians, doc.Guardians, nil)

	for _, f := range flagFacts(doc.NaturalParents,
		roleFlags{"Father", "Father", sponsorship.CategoryFather},
		roleFlags{"Mother", "Mother", sponsorship.CategoryMother},
	) {
		facts = append(facts, fact{f.category, f.value})
	}
	if status := doc.NaturalParents["MaritalStatusOfParents"]; status != "" {
		facts = append(facts, fact{sponsorship.CategoryMaritalStatus, status})
	}
	for _, f := range flagFacts(doc.Employment,
		roleFlags{"Father", "FatherOrMaleGuardian", sponsorship.CategoryMaleGuardian},
		roleFlags{"Mother", "MotherOrFemaleGuardian", sponsorship.CategoryFemaleGuardian},
	) {
		facts = append(facts, fact{f.category, f.value})
	}

	if doc.Schooling.SchoolPerformance != "" {
		facts = append(facts, fact{sponsorship.CategorySchoolPerformance, doc.Schooling.SchoolPerformance})
	}
	if doc.Schooling.ChildsBestSubject != "" {
		facts = append(facts, fact{sponsorship.CategorySchoolBestSubject, doc.Schooling.ChildsBestSubject})
	}

	for _, f := range facts {
		value, err := s.resolveValue(ctx, f.category, f.value)
		if err != nil {
			return nil, err
		}
		cs.Values = append(cs.Values, *value)
	}
	return cs, nil
}

type flagFact struct {
	category sponsorship.PropertyCategory
	value    string
}

// roleFlags routes one role's flag keys: any key starting with match belongs
// to the role's category, and strip is the longer name prefix removed when a
// "true" flag contributes its own key as the fact value.
type roleFlags struct {
	match    string
	strip    string
	category sponsorship.PropertyCategory
}

// flagFacts turns a map of flag fields into facts. A flag set to the string
// "true" contributes its own name with the role prefix stripped; any other
// non-empty, non-"false" value contributes the value itself. The male prefix
// wins when a key carries both.
func flagFacts(flags FlagMap, male, female roleFlags) []flagFact {
	var out []flagFact
	for _, key := range flags.SortedKeys() {
		var role roleFlags
		switch {
		case strings.HasPrefix(key, male.match):
			role = male
		case strings.HasPrefix(key, female.match):
			role = female
		default:
			continue
		}
		value := flags[key]
		switch value {
		case "", "false":
			continue
		case "true":
			value = strings.TrimPrefix(strings.TrimPrefix(key, role.strip), role.match)
		}
		out = append(out, flagFact{role.category, value})
	}
	return out
}

// resolveValue is the case-insensitive lookup-or-create against the
// category's value table.
func (s *CaseStudyService) resolveValue(ctx context.Context, category sponsorship.PropertyCategory, raw string) (*sponsorship.PropertyValue, error) {
	value, err := s.values.FindByCategoryAndValue(ctx, category, raw)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	value = sponsorship.NewPropertyValue(category, raw)
	if err := s.values.Create(ctx, value); err != nil {
		return nil, fmt.Errorf("failed to create property value: %w", err)
	}
	return value, nil
}
