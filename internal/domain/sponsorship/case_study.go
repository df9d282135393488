package sponsorship

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/shared"
)

// PropertyCategory classifies the normalized case-study facts
type PropertyCategory string

const (
	CategoryChristianActivities PropertyCategory = "christian_activities"
	CategoryFamilyDuties        PropertyCategory = "family_duties"
	CategoryHobbies             PropertyCategory = "hobbies"
	CategoryHealthConditions    PropertyCategory = "health_conditions"
	CategoryGuardians           PropertyCategory = "guardians"
	CategoryFather              PropertyCategory = "father"
	CategoryMother              PropertyCategory = "mother"
	CategoryMaleGuardian        PropertyCategory = "male_guardian"
	CategoryFemaleGuardian      PropertyCategory = "female_guardian"
	CategoryMaritalStatus       PropertyCategory = "marital_status"
	CategorySchoolPerformance   PropertyCategory = "school_performance"
	CategorySchoolBestSubject   PropertyCategory = "school_best_subject"
)

// PropertyValue is one deduplicated case-study fact: a value within a
// category. Rows are append-only reference data, matched case-insensitively
// on the English value and created lazily on first occurrence. The French
// translation is filled in by operators over time.
type PropertyValue struct {
	shared.BaseEntity
	Category PropertyCategory
	ValueEN  string
	ValueFR  string
}

// NewPropertyValue creates a fact, storing the English value lowercased so
// that lookups stay case-insensitive
func NewPropertyValue(category PropertyCategory, valueEN string) *PropertyValue {
	return &PropertyValue{
		BaseEntity: shared.NewBaseEntity(),
		Category:   category,
		ValueEN:    strings.ToLower(valueEN),
	}
}

// DisplayFR returns the French translation, falling back to the English value
func (v *PropertyValue) DisplayFR() string {
	if v.ValueFR != "" {
		return v.ValueFR
	}
	return v.ValueEN
}

// CaseStudy is a structured snapshot of a child's life facts fetched from the
// provider. Records are append-only history; the most recent one is the last
// created.
type CaseStudy struct {
	shared.BaseEntity
	ChildID         uuid.UUID
	InfoDate        string
	SchoolLevel     string
	AttendingSchool bool
	FamilySize      int
	Values          []PropertyValue
}

// NewCaseStudy creates a case study snapshot for a child
func NewCaseStudy(childID uuid.UUID, infoDate string) *CaseStudy {
	return &CaseStudy{
		BaseEntity: shared.NewBaseEntity(),
		ChildID:    childID,
		InfoDate:   infoDate,
	}
}

// ValuesFor returns the facts of one category, preserving insertion order
func (cs *CaseStudy) ValuesFor(category PropertyCategory) []PropertyValue {
	var values []PropertyValue
	for _, v := range cs.Values {
		if v.Category == category {
			values = append(values, v)
		}
	}
	return values
}
