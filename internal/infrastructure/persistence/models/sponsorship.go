package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
)

// ChildModel is the GORM model for sponsored children
type ChildModel struct {
	Base
	Name           string `gorm:"type:varchar(128);not null"`
	Code           string `gorm:"type:varchar(128);not null;uniqueIndex"`
	UniqueID       string `gorm:"type:varchar(128)"`
	Birthdate      *time.Time
	Gender         string `gorm:"type:varchar(1)"`
	Type           string `gorm:"type:varchar(10);not null;default:'CDSP'"`
	AllocationDate *time.Time
	StartDate      *time.Time
	CompletionDate *time.Time
	DescriptionEN  string `gorm:"type:text"`
	DescriptionFR  string `gorm:"type:text"`
	DescriptionDE  string `gorm:"type:text"`
	DescriptionIT  string `gorm:"type:text"`
	PortraitRef    string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ChildModel) TableName() string {
	return "children"
}

// ToDomain converts the model to a domain child
func (m *ChildModel) ToDomain() *sponsorship.Child {
	return &sponsorship.Child{
		BaseEntity:     m.Base.Entity(),
		Name:           m.Name,
		Code:           m.Code,
		UniqueID:       m.UniqueID,
		Birthdate:      m.Birthdate,
		Gender:         sponsorship.Gender(m.Gender),
		Type:           sponsorship.SponsorshipType(m.Type),
		AllocationDate: m.AllocationDate,
		StartDate:      m.StartDate,
		CompletionDate: m.CompletionDate,
		DescriptionEN:  m.DescriptionEN,
		DescriptionFR:  m.DescriptionFR,
		DescriptionDE:  m.DescriptionDE,
		DescriptionIT:  m.DescriptionIT,
		PortraitRef:    m.PortraitRef,
	}
}

// ChildModelFromDomain converts a domain child to the model
func ChildModelFromDomain(c *sponsorship.Child) *ChildModel {
	m := &ChildModel{
		Name:           c.Name,
		Code:           c.Code,
		UniqueID:       c.UniqueID,
		Birthdate:      c.Birthdate,
		Gender:         string(c.Gender),
		Type:           string(c.Type),
		AllocationDate: c.AllocationDate,
		StartDate:      c.StartDate,
		CompletionDate: c.CompletionDate,
		DescriptionEN:  c.DescriptionEN,
		DescriptionFR:  c.DescriptionFR,
		DescriptionDE:  c.DescriptionDE,
		DescriptionIT:  c.DescriptionIT,
		PortraitRef:    c.PortraitRef,
	}
	m.SetEntity(c.BaseEntity)
	return m
}

// PropertyValueModel is the GORM model for deduplicated case-study facts
type PropertyValueModel struct {
	Base
	Category string `gorm:"type:varchar(50);not null;uniqueIndex:idx_property_value_category_value,priority:1"`
	ValueEN  string `gorm:"type:varchar(200);not null;uniqueIndex:idx_property_value_category_value,priority:2"`
	ValueFR  string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (PropertyValueModel) TableName() string {
	return "child_property_values"
}

// ToDomain converts the model to a domain property value
func (m *PropertyValueModel) ToDomain() *sponsorship.PropertyValue {
	return &sponsorship.PropertyValue{
		BaseEntity: m.Base.Entity(),
		Category:   sponsorship.PropertyCategory(m.Category),
		ValueEN:    m.ValueEN,
		ValueFR:    m.ValueFR,
	}
}

// PropertyValueModelFromDomain converts a domain property value to the model
func PropertyValueModelFromDomain(v *sponsorship.PropertyValue) *PropertyValueModel {
	m := &PropertyValueModel{
		Category: string(v.Category),
		ValueEN:  v.ValueEN,
		ValueFR:  v.ValueFR,
	}
	m.SetEntity(v.BaseEntity)
	return m
}

// CaseStudyModel is the GORM model for case-study snapshots. The facts are
// stored through the join table and preloaded with their reference rows.
type CaseStudyModel struct {
	Base
	ChildID         uuid.UUID `gorm:"type:uuid;not null;index"`
	InfoDate        string    `gorm:"type:varchar(20)"`
	SchoolLevel     string    `gorm:"type:varchar(10)"`
	AttendingSchool bool      `gorm:"not null;default:false"`
	FamilySize      int       `gorm:"not null;default:0"`
	Values          []CaseStudyValueModel `gorm:"foreignKey:CaseStudyID;references:ID"`
}

// TableName returns the table name for GORM
func (CaseStudyModel) TableName() string {
	return "child_case_studies"
}

// CaseStudyValueModel links a case study to one property value, preserving
// the order in which facts were normalized.
type CaseStudyValueModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	CaseStudyID uuid.UUID `gorm:"type:uuid;not null;index"`
	ValueID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Position    int       `gorm:"not null"`

	Value *PropertyValueModel `gorm:"foreignKey:ValueID;references:ID"`
}

// TableName returns the table name for GORM
func (CaseStudyValueModel) TableName() string {
	return "child_case_study_values"
}

// ToDomain converts the model to a domain case study
func (m *CaseStudyModel) ToDomain() *sponsorship.CaseStudy {
	cs := &sponsorship.CaseStudy{
		BaseEntity:      m.Base.Entity(),
		ChildID:         m.ChildID,
		InfoDate:        m.InfoDate,
		SchoolLevel:     m.SchoolLevel,
		AttendingSchool: m.AttendingSchool,
		FamilySize:      m.FamilySize,
	}
	for _, v := range m.Values {
		if v.Value == nil {
			continue
		}
		cs.Values = append(cs.Values, *v.Value.ToDomain())
	}
	return cs
}

// CaseStudyModelFromDomain converts a domain case study to the model
func CaseStudyModelFromDomain(cs *sponsorship.CaseStudy) *CaseStudyModel {
	m := &CaseStudyModel{
		ChildID:         cs.ChildID,
		InfoDate:        cs.InfoDate,
		SchoolLevel:     cs.SchoolLevel,
		AttendingSchool: cs.AttendingSchool,
		FamilySize:      cs.FamilySize,
	}
	m.SetEntity(cs.BaseEntity)
	for i, v := range cs.Values {
		m.Values = append(m.Values, CaseStudyValueModel{
			ID:          uuid.New(),
			CaseStudyID: cs.ID,
			ValueID:     v.ID,
			Position:    i,
		})
	}
	return m
}
