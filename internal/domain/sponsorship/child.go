package sponsorship

import (
	"time"

	"github.com/sponsorship/backend/internal/domain/shared"
)

// Gender of a sponsored child, as delivered by the provider
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// SponsorshipType is the provider program a child is enrolled in
type SponsorshipType string

const (
	TypeCDSP SponsorshipType = "CDSP"
	TypeLDP  SponsorshipType = "LDP"
)

// Child is a sponsored child record. Case studies attach to it append-only;
// the generated descriptions are denormalized onto the record itself.
type Child struct {
	shared.BaseEntity
	Name           string
	Code           string
	UniqueID       string
	Birthdate      *time.Time
	Gender         Gender
	Type           SponsorshipType
	AllocationDate *time.Time
	StartDate      *time.Time
	CompletionDate *time.Time
	DescriptionEN  string
	DescriptionFR  string
	DescriptionDE  string
	DescriptionIT  string
	PortraitRef    string
}

// NewChild creates a child record in the default program
func NewChild(name, code string) *Child {
	return &Child{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Code:       code,
		Type:       TypeCDSP,
	}
}

// Pronoun returns the French subject pronoun for the child
func (c *Child) Pronoun() string {
	if c.Gender == GenderMale {
		return "Il"
	}
	return "Elle"
}
