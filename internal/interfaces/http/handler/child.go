package handler

import (
	"github.com/gin-gonic/gin"

	appsponsorship "github.com/sponsorship/backend/internal/application/sponsorship"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
	"github.com/sponsorship/backend/internal/interfaces/http/dto"
)

// ChildHandler handles sponsored child API endpoints
type ChildHandler struct {
	BaseHandler
	children     sponsorship.ChildRepository
	caseStudies  *appsponsorship.CaseStudyService
	descriptions *appsponsorship.DescriptionService
}

// NewChildHandler creates a new ChildHandler
func NewChildHandler(
	children sponsorship.ChildRepository,
	caseStudies *appsponsorship.CaseStudyService,
	descriptions *appsponsorship.DescriptionService,
) *ChildHandler {
	return &ChildHandler{
		children:     children,
		caseStudies:  caseStudies,
		descriptions: descriptions,
	}
}

// RegisterRoutes registers child routes
func (h *ChildHandler) RegisterRoutes(rg *gin.RouterGroup) {
	children := rg.Group("/children")
	{
		children.GET("/:id", h.GetChild)
		children.POST("/:id/case-study", h.FetchCaseStudy)
		children.POST("/:id/descriptions", h.GenerateDescriptions)
	}
}

// ChildResponse represents a sponsored child in responses
type ChildResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Gender        string `json:"gender,omitempty"`
	Type          string `json:"type"`
	DescriptionEN string `json:"description_en,omitempty"`
	DescriptionFR string `json:"description_fr,omitempty"`
	dto.TimestampResponse
}

func toChildResponse(child *sponsorship.Child) ChildResponse {
	return ChildResponse{
		ID:            child.ID.String(),
		Name:          child.Name,
		Code:          child.Code,
		Gender:        string(child.Gender),
		Type:          string(child.Type),
		DescriptionEN: child.DescriptionEN,
		DescriptionFR: child.DescriptionFR,
		TimestampResponse: dto.TimestampResponse{
			CreatedAt: child.CreatedAt,
			UpdatedAt: child.UpdatedAt,
		},
	}
}

// CaseStudyResponse represents a case study snapshot in responses
type CaseStudyResponse struct {
	ID              string              `json:"id"`
	ChildID         string              `json:"child_id"`
	InfoDate        string              `json:"info_date,omitempty"`
	SchoolLevel     string              `json:"school_level,omitempty"`
	AttendingSchool bool                `json:"attending_school"`
	FamilySize      int                 `json:"family_size"`
	Facts           map[string][]string `json:"facts"`
}

func toCaseStudyResponse(cs *sponsorship.CaseStudy) CaseStudyResponse {
	facts := make(map[string][]string)
	for _, v := range cs.Values {
		facts[string(v.Category)] = append(facts[string(v.Category)], v.ValueEN)
	}
	return CaseStudyResponse{
		ID:              cs.ID.String(),
		ChildID:         cs.ChildID.String(),
		InfoDate:        cs.InfoDate,
		SchoolLevel:     cs.SchoolLevel,
		AttendingSchool: cs.AttendingSchool,
		FamilySize:      cs.FamilySize,
		Facts:           facts,
	}
}

// GetChild returns one sponsored child
func (h *ChildHandler) GetChild(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	child, err := h.children.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toChildResponse(child))
}

// FetchCaseStudy pulls the child's case study from the provider and stores
// a normalized snapshot. A 204 means the provider has none.
func (h *ChildHandler) FetchCaseStudy(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	cs, err := h.caseStudies.FetchCaseStudy(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cs == nil {
		h.NoContent(c)
		return
	}

	h.Created(c, toCaseStudyResponse(cs))
}

// GenerateDescriptions builds the child's descriptions from the latest case
// study snapshot
func (h *ChildHandler) GenerateDescriptions(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	child, err := h.descriptions.GenerateDescriptions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toChildResponse(child))
}
