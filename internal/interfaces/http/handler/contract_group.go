package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apprecurring "github.com/sponsorship/backend/internal/application/recurring"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/interfaces/http/dto"
)

// dateLayout is the wire format of billing dates
const dateLayout = "2006-01-02"

// ContractGroupHandler handles contract group API endpoints
type ContractGroupHandler struct {
	BaseHandler
	groups     *apprecurring.ContractGroupService
	generation *apprecurring.InvoiceGenerationService
	cleanup    *apprecurring.InvoiceCleanupService
}

// NewContractGroupHandler creates a new ContractGroupHandler
func NewContractGroupHandler(
	groups *apprecurring.ContractGroupService,
	generation *apprecurring.InvoiceGenerationService,
	cleanup *apprecurring.InvoiceCleanupService,
) *ContractGroupHandler {
	return &ContractGroupHandler{
		groups:     groups,
		generation: generation,
		cleanup:    cleanup,
	}
}

// RegisterRoutes registers contract group routes
func (h *ContractGroupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/contract-groups")
	{
		groups.GET("/:id", h.GetGroup)
		groups.PUT("/:id", h.UpdateGroup)
		groups.POST("/:id/refresh-dates", h.RefreshDates)
		groups.POST("/:id/generate-invoices", h.GenerateInvoices)
		groups.POST("/:id/clean-invoices", h.CleanInvoices)
	}
}

// ContractGroupResponse represents a contract group in responses
type ContractGroupResponse struct {
	ID                   string  `json:"id"`
	PartnerID            string  `json:"partner_id"`
	Ref                  string  `json:"ref"`
	RecurringUnit        string  `json:"recurring_unit"`
	RecurringValue       int     `json:"recurring_value"`
	AdvanceBillingMonths int     `json:"advance_billing_months"`
	ChangeMethod         string  `json:"change_method"`
	NextInvoiceDate      *string `json:"next_invoice_date,omitempty"`
	LastPaidInvoiceDate  *string `json:"last_paid_invoice_date,omitempty"`
	dto.TimestampResponse
}

func toContractGroupResponse(g *recurring.ContractGroup) ContractGroupResponse {
	resp := ContractGroupResponse{
		ID:                   g.ID.String(),
		PartnerID:            g.PartnerID.String(),
		Ref:                  g.Ref,
		RecurringUnit:        string(g.RecurringUnit),
		RecurringValue:       g.RecurringValue,
		AdvanceBillingMonths: g.AdvanceBillingMonths,
		ChangeMethod:         string(g.ChangeMethod),
		TimestampResponse: dto.TimestampResponse{
			CreatedAt: g.CreatedAt,
			UpdatedAt: g.UpdatedAt,
		},
	}
	if g.NextInvoiceDate != nil {
		next := g.NextInvoiceDate.Format(dateLayout)
		resp.NextInvoiceDate = &next
	}
	if g.LastPaidInvoiceDate != nil {
		last := g.LastPaidInvoiceDate.Format(dateLayout)
		resp.LastPaidInvoiceDate = &last
	}
	return resp
}

// GetGroup returns one contract group
func (h *ContractGroupHandler) GetGroup(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	group, err := h.groups.GetGroup(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractGroupResponse(group))
}

// UpdateGroupRequest carries the mutable contract group fields. Absent
// fields are left untouched.
type UpdateGroupRequest struct {
	PaymentTermID           *string `json:"payment_term_id"`
	RecurringUnit           *string `json:"recurring_unit" binding:"omitempty,oneof=day week month year"`
	RecurringValue          *int    `json:"recurring_value" binding:"omitempty,min=1"`
	AdvanceBillingMonths    *int    `json:"advance_billing_months" binding:"omitempty,min=1"`
	ChangeMethod            *string `json:"change_method" binding:"omitempty,oneof=do_nothing clean_invoices"`
	NextInvoiceDateOverride *string `json:"next_invoice_date_override"`
}

// UpdateGroup updates a contract group's billing settings, applying the
// group's change method when billing-affecting fields move
func (h *ContractGroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := apprecurring.UpdateGroupInput{
		RecurringValue:       req.RecurringValue,
		AdvanceBillingMonths: req.AdvanceBillingMonths,
	}
	if req.PaymentTermID != nil {
		termID, err := uuid.Parse(*req.PaymentTermID)
		if err != nil {
			h.BadRequest(c, "Invalid payment term ID")
			return
		}
		input.PaymentTermID = &termID
	}
	if req.RecurringUnit != nil {
		unit := recurring.RecurringUnit(*req.RecurringUnit)
		input.RecurringUnit = &unit
	}
	if req.ChangeMethod != nil {
		method := recurring.ChangeMethod(*req.ChangeMethod)
		input.ChangeMethod = &method
	}
	if req.NextInvoiceDateOverride != nil {
		override, err := time.Parse(dateLayout, *req.NextInvoiceDateOverride)
		if err != nil {
			h.BadRequest(c, "Invalid next invoice date, expected YYYY-MM-DD")
			return
		}
		input.NextInvoiceDateOverride = &override
	}

	group, err := h.groups.UpdateGroup(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractGroupResponse(group))
}

// RefreshDates recomputes the group's derived dates from member contracts
func (h *ContractGroupHandler) RefreshDates(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	group, err := h.groups.RefreshGroupDates(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractGroupResponse(group))
}

// GenerateRequest selects how a generation run is executed
type GenerateRequest struct {
	Sync bool `json:"sync"`
}

// GenerationRunResponse reports the run token of a generation
type GenerationRunResponse struct {
	InvoicerID string `json:"invoicer_id"`
	Sync       bool   `json:"sync"`
}

// GenerateInvoices starts an invoice generation run for one group
func (h *ContractGroupHandler) GenerateInvoices(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	invoicer, err := h.generation.Generate(c.Request.Context(), []uuid.UUID{id}, apprecurring.GenerateOptions{
		Sync: req.Sync,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := GenerationRunResponse{InvoicerID: invoicer.ID.String(), Sync: req.Sync}
	if req.Sync {
		h.Success(c, resp)
		return
	}
	h.Accepted(c, resp)
}

// CleanInvoices cancels and regenerates the group's pending invoices
func (h *ContractGroupHandler) CleanInvoices(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.cleanup.CleanInvoices(c.Request.Context(), []uuid.UUID{id}, apprecurring.CleanOptions{
		Sync: req.Sync,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Sync {
		h.NoContent(c)
		return
	}
	h.Accepted(c, gin.H{"group_id": id.String()})
}

// parseID binds and parses the :id path parameter
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
