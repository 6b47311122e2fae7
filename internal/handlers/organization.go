package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/dto"
	apierrors "github.com/fremontasb/fremont-api/internal/errors"
	"github.com/fremontasb/fremont-api/internal/middleware"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler serves the organization directory and its management surface.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

type linkRequest struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"url" binding:"required"`
}

// ListOrganizations returns the organizations the user manages or belongs to.
// With ?clubs=true every club is included.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	input := services.ListOrganizationsInput{}
	if raw := c.Query("clubs"); raw != "" {
		clubs, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid clubs flag")
			return
		}
		input.IncludeClubs = clubs
	}
	if raw := c.Query("type"); raw != "" {
		orgType := models.OrganizationType(strings.ToUpper(raw))
		input.Type = &orgType
	}

	orgs, err := h.orgService.ListOrganizations(actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationDTOs(orgs),
	})
}

// GetOrganization returns organization details for an end user
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	h.getOrganization(c, access.ActionView)
}

// ListManagedOrganizations returns the organizations the user administers or advises
func (h *OrganizationHandler) ListManagedOrganizations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	orgs, err := h.orgService.ListManagedOrganizations(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationDTOs(orgs),
	})
}

// GetManagedOrganization returns organization details for its staff
func (h *OrganizationHandler) GetManagedOrganization(c *gin.Context) {
	h.getOrganization(c, access.ActionManage)
}

func (h *OrganizationHandler) getOrganization(c *gin.Context, action access.Action) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	detail, err := h.orgService.GetOrganization(actor, middleware.IDParam(c, "id"), action)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*detail.Organization, detail.Role.String()))
}

// CreateOrganization creates a new organization
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateOrgRequest struct {
		Name             string                  `json:"name" binding:"required"`
		Type             models.OrganizationType `json:"type" binding:"required"`
		Description      string                  `json:"description"`
		Day              *models.DayOfWeek       `json:"day"`
		Time             *string                 `json:"time"`
		Location         *string                 `json:"location"`
		Link             string                  `json:"link"`
		IcalLinks        []string                `json:"ical_links"`
		Required         bool                    `json:"required"`
		RequiredGradYear *int                    `json:"required_grad_year"`
		Admins           []uint64                `json:"admins"`
		Advisors         []uint64                `json:"advisors"`
		Links            []linkRequest           `json:"links"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	links := make([]services.LinkInput, len(req.Links))
	for i, l := range req.Links {
		links[i] = services.LinkInput{Title: l.Title, URL: l.URL}
	}

	org, err := h.orgService.CreateOrganization(actor, services.CreateOrganizationInput{
		Name:             req.Name,
		Type:             req.Type,
		Description:      req.Description,
		Day:              req.Day,
		Time:             req.Time,
		Location:         req.Location,
		Link:             req.Link,
		IcalLinks:        req.IcalLinks,
		Required:         req.Required,
		RequiredGradYear: req.RequiredGradYear,
		AdminIDs:         req.Admins,
		AdvisorIDs:       req.Advisors,
		Links:            links,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDetailDTO(*org, access.RoleSuperuser.String()))
}

// UpdateOrganization updates organization fields. Fields left out of the body are unchanged.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type UpdateOrgRequest struct {
		Name             *string                    `json:"name"`
		Description      *string                    `json:"description"`
		Day              nullable[models.DayOfWeek] `json:"day"`
		Time             nullable[string]           `json:"time"`
		Location         *string                    `json:"location"`
		Link             *string                    `json:"link"`
		IcalLinks        *[]string                  `json:"ical_links"`
		Type             *models.OrganizationType   `json:"type"`
		Required         *bool                      `json:"required"`
		RequiredGradYear nullable[int]              `json:"required_grad_year"`
		Admins           *[]uint64                  `json:"admins"`
		Advisors         *[]uint64                  `json:"advisors"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.UpdateOrganization(actor, middleware.IDParam(c, "id"), services.UpdateOrganizationInput{
		Name:             req.Name,
		Description:      req.Description,
		Day:              req.Day.Value,
		ClearDay:         req.Day.cleared(),
		Time:             req.Time.Value,
		ClearTime:        req.Time.cleared(),
		Location:         req.Location,
		Link:             req.Link,
		IcalLinks:        req.IcalLinks,
		Type:             req.Type,
		Required:         req.Required,
		RequiredGradYear: req.RequiredGradYear.Value,
		ClearGradYear:    req.RequiredGradYear.cleared(),
		AdminIDs:         req.Admins,
		AdvisorIDs:       req.Advisors,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, ""))
}

// DeleteOrganization deletes an organization with its links, posts and memberships
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.orgService.DeleteOrganization(actor, middleware.IDParam(c, "id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization deleted successfully",
	})
}

// AddLink attaches a link to an organization
func (h *OrganizationHandler) AddLink(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	link, err := h.orgService.AddLink(actor, middleware.IDParam(c, "id"), services.LinkInput{Title: req.Title, URL: req.URL})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLinkDTO(*link))
}

// DeleteLink removes a link from an organization
func (h *OrganizationHandler) DeleteLink(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.orgService.DeleteLink(actor, middleware.IDParam(c, "id"), middleware.IDParam(c, "link_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
