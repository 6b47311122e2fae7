package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrLinkNotFound         = errors.New("organization link not found")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	store *repository.Store
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(store *repository.Store) *OrganizationService {
	return &OrganizationService{
		store: store,
	}
}

// LinkInput describes a named link of an organization.
type LinkInput struct {
	Title string
	URL   string
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name             string
	Type             models.OrganizationType
	Description      string
	Day              *models.DayOfWeek
	Time             *string
	Location         *string
	Link             string
	IcalLinks        []string
	Required         bool
	RequiredGradYear *int
	AdminIDs         []uint64
	AdvisorIDs       []uint64
	Links            []LinkInput
}

// UpdateOrganizationInput holds the fields to change; nil fields are left as they are.
type UpdateOrganizationInput struct {
	Name             *string
	Description      *string
	Day              *models.DayOfWeek
	ClearDay         bool
	Time             *string
	ClearTime        bool
	Location         *string
	Link             *string
	IcalLinks        *[]string
	Type             *models.OrganizationType
	Required         *bool
	RequiredGradYear *int
	ClearGradYear    bool
	AdminIDs         *[]uint64
	AdvisorIDs       *[]uint64
}

// administrative reports whether the update touches fields only admins may change.
func (in UpdateOrganizationInput) administrative() bool {
	return in.AdminIDs != nil || in.AdvisorIDs != nil ||
		in.Type != nil || in.Required != nil || in.RequiredGradYear != nil || in.ClearGradYear
}

// ListOrganizationsInput filters the end-user organization listing.
type ListOrganizationsInput struct {
	IncludeClubs bool
	Type         *models.OrganizationType
}

// OrganizationDetail is an organization with its staff, links and the requester's role.
type OrganizationDetail struct {
	Organization *models.Organization
	Role         access.Role
}

func (s *OrganizationService) resolver(store *repository.Store) *access.Resolver {
	return access.NewResolver(store.Organizations, store.Memberships)
}

// CreateOrganization creates an organization and enrolls the users it requires.
func (s *OrganizationService) CreateOrganization(actor access.Actor, input CreateOrganizationInput) (*models.Organization, error) {
	role := access.RoleNone
	if actor.Superuser {
		role = access.RoleSuperuser
	}
	if err := access.Organization(role, nil, access.ActionCreate); err != nil {
		return nil, err
	}

	org := &models.Organization{
		Name:             strings.TrimSpace(input.Name),
		Type:             input.Type,
		Description:      input.Description,
		Day:              input.Day,
		Time:             input.Time,
		Location:         input.Location,
		Link:             input.Link,
		IcalLinks:        datatypes.JSONSlice[string](input.IcalLinks),
		Required:         input.Required,
		RequiredGradYear: input.RequiredGradYear,
	}
	if err := validateStruct(*org); err != nil {
		return nil, err
	}

	links := make([]models.OrganizationLink, len(input.Links))
	for i, l := range input.Links {
		links[i] = models.OrganizationLink{Title: strings.TrimSpace(l.Title), URL: strings.TrimSpace(l.URL)}
		if err := validateStruct(links[i]); err != nil {
			return nil, err
		}
	}
	org.Links = links

	err := s.store.Transaction(func(tx *repository.Store) error {
		if err := tx.Organizations.Create(org); err != nil {
			return err
		}
		if err := s.replaceStaff(tx, org, &input.AdminIDs, &input.AdvisorIDs); err != nil {
			return err
		}
		return ReconcileOrganization(tx, org)
	})
	if err != nil {
		return nil, s.wrapWriteError("create", err)
	}

	return s.load(s.store, org.ID)
}

// ListManagedOrganizations returns the organizations the actor administers or advises.
func (s *OrganizationService) ListManagedOrganizations(actor access.Actor) ([]models.Organization, error) {
	orgs, err := s.store.Organizations.List(access.ManagedOrganizations(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// ListOrganizations returns the organizations the actor manages or belongs to.
func (s *OrganizationService) ListOrganizations(actor access.Actor, input ListOrganizationsInput) ([]models.Organization, error) {
	scopes := []func(*gorm.DB) *gorm.DB{access.VisibleOrganizations(actor, input.IncludeClubs)}
	if input.Type != nil {
		scopes = append(scopes, access.OrganizationsOfType(*input.Type))
	}

	orgs, err := s.store.Organizations.List(scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// GetOrganization returns an organization the actor may read with the given
// action. Organizations the actor may not read are reported as not found.
func (s *OrganizationService) GetOrganization(actor access.Actor, orgID uint64, action access.Action) (*OrganizationDetail, error) {
	org, err := s.load(s.store, orgID)
	if err != nil {
		return nil, err
	}

	role, err := s.resolver(s.store).OrganizationRole(actor, orgID)
	if err != nil {
		return nil, err
	}
	if err := access.Organization(role, org, action); err != nil {
		return nil, ErrOrganizationNotFound
	}

	return &OrganizationDetail{Organization: org, Role: role}, nil
}

// UpdateOrganization applies the changes the actor's role allows. Advisors
// may edit descriptive fields; staff lists and enrollment controls need an admin.
func (s *OrganizationService) UpdateOrganization(actor access.Actor, orgID uint64, input UpdateOrganizationInput) (*models.Organization, error) {
	err := s.store.Transaction(func(tx *repository.Store) error {
		org, err := tx.Organizations.FindByID(orgID)
		if err != nil {
			return err
		}

		role, err := s.resolver(tx).OrganizationRole(actor, orgID)
		if err != nil {
			return err
		}
		if err := access.Organization(role, org, access.ActionUpdate); err != nil {
			return err
		}
		if input.administrative() {
			if err := access.Organization(role, org, access.ActionAdminister); err != nil {
				return err
			}
		}

		applyOrganizationUpdate(org, input)
		if err := validateStruct(*org); err != nil {
			return err
		}

		if err := tx.Organizations.Update(org); err != nil {
			return err
		}
		if err := s.replaceStaff(tx, org, input.AdminIDs, input.AdvisorIDs); err != nil {
			return err
		}
		return ReconcileOrganization(tx, org)
	})
	if err != nil {
		return nil, s.wrapWriteError("update", err)
	}

	return s.load(s.store, orgID)
}

func applyOrganizationUpdate(org *models.Organization, input UpdateOrganizationInput) {
	if input.Name != nil {
		org.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		org.Description = *input.Description
	}
	if input.ClearDay {
		org.Day = nil
	} else if input.Day != nil {
		org.Day = input.Day
	}
	if input.ClearTime {
		org.Time = nil
	} else if input.Time != nil {
		org.Time = input.Time
	}
	if input.Location != nil {
		org.Location = input.Location
	}
	if input.Link != nil {
		org.Link = *input.Link
	}
	if input.IcalLinks != nil {
		org.IcalLinks = datatypes.JSONSlice[string](*input.IcalLinks)
	}
	if input.Type != nil {
		org.Type = *input.Type
	}
	if input.Required != nil {
		org.Required = *input.Required
	}
	if input.ClearGradYear {
		org.RequiredGradYear = nil
	} else if input.RequiredGradYear != nil {
		org.RequiredGradYear = input.RequiredGradYear
	}
}

// DeleteOrganization removes an organization with its links, posts and memberships.
func (s *OrganizationService) DeleteOrganization(actor access.Actor, orgID uint64) error {
	err := s.store.Transaction(func(tx *repository.Store) error {
		org, err := tx.Organizations.FindByID(orgID)
		if err != nil {
			return err
		}

		role, err := s.resolver(tx).OrganizationRole(actor, orgID)
		if err != nil {
			return err
		}
		if err := access.Organization(role, org, access.ActionDelete); err != nil {
			return err
		}

		return tx.Organizations.Delete(orgID)
	})
	if err != nil {
		return s.wrapWriteError("delete", err)
	}
	return nil
}

// AddLink attaches a named link to an organization.
func (s *OrganizationService) AddLink(actor access.Actor, orgID uint64, input LinkInput) (*models.OrganizationLink, error) {
	link := &models.OrganizationLink{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(input.Title),
		URL:            strings.TrimSpace(input.URL),
	}
	if err := validateStruct(*link); err != nil {
		return nil, err
	}

	err := s.store.Transaction(func(tx *repository.Store) error {
		if err := s.authorize(tx, actor, orgID, access.ActionUpdate); err != nil {
			return err
		}
		return tx.Organizations.CreateLink(link)
	})
	if err != nil {
		return nil, s.wrapWriteError("add link to", err)
	}
	return link, nil
}

// DeleteLink removes a link from an organization.
func (s *OrganizationService) DeleteLink(actor access.Actor, orgID, linkID uint64) error {
	err := s.store.Transaction(func(tx *repository.Store) error {
		if err := s.authorize(tx, actor, orgID, access.ActionUpdate); err != nil {
			return err
		}
		found, err := tx.Organizations.DeleteLink(orgID, linkID)
		if err != nil {
			return err
		}
		if !found {
			return ErrLinkNotFound
		}
		return nil
	})
	if err != nil {
		return s.wrapWriteError("remove link from", err)
	}
	return nil
}

// ImportClub creates a club by name, or updates the description of an
// existing organization with that name. It reports whether a club was created.
func (s *OrganizationService) ImportClub(name, description string) (*models.Organization, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, newValidationError("name", validationMessages["required"])
	}

	var (
		org     *models.Organization
		created bool
	)
	err := s.store.Transaction(func(tx *repository.Store) error {
		existing, err := tx.Organizations.FindByName(name)
		switch {
		case err == nil:
			existing.Description = description
			org = existing
			return tx.Organizations.Update(existing)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		org = &models.Organization{
			Name:        name,
			Type:        models.OrganizationTypeClub,
			Description: description,
		}
		if err := validateStruct(*org); err != nil {
			return err
		}
		created = true
		return tx.Organizations.Create(org)
	})
	if err != nil {
		return nil, false, s.wrapWriteError("import", err)
	}
	return org, created, nil
}

func (s *OrganizationService) authorize(tx *repository.Store, actor access.Actor, orgID uint64, action access.Action) error {
	org, err := tx.Organizations.FindByID(orgID)
	if err != nil {
		return err
	}
	role, err := s.resolver(tx).OrganizationRole(actor, orgID)
	if err != nil {
		return err
	}
	return access.Organization(role, org, action)
}

// replaceStaff swaps in the given admin and advisor sets; a nil pointer leaves a set unchanged.
func (s *OrganizationService) replaceStaff(tx *repository.Store, org *models.Organization, adminIDs, advisorIDs *[]uint64) error {
	var admins, advisors []models.User
	var err error

	if adminIDs != nil {
		if admins, err = s.usersByIDs(tx, "admins", *adminIDs); err != nil {
			return err
		}
	}
	if advisorIDs != nil {
		if advisors, err = s.usersByIDs(tx, "advisors", *advisorIDs); err != nil {
			return err
		}
	}
	if admins == nil && advisors == nil {
		return nil
	}
	return tx.Organizations.ReplaceStaff(org, admins, advisors)
}

func (s *OrganizationService) usersByIDs(tx *repository.Store, field string, ids []uint64) ([]models.User, error) {
	unique := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	users, err := tx.Users.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(unique) {
		return nil, newValidationError(field, "one or more users do not exist")
	}
	return users, nil
}

func (s *OrganizationService) load(store *repository.Store, orgID uint64) (*models.Organization, error) {
	org, err := store.Organizations.FindByID(orgID, "Admins", "Advisors", "Links")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) wrapWriteError(op string, err error) error {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrOrganizationNotFound
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrLinkNotFound):
		return err
	case isDuplicateKey(err):
		return fmt.Errorf("failed to %s organization: %w", op, ErrConflict)
	default:
		return fmt.Errorf("failed to %s organization: %w", op, err)
	}
}
