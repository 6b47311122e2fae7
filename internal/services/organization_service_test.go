package services

import (
	"testing"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestOrganizationService_CreateRequiresSuperuser(t *testing.T) {
	store := setupTestStore(t)
	user := createTestUser(t, store, "user@example.com", nil)

	_, err := NewOrganizationService(store).CreateOrganization(access.Actor{UserID: user.ID}, clubOrg("Robotics"))
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestOrganizationService_CreateValidatesTypeRules(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	tests := []struct {
		name  string
		input CreateOrganizationInput
		field string
	}{
		{
			name:  "global must be required",
			input: CreateOrganizationInput{Name: "School", Type: models.OrganizationTypeGlobal},
			field: "required",
		},
		{
			name:  "class needs a grad year",
			input: CreateOrganizationInput{Name: "Class", Type: models.OrganizationTypeClass},
			field: "required_grad_year",
		},
		{
			name:  "club cannot be required",
			input: CreateOrganizationInput{Name: "Club", Type: models.OrganizationTypeClub, Required: true},
			field: "required",
		},
		{
			name:  "club has no grad year",
			input: CreateOrganizationInput{Name: "Club", Type: models.OrganizationTypeClub, RequiredGradYear: intPtr(2026)},
			field: "required_grad_year",
		},
		{
			name:  "unknown type",
			input: CreateOrganizationInput{Name: "Other", Type: "TEAM"},
			field: "type",
		},
		{
			name:  "meeting time format",
			input: CreateOrganizationInput{Name: "Club", Type: models.OrganizationTypeClub, Time: strPtr("3pm")},
			field: "time",
		},
		{
			name:  "unknown admin",
			input: CreateOrganizationInput{Name: "Club", Type: models.OrganizationTypeClub, AdminIDs: []uint64{999}},
			field: "admins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateOrganization(superuser, tt.input)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Contains(t, validationErr.Fields, tt.field)
		})
	}

	orgs, err := service.ListManagedOrganizations(superuser)
	require.NoError(t, err)
	require.Empty(t, orgs)
}

func TestOrganizationService_AdvisorScope(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	admin := createTestUser(t, store, "admin@example.com", nil)
	advisor := createTestUser(t, store, "advisor@example.com", nil)

	input := clubOrg("Robotics")
	input.AdminIDs = []uint64{admin.ID}
	input.AdvisorIDs = []uint64{advisor.ID}
	robotics := createTestOrganization(t, store, input)
	createTestOrganization(t, store, clubOrg("Chess"))

	advisorActor := access.Actor{UserID: advisor.ID}

	managed, err := service.ListManagedOrganizations(advisorActor)
	require.NoError(t, err)
	require.Len(t, managed, 1)
	require.Equal(t, robotics.ID, managed[0].ID)

	updated, err := service.UpdateOrganization(advisorActor, robotics.ID, UpdateOrganizationInput{
		Description: strPtr("We build robots"),
		Location:    strPtr("Room 12"),
	})
	require.NoError(t, err)
	require.Equal(t, "We build robots", updated.Description)

	_, err = service.UpdateOrganization(advisorActor, robotics.ID, UpdateOrganizationInput{
		AdminIDs: &[]uint64{advisor.ID},
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	require.ErrorIs(t, service.DeleteOrganization(advisorActor, robotics.ID), ErrPermissionDenied)

	detail, err := service.GetOrganization(advisorActor, robotics.ID, access.ActionManage)
	require.NoError(t, err)
	require.Equal(t, access.RoleAdvisor, detail.Role)
	require.Len(t, detail.Organization.Admins, 1)
	require.Len(t, detail.Organization.Advisors, 1)
}

func TestOrganizationService_AdminReplacesStaff(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	admin := createTestUser(t, store, "admin@example.com", nil)
	advisor := createTestUser(t, store, "advisor@example.com", nil)

	input := clubOrg("Robotics")
	input.AdminIDs = []uint64{admin.ID}
	input.AdvisorIDs = []uint64{advisor.ID}
	org := createTestOrganization(t, store, input)

	updated, err := service.UpdateOrganization(access.Actor{UserID: admin.ID}, org.ID, UpdateOrganizationInput{
		AdvisorIDs: &[]uint64{},
	})
	require.NoError(t, err)
	require.Empty(t, updated.Advisors)
	require.Len(t, updated.Admins, 1)

	_, err = service.GetOrganization(access.Actor{UserID: advisor.ID}, org.ID, access.ActionManage)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestOrganizationService_ListVisible(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	school := createTestOrganization(t, store, globalOrg("Fremont High"))
	chess := createTestOrganization(t, store, clubOrg("Chess"))
	robotics := createTestOrganization(t, store, clubOrg("Robotics"))
	user := createTestUser(t, store, "user@example.com", nil)
	actor := access.Actor{UserID: user.ID}

	_, err := NewUserService(store).JoinOrganization(actor, user.ID, chess.ID)
	require.NoError(t, err)

	orgs, err := service.ListOrganizations(actor, ListOrganizationsInput{})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{school.ID, chess.ID}, organizationIDs(orgs))

	orgs, err = service.ListOrganizations(actor, ListOrganizationsInput{IncludeClubs: true})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{school.ID, chess.ID, robotics.ID}, organizationIDs(orgs))

	clubs := models.OrganizationTypeClub
	orgs, err = service.ListOrganizations(actor, ListOrganizationsInput{IncludeClubs: true, Type: &clubs})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{chess.ID, robotics.ID}, organizationIDs(orgs))

	_, err = service.GetOrganization(actor, robotics.ID, access.ActionView)
	require.NoError(t, err)
	_, err = service.GetOrganization(actor, robotics.ID, access.ActionManage)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestOrganizationService_DeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	admin := createTestUser(t, store, "admin@example.com", nil)
	member := createTestUser(t, store, "member@example.com", intPtr(2026))

	input := classOrg("Class of 2026", 2026)
	input.AdminIDs = []uint64{admin.ID}
	input.Links = []LinkInput{{Title: "Calendar", URL: "https://example.com/cal"}}
	org := createTestOrganization(t, store, input)

	_, err := NewPostService(store, nil).CreatePost(access.Actor{UserID: admin.ID}, CreatePostInput{
		OrganizationID: org.ID,
		Title:          "Prom",
		Published:      true,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteOrganization(access.Actor{UserID: admin.ID}, org.ID))

	_, err = service.GetOrganization(superuser, org.ID, access.ActionView)
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	var count int64
	for _, model := range []interface{}{&models.Post{}, &models.Membership{}, &models.OrganizationLink{}} {
		require.NoError(t, store.DB().Model(model).Count(&count).Error)
		require.Zero(t, count)
	}
	require.NoError(t, store.DB().Table("organization_admins").Count(&count).Error)
	require.Zero(t, count)

	_, err = store.Users.FindByID(member.ID)
	require.NoError(t, err)
	_, err = store.Users.FindByID(admin.ID)
	require.NoError(t, err)
}

func TestOrganizationService_Links(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	org := createTestOrganization(t, store, clubOrg("Robotics"))

	_, err := service.AddLink(superuser, org.ID, LinkInput{Title: "Site", URL: "not a url"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	link, err := service.AddLink(superuser, org.ID, LinkInput{Title: "Site", URL: "https://robotics.example.com"})
	require.NoError(t, err)

	detail, err := service.GetOrganization(superuser, org.ID, access.ActionManage)
	require.NoError(t, err)
	require.Len(t, detail.Organization.Links, 1)

	require.NoError(t, service.DeleteLink(superuser, org.ID, link.ID))
	require.ErrorIs(t, service.DeleteLink(superuser, org.ID, link.ID), ErrLinkNotFound)
}

func TestOrganizationService_ImportClub(t *testing.T) {
	store := setupTestStore(t)
	service := NewOrganizationService(store)

	org, created, err := service.ImportClub(" Chess ", "Play chess")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "Chess", org.Name)
	require.Equal(t, models.OrganizationTypeClub, org.Type)

	org, created, err = service.ImportClub("Chess", "Play more chess")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "Play more chess", org.Description)

	_, _, err = service.ImportClub("", "")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func organizationIDs(orgs []models.Organization) []uint64 {
	ids := make([]uint64, len(orgs))
	for i, org := range orgs {
		ids[i] = org.ID
	}
	return ids
}
