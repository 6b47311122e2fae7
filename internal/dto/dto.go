package dto

import (
	"time"

	"github.com/fremontasb/fremont-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64          `json:"id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	GradYear    *int            `json:"grad_year"`
	Type        models.UserType `json:"type"`
	PictureURL  string          `json:"picture_url"`
	IsStaff     bool            `json:"is_staff"`
	IsSuperuser bool            `json:"is_superuser"`
}

// UserSummaryDTO is the part of a user shown in staff lists
type UserSummaryDTO struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// UserDetailDTO represents a user with its organizations
type UserDetailDTO struct {
	UserDTO
	Memberships []MembershipDTO `json:"memberships"`
}

// LinkDTO represents an organization link in API responses
type LinkDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID               uint64                  `json:"id"`
	Name             string                  `json:"name"`
	Type             models.OrganizationType `json:"type"`
	Description      string                  `json:"description"`
	Day              *models.DayOfWeek       `json:"day"`
	Time             *string                 `json:"time"`
	Location         *string                 `json:"location"`
	Link             string                  `json:"link"`
	IcalLinks        []string                `json:"ical_links"`
	Required         bool                    `json:"required"`
	RequiredGradYear *int                    `json:"required_grad_year"`
}

// OrganizationDetailDTO represents an organization with staff, links and the requester's role
type OrganizationDetailDTO struct {
	OrganizationDTO
	Admins   []UserSummaryDTO `json:"admins"`
	Advisors []UserSummaryDTO `json:"advisors"`
	Links    []LinkDTO        `json:"links"`
	YourRole string           `json:"your_role"`
}

// MembershipDTO represents a membership in API responses
type MembershipDTO struct {
	Organization OrganizationDTO `json:"organization"`
	Points       uint            `json:"points"`
	JoinedAt     time.Time       `json:"joined_at"`
}

// PostDTO represents a post in API responses
type PostDTO struct {
	ID             uint64           `json:"id"`
	OrganizationID uint64           `json:"organization_id"`
	Title          string           `json:"title"`
	Content        string           `json:"content"`
	Published      bool             `json:"published"`
	Date           time.Time        `json:"date"`
	Organization   *OrganizationDTO `json:"organization,omitempty"`
}

// PostListResponse represents a paginated list of posts
type PostListResponse struct {
	Posts      []PostDTO `json:"posts"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// DeviceTokenDTO represents a registered push token
type DeviceTokenDTO struct {
	ID        uint64    `json:"id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		GradYear:    user.GradYear,
		Type:        user.Type,
		PictureURL:  user.PictureURL,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
}

// ToUserDetailDTO converts a user and its memberships to UserDetailDTO
func ToUserDetailDTO(user models.User, memberships []models.Membership) UserDetailDTO {
	return UserDetailDTO{
		UserDTO:     ToUserDTO(user),
		Memberships: ToMembershipDTOs(memberships),
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, user := range users {
		out[i] = ToUserDTO(user)
	}
	return out
}

func toUserSummaries(users []models.User) []UserSummaryDTO {
	out := make([]UserSummaryDTO, len(users))
	for i, user := range users {
		out[i] = UserSummaryDTO{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		}
	}
	return out
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	icalLinks := []string(org.IcalLinks)
	if icalLinks == nil {
		icalLinks = []string{}
	}

	return OrganizationDTO{
		ID:               org.ID,
		Name:             org.Name,
		Type:             org.Type,
		Description:      org.Description,
		Day:              org.Day,
		Time:             org.Time,
		Location:         org.Location,
		Link:             org.Link,
		IcalLinks:        icalLinks,
		Required:         org.Required,
		RequiredGradYear: org.RequiredGradYear,
	}
}

// ToOrganizationDTOs converts a slice of organizations
func ToOrganizationDTOs(orgs []models.Organization) []OrganizationDTO {
	out := make([]OrganizationDTO, len(orgs))
	for i, org := range orgs {
		out[i] = ToOrganizationDTO(org)
	}
	return out
}

// ToOrganizationDetailDTO converts an organization with preloaded staff and links
func ToOrganizationDetailDTO(org models.Organization, yourRole string) OrganizationDetailDTO {
	links := make([]LinkDTO, len(org.Links))
	for i, link := range org.Links {
		links[i] = ToLinkDTO(link)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Admins:          toUserSummaries(org.Admins),
		Advisors:        toUserSummaries(org.Advisors),
		Links:           links,
		YourRole:        yourRole,
	}
}

// ToLinkDTO converts an OrganizationLink model to LinkDTO
func ToLinkDTO(link models.OrganizationLink) LinkDTO {
	return LinkDTO{
		ID:    link.ID,
		Title: link.Title,
		URL:   link.URL,
	}
}

// ToMembershipDTO converts a membership with its preloaded organization
func ToMembershipDTO(member models.Membership) MembershipDTO {
	return MembershipDTO{
		Organization: ToOrganizationDTO(member.Organization),
		Points:       member.Points,
		JoinedAt:     member.JoinedAt,
	}
}

// ToMembershipDTOs converts a slice of memberships
func ToMembershipDTOs(memberships []models.Membership) []MembershipDTO {
	out := make([]MembershipDTO, len(memberships))
	for i, member := range memberships {
		out[i] = ToMembershipDTO(member)
	}
	return out
}

// ToPostDTO converts a Post model to PostDTO
func ToPostDTO(post models.Post) PostDTO {
	dto := PostDTO{
		ID:             post.ID,
		OrganizationID: post.OrganizationID,
		Title:          post.Title,
		Content:        post.Content,
		Published:      post.Published,
		Date:           post.Date,
	}

	// Include organization if preloaded
	if post.Organization.ID != 0 {
		org := ToOrganizationDTO(post.Organization)
		dto.Organization = &org
	}

	return dto
}

// ToPostListResponse converts a page of posts to PostListResponse
func ToPostListResponse(posts []models.Post, page, pageSize int, totalCount int64) PostListResponse {
	items := make([]PostDTO, len(posts))
	for i, post := range posts {
		items[i] = ToPostDTO(post)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return PostListResponse{
		Posts:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToDeviceTokenDTO converts a DeviceToken model to DeviceTokenDTO
func ToDeviceTokenDTO(token models.DeviceToken) DeviceTokenDTO {
	return DeviceTokenDTO{
		ID:        token.ID,
		Token:     token.Token,
		CreatedAt: token.CreatedAt,
	}
}

// ToDeviceTokenDTOs converts a slice of device tokens
func ToDeviceTokenDTOs(tokens []models.DeviceToken) []DeviceTokenDTO {
	out := make([]DeviceTokenDTO, len(tokens))
	for i, token := range tokens {
		out[i] = ToDeviceTokenDTO(token)
	}
	return out
}
