package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/dto"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/stretchr/testify/suite"
)

// PostHandlerTestSuite defines the test suite for PostHandler
type PostHandlerTestSuite struct {
	suite.Suite
	env testEnv

	org           *models.Organization
	adminCookies  []*http.Cookie
	memberCookies []*http.Cookie
}

// SetupTest runs before each test
func (s *PostHandlerTestSuite) SetupTest() {
	t := s.T()
	s.env = setupTestEnv(t)

	admin := s.env.createUser(t, "admin@example.com", nil, false)
	member := s.env.createUser(t, "member@example.com", nil, false)
	s.env.createUser(t, "outsider@example.com", nil, false)

	org, err := s.env.services.Organizations.CreateOrganization(access.Actor{Superuser: true}, services.CreateOrganizationInput{
		Name:     "Robotics",
		Type:     models.OrganizationTypeClub,
		AdminIDs: []uint64{admin.ID},
	})
	s.Require().NoError(err)
	s.org = org

	_, err = s.env.services.Users.JoinOrganization(access.Actor{UserID: member.ID}, member.ID, org.ID)
	s.Require().NoError(err)

	s.adminCookies = s.env.login(t, "admin@example.com")
	s.memberCookies = s.env.login(t, "member@example.com")
}

func (s *PostHandlerTestSuite) createPost(title string, published bool) dto.PostDTO {
	w := s.env.request(s.T(), http.MethodPost, "/api/manage/posts", map[string]interface{}{
		"organization": s.org.ID,
		"title":        title,
		"content":      "**Bring** snacks",
		"published":    published,
	}, s.adminCookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var post dto.PostDTO
	decode(s.T(), w, &post)
	return post
}

func (s *PostHandlerTestSuite) TestPublishingNotifiesOnce() {
	post := s.createPost("Kickoff", false)
	s.Empty(s.env.notifier.sent)

	path := fmt.Sprintf("/api/manage/posts/%d", post.ID)
	for _, body := range []map[string]interface{}{
		{"published": true},
		{"title": "Kickoff meeting"},
		{"published": false},
		{"published": true},
	} {
		w := s.env.request(s.T(), http.MethodPatch, path, body, s.adminCookies)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}

	s.Len(s.env.notifier.sent, 2)
	s.Equal(s.org.ID, s.env.notifier.sent[0].OrganizationID)
}

func (s *PostHandlerTestSuite) TestMemberFeed() {
	draft := s.createPost("Draft", false)
	s.createPost("News", true)

	w := s.env.request(s.T(), http.MethodGet, "/api/posts", nil, s.memberCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	var response dto.PostListResponse
	decode(s.T(), w, &response)
	s.Require().Len(response.Posts, 1)
	s.Equal("News", response.Posts[0].Title)
	s.EqualValues(1, response.TotalCount)
	s.Equal(20, response.PageSize)
	s.Require().NotNil(response.Posts[0].Organization)
	s.Equal("Robotics", response.Posts[0].Organization.Name)

	w = s.env.request(s.T(), http.MethodGet, fmt.Sprintf("/api/posts/%d", draft.ID), nil, s.memberCookies)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.env.request(s.T(), http.MethodGet, fmt.Sprintf("/api/posts?organization=%d", s.org.ID+1), nil, s.memberCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	decode(s.T(), w, &response)
	s.Empty(response.Posts)
}

func (s *PostHandlerTestSuite) TestManagedPosts() {
	s.createPost("Draft", false)
	s.createPost("News", true)

	w := s.env.request(s.T(), http.MethodGet, "/api/manage/posts", nil, s.adminCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	var response dto.PostListResponse
	decode(s.T(), w, &response)
	s.Len(response.Posts, 2)

	w = s.env.request(s.T(), http.MethodGet, "/api/manage/posts", nil, s.memberCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	decode(s.T(), w, &response)
	s.Empty(response.Posts)
}

func (s *PostHandlerTestSuite) TestMemberCannotWrite() {
	post := s.createPost("News", true)

	w := s.env.request(s.T(), http.MethodPost, "/api/manage/posts", map[string]interface{}{
		"organization": s.org.ID,
		"title":        "Hijack",
	}, s.memberCookies)
	s.Equal(http.StatusForbidden, w.Code)

	path := fmt.Sprintf("/api/manage/posts/%d", post.ID)
	w = s.env.request(s.T(), http.MethodPatch, path, map[string]interface{}{"title": "Hijack"}, s.memberCookies)
	s.Equal(http.StatusForbidden, w.Code)

	outsider := s.env.login(s.T(), "outsider@example.com")
	w = s.env.request(s.T(), http.MethodDelete, path, nil, outsider)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.env.request(s.T(), http.MethodDelete, path, nil, s.adminCookies)
	s.Equal(http.StatusOK, w.Code)
}

func (s *PostHandlerTestSuite) TestUnauthenticated() {
	w := s.env.request(s.T(), http.MethodGet, "/api/posts", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestPostHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PostHandlerTestSuite))
}
