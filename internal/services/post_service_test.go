package services

import (
	"errors"
	"testing"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/fremontasb/fremont-api/internal/utils"
	"github.com/stretchr/testify/suite"
)

type PostServiceTestSuite struct {
	suite.Suite
	store    *repository.Store
	notifier *recordingNotifier
	service  *PostService

	org     *models.Organization
	admin   *models.User
	member  *models.User
	outside *models.User
}

func (s *PostServiceTestSuite) SetupTest() {
	s.store = setupTestStore(s.T())
	s.notifier = &recordingNotifier{}
	s.service = NewPostService(s.store, s.notifier)

	s.admin = createTestUser(s.T(), s.store, "admin@example.com", nil)
	s.member = createTestUser(s.T(), s.store, "member@example.com", nil)
	s.outside = createTestUser(s.T(), s.store, "outside@example.com", nil)

	input := clubOrg("Robotics")
	input.AdminIDs = []uint64{s.admin.ID}
	s.org = createTestOrganization(s.T(), s.store, input)

	_, err := NewUserService(s.store).JoinOrganization(access.Actor{UserID: s.member.ID}, s.member.ID, s.org.ID)
	s.Require().NoError(err)
}

func (s *PostServiceTestSuite) adminActor() access.Actor {
	return access.Actor{UserID: s.admin.ID}
}

func (s *PostServiceTestSuite) TestPublishSequenceNotifiesOnTransitionsOnly() {
	post, err := s.service.CreatePost(s.adminActor(), CreatePostInput{
		OrganizationID: s.org.ID,
		Title:          "Kickoff",
		Content:        "Draft",
	})
	s.Require().NoError(err)
	s.Empty(s.notifier.sent)

	steps := []UpdatePostInput{
		{Title: strPtr("Kickoff meeting")},
		{Published: boolPtr(true)},
		{Content: strPtr("Room 204")},
		{Published: boolPtr(true)},
		{Published: boolPtr(false)},
		{Published: boolPtr(true)},
	}
	for _, step := range steps {
		_, err := s.service.UpdatePost(s.adminActor(), post.ID, step)
		s.Require().NoError(err)
	}

	s.Require().Len(s.notifier.sent, 2)
	for _, n := range s.notifier.sent {
		s.Equal(post.ID, n.PostID)
		s.Equal(s.org.ID, n.OrganizationID)
		s.Equal("Kickoff meeting", n.Title)
	}
	s.Equal("Draft", s.notifier.sent[0].Content)
	s.Equal("Room 204", s.notifier.sent[1].Content)
}

func (s *PostServiceTestSuite) TestCreatePublishedNotifiesOnce() {
	_, err := s.service.CreatePost(s.adminActor(), CreatePostInput{
		OrganizationID: s.org.ID,
		Title:          "Bake sale",
		Content:        "Friday",
		Published:      true,
	})
	s.Require().NoError(err)
	s.Len(s.notifier.sent, 1)
}

func (s *PostServiceTestSuite) TestQueueFailureDoesNotFailWrite() {
	s.notifier.err = errors.New("queue full")

	post, err := s.service.CreatePost(s.adminActor(), CreatePostInput{
		OrganizationID: s.org.ID,
		Title:          "Bake sale",
		Published:      true,
	})
	s.Require().NoError(err)
	s.True(post.Published)
}

func (s *PostServiceTestSuite) TestMemberCannotCreatePost() {
	_, err := s.service.CreatePost(access.Actor{UserID: s.member.ID}, CreatePostInput{
		OrganizationID: s.org.ID,
		Title:          "Hello",
	})
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *PostServiceTestSuite) TestCreatePostValidatesTitle() {
	_, err := s.service.CreatePost(s.adminActor(), CreatePostInput{OrganizationID: s.org.ID, Title: "  "})

	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Contains(validationErr.Fields, "title")
}

func (s *PostServiceTestSuite) TestMembersOnlySeePublishedPosts() {
	draft, err := s.service.CreatePost(s.adminActor(), CreatePostInput{OrganizationID: s.org.ID, Title: "Draft"})
	s.Require().NoError(err)
	published, err := s.service.CreatePost(s.adminActor(), CreatePostInput{OrganizationID: s.org.ID, Title: "News", Published: true})
	s.Require().NoError(err)

	page := ListPostsInput{Pagination: utils.PaginationParams{Page: 1, Limit: 20}}

	result, err := s.service.ListPosts(access.Actor{UserID: s.member.ID}, page)
	s.Require().NoError(err)
	s.Require().Len(result.Posts, 1)
	s.Equal(published.ID, result.Posts[0].ID)
	s.EqualValues(1, result.Total)

	result, err = s.service.ListPosts(access.Actor{UserID: s.outside.ID}, page)
	s.Require().NoError(err)
	s.Empty(result.Posts)

	managed, err := s.service.ListManagedPosts(s.adminActor(), page)
	s.Require().NoError(err)
	s.Len(managed.Posts, 2)

	_, err = s.service.GetPost(access.Actor{UserID: s.member.ID}, draft.ID, access.ActionView)
	s.ErrorIs(err, ErrPostNotFound)

	_, err = s.service.GetPost(access.Actor{UserID: s.outside.ID}, published.ID, access.ActionView)
	s.ErrorIs(err, ErrPostNotFound)
}

func (s *PostServiceTestSuite) TestDeletePost() {
	post, err := s.service.CreatePost(s.adminActor(), CreatePostInput{OrganizationID: s.org.ID, Title: "Old", Published: true})
	s.Require().NoError(err)

	s.ErrorIs(s.service.DeletePost(access.Actor{UserID: s.member.ID}, post.ID), ErrPermissionDenied)
	s.ErrorIs(s.service.DeletePost(access.Actor{UserID: s.outside.ID}, post.ID), ErrPostNotFound)

	s.Require().NoError(s.service.DeletePost(s.adminActor(), post.ID))
	_, err = s.service.GetPost(s.adminActor(), post.ID, access.ActionManage)
	s.ErrorIs(err, ErrPostNotFound)
}

func TestPostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostServiceTestSuite))
}
