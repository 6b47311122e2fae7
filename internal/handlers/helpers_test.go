package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fremontasb/fremont-api/internal/config"
	"github.com/fremontasb/fremont-api/internal/constants"
	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/notifications"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "supersecret"

type queuedNotifications struct {
	mu   sync.Mutex
	sent []notifications.Notification
}

func (q *queuedNotifications) Enqueue(n notifications.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, n)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	store    *repository.Store
	services Services
	notifier *queuedNotifications
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models...))
	database.SetDB(db)

	store := repository.NewStore(db)
	notifier := &queuedNotifications{}
	svc := Services{
		Auth:          services.NewAuthService(store),
		Users:         services.NewUserService(store),
		Organizations: services.NewOrganizationService(store),
		Posts:         services.NewPostService(store, notifier),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, svc, config.AppVersionConfig{Android: 3, IOS: "1.2"})

	return testEnv{
		router:   r,
		store:    store,
		services: svc,
		notifier: notifier,
	}
}

func (env testEnv) createUser(t *testing.T, email string, gradYear *int, superuser bool) *models.User {
	t.Helper()

	user, err := env.services.Auth.Signup(services.SignupInput{
		Email:       email,
		Password:    testPassword,
		GradYear:    gradYear,
		IsSuperuser: superuser,
	})
	require.NoError(t, err)
	return user
}

// login signs in through the API and returns the session cookies.
func (env testEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

func (env testEnv) request(t *testing.T, method, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func intPtr(v int) *int {
	return &v
}
