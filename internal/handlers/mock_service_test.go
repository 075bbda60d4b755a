package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"garage_opener/internal/door"
	"garage_opener/internal/models"
	"garage_opener/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDoor struct {
	err        error
	calls      int
	lastTarget models.DoorPosition
}

func (m *mockDoor) SetTarget(ctx context.Context, target models.DoorPosition) error {
	m.calls++
	m.lastTarget = target
	return m.err
}

type mockMonitoring struct {
	mu      sync.Mutex
	state   models.DoorState
	timers  []door.PendingTimer
	updates chan models.DoorState
}

func (m *mockMonitoring) GetState(ctx context.Context) models.DoorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockMonitoring) PendingTimers(ctx context.Context) []door.PendingTimer {
	return m.timers
}

// Subscribe hands out the preset updates channel, or one that never fires.
func (m *mockMonitoring) Subscribe() (<-chan models.DoorState, func()) {
	if m.updates != nil {
		return m.updates, func() {}
	}
	return make(chan models.DoorState), func() {}
}

type mockEventLog struct {
	resp     []models.DoorEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DoorEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, "Test Door")
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
