package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/azoai/botadmin/internal/realtime"
	"github.com/azoai/botadmin/internal/status"
	"github.com/azoai/botadmin/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const operatorContextKey = "botadmin_operator"

var (
	errMissingTokenManager  = errors.New("token manager dependency required")
	errMissingStore         = errors.New("store dependency required")
	errMissingMonitor       = errors.New("status monitor dependency required")
	errMissingBroker        = errors.New("realtime broker dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// TokenManager issues and validates operator session tokens and checks the
// raw access key the bot authenticates with.
type TokenManager interface {
	IssueSessionToken(accessKey string) (string, int64, error)
	ValidateToken(token string) (string, error)
	VerifyAccessKey(accessKey string) error
}

// StatusMonitor exposes the status widget state to handlers.
type StatusMonitor interface {
	Snapshot() status.Snapshot
}

// Subscriber opens realtime channels for the SSE stream.
type Subscriber interface {
	Subscribe(ctx context.Context, table, column, value string) (<-chan realtime.Event, func())
}

type Dependencies struct {
	TokenManager TokenManager
	Store        *store.Store
	Monitor      StatusMonitor
	Broker       Subscriber
	Logger       *zap.Logger
	Clock        func() time.Time
	SessionID    string
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.Monitor == nil {
		return nil, errMissingMonitor
	}
	if deps.Broker == nil {
		return nil, errMissingBroker
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	sessionID := deps.SessionID
	if sessionID == "" {
		sessionID = "main"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Access-Key"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:    deps.TokenManager,
		store:     deps.Store,
		monitor:   deps.Monitor,
		broker:    deps.Broker,
		logger:    logger,
		clock:     clock,
		sessionID: sessionID,
	}

	router.POST("/auth/login", handler.handleLogin)
	router.POST("/bot/heartbeat", handler.handleHeartbeat)

	api := router.Group("/api")
	api.Use(handler.authorizeRequest)
	api.GET("/dashboard", handler.handleDashboard)
	api.GET("/analytics", handler.handleAnalytics)
	api.GET("/users", handler.handleListUsers)
	api.POST("/users", handler.handleCreateUser)
	api.DELETE("/users/:id", handler.handleDeleteUser)
	api.GET("/products", handler.handleListProducts)
	api.POST("/products", handler.handleCreateProduct)
	api.DELETE("/products/:id", handler.handleDeleteProduct)
	api.GET("/orders", handler.handleListOrders)
	api.GET("/tasks", handler.handleListTasks)
	api.POST("/tasks", handler.handleCreateTask)
	api.DELETE("/tasks/:id", handler.handleDeleteTask)
	api.GET("/calendar", handler.handleCalendarMonth)
	api.GET("/calendar/:date", handler.handleCalendarDay)
	api.POST("/events", handler.handleCreateEvent)
	api.DELETE("/calendar/:id", handler.handleDeleteCalendarEntry)
	api.GET("/status", handler.handleStatus)
	api.GET("/status/stream", handler.handleStatusStream)

	return router, nil
}

type httpHandler struct {
	tokens    TokenManager
	store     *store.Store
	monitor   StatusMonitor
	broker    Subscriber
	logger    *zap.Logger
	clock     func() time.Time
	sessionID string
}

type loginRequestPayload struct {
	AccessKey string `json:"access_key"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.AccessKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	token, expiresIn, err := h.tokens.IssueSessionToken(request.AccessKey)
	if err != nil {
		h.logger.Warn("operator login rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(operatorContextKey, subject)
	c.Next()
}

// bearerToken extracts the session token from the Authorization header, or
// from the access_token query parameter for EventSource clients that cannot
// set headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}
