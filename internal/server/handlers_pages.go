package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/azoai/botadmin/internal/store"
	"github.com/azoai/botadmin/internal/viewmodel"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userListLimit          = 50
	orderListLimit         = 20
	recentTransactionLimit = 50
	activityFeedSize       = 4
)

type dashboardResponsePayload struct {
	Users          int64                     `json:"users"`
	Orders         int64                     `json:"orders"`
	Revenue        float64                   `json:"revenue"`
	WeekdayRevenue []viewmodel.RevenueBucket `json:"weekday_revenue"`
	Timeline       []viewmodel.TimelinePoint `json:"timeline"`
	RecentActivity []activityPayload         `json:"recent_activity"`
}

type activityPayload struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	TimeAgo  string  `json:"time_ago"`
	IsIncome bool    `json:"is_income"`
}

// handleDashboard assembles the landing page aggregates. The independent
// queries resolve in any order; derived values are computed only once all of
// them have.
func (h *httpHandler) handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.store.CountUsers(ctx)
	if err != nil {
		h.failQuery(c, "dashboard_users", err)
		return
	}
	orders, err := h.store.CountOrders(ctx)
	if err != nil {
		h.failQuery(c, "dashboard_orders", err)
		return
	}
	revenue, err := h.store.CompletedRevenue(ctx)
	if err != nil {
		h.failQuery(c, "dashboard_revenue", err)
		return
	}
	transactions, err := h.store.ListTransactions(ctx, recentTransactionLimit)
	if err != nil {
		h.failQuery(c, "dashboard_transactions", err)
		return
	}
	now := h.clock()
	sixDaysAgo := now.AddDate(0, 0, -6)
	weekStart := time.Date(sixDaysAgo.Year(), sixDaysAgo.Month(), sixDaysAgo.Day(), 0, 0, 0, 0, sixDaysAgo.Location())
	timelineOrders, err := h.store.CompletedOrdersSince(ctx, weekStart)
	if err != nil {
		h.failQuery(c, "dashboard_timeline", err)
		return
	}

	activity := make([]activityPayload, 0, activityFeedSize)
	for _, tx := range transactions {
		if len(activity) == activityFeedSize {
			break
		}
		label := tx.Category
		if label == "" {
			label = tx.Description
		}
		if label == "" {
			label = "Transaction"
		}
		prefix := "Expense"
		if tx.Type == store.TransactionTypeIncome {
			prefix = "Income"
		}
		activity = append(activity, activityPayload{
			Title:    prefix + ": " + label,
			Amount:   tx.Amount,
			TimeAgo:  viewmodel.RelativeTime(tx.CreatedAt, now),
			IsIncome: tx.Type == store.TransactionTypeIncome,
		})
	}

	c.JSON(http.StatusOK, dashboardResponsePayload{
		Users:          users,
		Orders:         orders,
		Revenue:        revenue,
		WeekdayRevenue: viewmodel.RevenueByWeekday(transactions),
		Timeline:       viewmodel.OrderTimeline(timelineOrders, now),
		RecentActivity: activity,
	})
}

type analyticsResponsePayload struct {
	WeekdayRevenue []viewmodel.RevenueBucket `json:"weekday_revenue"`
	Categories     []viewmodel.CategoryCount `json:"categories"`
}

func (h *httpHandler) handleAnalytics(c *gin.Context) {
	transactions, err := h.store.ListTransactions(c.Request.Context(), 0)
	if err != nil {
		h.failQuery(c, "analytics_transactions", err)
		return
	}
	c.JSON(http.StatusOK, analyticsResponsePayload{
		WeekdayRevenue: viewmodel.RevenueByWeekday(transactions),
		Categories:     viewmodel.CategoryBreakdown(transactions),
	})
}

type userPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Exp       int64  `json:"exp"`
	Level     int64  `json:"level"`
	AIMode    string `json:"ai_mode"`
	CreatedAt string `json:"created_at"`
}

func (h *httpHandler) handleListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context(), c.Query("q"), userListLimit)
	if err != nil {
		h.failQuery(c, "list_users", err)
		return
	}
	payload := make([]userPayload, 0, len(users))
	for _, user := range users {
		payload = append(payload, userPayload{
			ID:        user.ID,
			Name:      user.Name,
			Phone:     user.Phone,
			Exp:       user.Exp,
			Level:     viewmodel.Level(user.Exp),
			AIMode:    user.AIMode,
			CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": payload})
}

type createUserPayload struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Exp    int64  `json:"exp"`
	AIMode string `json:"ai_mode"`
}

func (h *httpHandler) handleCreateUser(c *gin.Context) {
	var request createUserPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	user, err := h.store.CreateUser(c.Request.Context(), store.NewUser{
		Name:   request.Name,
		Phone:  request.Phone,
		Exp:    request.Exp,
		AIMode: request.AIMode,
	})
	if err != nil {
		h.failMutation(c, "create_user", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *httpHandler) handleDeleteUser(c *gin.Context) {
	if err := h.store.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.failMutation(c, "delete_user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *httpHandler) handleListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		h.failQuery(c, "list_products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type createProductPayload struct {
	Name        string  `json:"name"`
	Keyword     string  `json:"keyword"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	MediaURL    string  `json:"media_url"`
	MediaType   string  `json:"media_type"`
	GroupJID    string  `json:"group_jid"`
}

func (h *httpHandler) handleCreateProduct(c *gin.Context) {
	var request createProductPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	product, err := h.store.CreateProduct(c.Request.Context(), store.NewProduct{
		Name:        request.Name,
		Keyword:     request.Keyword,
		Description: request.Description,
		Price:       request.Price,
		Stock:       request.Stock,
		MediaURL:    request.MediaURL,
		MediaType:   request.MediaType,
		GroupJID:    request.GroupJID,
		CreatedBy:   c.GetString(operatorContextKey),
	})
	if err != nil {
		h.failMutation(c, "create_product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *httpHandler) handleDeleteProduct(c *gin.Context) {
	if err := h.store.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.failMutation(c, "delete_product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *httpHandler) handleListOrders(c *gin.Context) {
	orders, err := h.store.ListOrders(c.Request.Context(), orderListLimit)
	if err != nil {
		h.failQuery(c, "list_orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *httpHandler) failQuery(c *gin.Context, operation string, err error) {
	h.logger.Error("query failed", zap.String("operation", operation), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": operation + "_failed"})
}

func (h *httpHandler) failMutation(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, store.ErrPhoneExists):
		c.JSON(http.StatusConflict, gin.H{"error": "phone_exists"})
	case errors.Is(err, store.ErrInvalidRow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	default:
		h.logger.Error("mutation failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": operation + "_failed"})
	}
}
