package store

import (
	"time"
)

// OrderStatus enumerates the order lifecycle states written by the bot.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// User is a bot end-user registered through WhatsApp or the admin panel.
// Level is derived from Exp and never stored.
type User struct {
	ID        string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Name      string    `gorm:"column:name;size:190;not null" json:"name"`
	Phone     string    `gorm:"column:phone;size:32;not null;uniqueIndex" json:"phone"`
	Exp       int64     `gorm:"column:exp;not null;default:0" json:"exp"`
	AIMode    string    `gorm:"column:ai_mode;size:32;not null;default:'casual'" json:"ai_mode"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

// Product is a store item matched by the bot against its lowercase keyword.
type Product struct {
	ID          string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Name        string    `gorm:"column:name;size:190;not null" json:"name"`
	Keyword     string    `gorm:"column:keyword;size:64;not null;index" json:"keyword"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Price       float64   `gorm:"column:price;not null" json:"price"`
	Stock       int64     `gorm:"column:stock;not null" json:"stock"`
	MediaURL    string    `gorm:"column:media_url;size:512" json:"media_url"`
	MediaType   string    `gorm:"column:media_type;size:32;not null;default:'image'" json:"media_type"`
	GroupJID    string    `gorm:"column:group_jid;size:190" json:"group_jid"`
	CreatedBy   string    `gorm:"column:created_by;size:190" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (Product) TableName() string {
	return "products"
}

// Order records a purchase placed through the bot.
type Order struct {
	ID            string      `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	CustomerPhone string      `gorm:"column:customer_phone;size:32;not null;index" json:"customer_phone"`
	TotalAmount   float64     `gorm:"column:total_amount;not null" json:"total_amount"`
	Status        OrderStatus `gorm:"column:status;size:32;not null;default:'pending';index" json:"status"`
	Notes         string      `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt     time.Time   `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (Order) TableName() string {
	return "orders"
}

// BotTask is a reminder captured by the bot in chat. Completion and deadline
// drive the derived status shown in the dashboard.
type BotTask struct {
	ID          string     `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Title       string     `gorm:"column:title;size:255;not null" json:"title"`
	UserPhone   string     `gorm:"column:user_phone;size:32;not null;index" json:"user_phone"`
	Deadline    *time.Time `gorm:"column:deadline" json:"deadline"`
	IsCompleted bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (BotTask) TableName() string {
	return "tasks"
}

// AdminTask is created by an operator from the dashboard. Its status is
// stored verbatim, unlike BotTask whose status is derived.
type AdminTask struct {
	ID        string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Title     string    `gorm:"column:title;size:255;not null" json:"title"`
	GroupName string    `gorm:"column:group_name;size:190;not null;default:'General'" json:"group_name"`
	Priority  string    `gorm:"column:priority;size:32;not null;default:'Medium'" json:"priority"`
	Status    string    `gorm:"column:status;size:32;not null;default:'Pending'" json:"status"`
	DueDate   time.Time `gorm:"column:due_date;not null" json:"due_date"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (AdminTask) TableName() string {
	return "admin_tasks"
}

// Transaction is a ledger row written by the bot's finance commands.
// The dashboard only ever reads these.
type Transaction struct {
	ID          string          `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Amount      float64         `gorm:"column:amount;not null" json:"amount"`
	Category    string          `gorm:"column:category;size:64" json:"category"`
	Type        TransactionType `gorm:"column:type;size:16;not null;index" json:"type"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (Transaction) TableName() string {
	return "transactions"
}

// AdminEvent is an operator-created calendar entry.
type AdminEvent struct {
	ID          string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Type        string    `gorm:"column:type;size:32;not null;default:'meeting'" json:"type"`
	EventDate   time.Time `gorm:"column:event_date;not null;index" json:"event_date"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (AdminEvent) TableName() string {
	return "admin_events"
}

// BotStatus is the singleton heartbeat row for one bot session. The bot
// replaces the whole row on every heartbeat.
type BotStatus struct {
	SessionID     string    `gorm:"column:session_id;primaryKey;size:64;not null" json:"session_id"`
	IsOnline      bool      `gorm:"column:is_online;not null;default:false" json:"is_online"`
	UptimeSeconds int64     `gorm:"column:uptime_seconds;not null;default:0" json:"uptime_seconds"`
	LastActive    time.Time `gorm:"column:last_active" json:"last_active"`
	MessagesToday int64     `gorm:"column:messages_today;not null;default:0" json:"messages_today"`
	Version       string    `gorm:"column:version;size:32" json:"version"`
	Platform      string    `gorm:"column:platform;size:64" json:"platform"`
	MemoryUsageMB float64   `gorm:"column:memory_usage_mb;not null;default:0" json:"memory_usage_mb"`
	LatencyMS     int64     `gorm:"column:latency_ms;not null;default:0" json:"latency_ms"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (BotStatus) TableName() string {
	return "bot_status"
}

// ChangeLog is an append-only release note written by deploy tooling.
type ChangeLog struct {
	ID          string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Version     string    `gorm:"column:version;size:32;not null" json:"version"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	ChangesJSON string    `gorm:"column:changes;type:text" json:"changes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (ChangeLog) TableName() string {
	return "changelogs"
}

// UpdateLog is an append-only operational event emitted by the bot process.
type UpdateLog struct {
	ID        string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	Type      string    `gorm:"column:type;size:32;not null;default:'info'" json:"type"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	UserPhone string    `gorm:"column:user_phone;size:32" json:"user_phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (UpdateLog) TableName() string {
	return "updatelogs"
}
