// Package models defines the entities owned by the inventory ledger and the
// State aggregate that is persisted as a single document.
package models

import "time"

// Role controls which ledger operations a session may trigger.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Condition is the physical state of an item.
type Condition string

const (
	ConditionGood        Condition = "good"
	ConditionNeedsRepair Condition = "needs_repair"
	ConditionBroken      Condition = "broken"
)

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanReturned LoanStatus = "returned"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// User is an account that can log in, borrow items and, with RoleAdmin,
// process requests. Password holds a bcrypt hash.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Role      Role      `json:"role"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may process requests and manage the catalog.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Item is a catalog entry. Quantity is the number of units owned, Available
// the number currently on the shelf.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Category     string    `json:"category"`
	Location     string    `json:"location"`
	Condition    Condition `json:"condition"`
	Quantity     int       `json:"quantity"`
	Available    int       `json:"available"`
	Image        string    `json:"image,omitempty"`
	PurchaseDate string    `json:"purchaseDate,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Borrowed is the number of units currently out on loan.
func (i Item) Borrowed() int { return i.Quantity - i.Available }

// Loan records units of an item handed to a user.
type Loan struct {
	ID      string     `json:"id"`
	ItemID  string     `json:"itemId"`
	UserID  string     `json:"userId"`
	Qty     int        `json:"qty"`
	DateOut time.Time  `json:"dateOut"`
	DueDate *time.Time `json:"dueDate,omitempty"`
	DateIn  *time.Time `json:"dateIn,omitempty"`
	Status  LoanStatus `json:"status"`
}

// Overdue reports whether a borrowed loan is past its due date at now.
func (l Loan) Overdue(now time.Time) bool {
	return l.Status == LoanBorrowed && l.DueDate != nil && now.After(*l.DueDate)
}

// Request is a user's ask to borrow units of an item.
type Request struct {
	ID          string        `json:"id"`
	ItemID      string        `json:"itemId"`
	UserID      string        `json:"userId"`
	Qty         int           `json:"qty"`
	Note        string        `json:"note,omitempty"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ProcessedAt *time.Time    `json:"processedAt,omitempty"`
	ProcessedBy string        `json:"processedBy,omitempty"`
}

// Audit is one immutable log entry describing a state change.
type Audit struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	UserID    string         `json:"userId,omitempty"`
	TargetID  string         `json:"targetId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
