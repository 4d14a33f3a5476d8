package storage

import (
	"errors"
	"time"
)

// Status is a product's lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
)

// ValidTransition reports whether a product may move from one status to
// another. Rejected is terminal; sold is only reachable from approved.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusSold
	default:
		return false
	}
}

// ErrNotFound is returned when a referenced user or product does not exist.
var ErrNotFound = errors.New("not found")

// User represents a marketplace user, created on first /start.
type User struct {
	ID            int64
	Username      string
	FirstName     string
	LastName      string
	Department    string
	Year          string
	JoinedChannel bool
	CreatedAt     time.Time
}

// DisplayName returns the user's first/last name, falling back to the handle.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

// Product represents a marketplace listing. Images holds opaque Telegram
// file ids; ChannelMessageIDs the message ids produced when published.
type Product struct {
	ID                string
	SellerID          int64
	Title             string
	Description       string
	Price             int
	Category          string
	Images            []string
	Status            Status
	ChannelMessageIDs []int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ApprovedBy        int64
}

// Store defines the persistence interface for users and products.
type Store interface {
	// User registry
	UpsertUser(user *User) error
	GetUser(id int64) (*User, error)
	SetUserVerification(id int64, department, year string) error
	SetJoinedChannel(id int64, joined bool) error
	ListUserIDs() ([]int64, error)

	// Product repository
	CreateProduct(product *Product) error
	GetProduct(id string) (*Product, error)
	ProductsBySeller(sellerID int64) ([]Product, error)
	ProductsByStatus(status Status) ([]Product, error)
	ApprovedByCategory(category string) ([]Product, error)
	CountByStatus(status Status) (int, error)

	// TransitionStatus atomically moves a product from one status to
	// another. It returns false when the product was not in the expected
	// status, which makes duplicate approve/reject deliveries no-ops.
	TransitionStatus(id string, from, to Status, adminID int64) (bool, error)
	SetChannelMessageIDs(id string, messageIDs []int) error

	Close() error
}
