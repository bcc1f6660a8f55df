package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusReserved  = "reserved"
	StatusDeleted   = "deleted"
)

var (
	Categories = []string{"Electronics", "Books", "Furniture", "Clothing", "Sports", "Stationery", "Accessories", "Other"}
	Conditions = []string{"New", "Like New", "Good", "Fair"}
)

type Listing struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Condition   string          `db:"condition" json:"condition"`
	Images      StringList      `db:"images" json:"images"`
	SellerID    string          `db:"seller_id" json:"sellerId"`
	Seller      *UserSummary    `db:"seller" json:"seller,omitempty"`
	Status      string          `db:"status" json:"status"`
	Views       int             `db:"views" json:"views"`
	Campus      string          `db:"campus" json:"campus"`
	Keywords    StringList      `db:"keywords" json:"keywords"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// ListingSummary is the slice of a listing embedded in orders, reports and
// wishlists.
type ListingSummary struct {
	ID     string          `db:"id" json:"id"`
	Title  string          `db:"title" json:"title"`
	Price  decimal.Decimal `db:"price" json:"price"`
	Images StringList      `db:"images" json:"images"`
	Status string          `db:"status" json:"status"`
}

// ListingFilter is a conjunction; zero values mean "no predicate".
type ListingFilter struct {
	Keyword   string
	Category  string
	Condition string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Campus    string
	SellerID  string
	// Statuses restricts status; empty means every non-deleted status.
	Statuses []string
}

type Sort struct {
	Field string // created_at | price | views
	Desc  bool
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func NewPagination(total int, p Page) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Total: total, Page: p.Page, Pages: pages, Limit: p.Limit}
}

// Order statuses.
const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderRejected  = "rejected"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

const PaymentPending = "pending"

var orderTransitions = map[string][]string{
	OrderPending:  {OrderAccepted, OrderRejected, OrderCompleted, OrderCancelled},
	OrderAccepted: {OrderCompleted, OrderCancelled},
}

// OrderStatusValid reports whether s names an order status at all.
func OrderStatusValid(s string) bool {
	switch s {
	case OrderPending, OrderAccepted, OrderRejected, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// OrderCanMove reports whether an order in status from may move to to.
func OrderCanMove(from, to string) bool {
	return contains(orderTransitions[from], to)
}

type Order struct {
	ID              string          `db:"id" json:"id"`
	ListingID       string          `db:"listing_id" json:"listingId"`
	Listing         *ListingSummary `db:"listing" json:"product,omitempty"`
	BuyerID         string          `db:"buyer_id" json:"buyerId"`
	Buyer           *UserSummary    `db:"buyer" json:"buyer,omitempty"`
	SellerID        string          `db:"seller_id" json:"sellerId"`
	Seller          *UserSummary    `db:"seller" json:"seller,omitempty"`
	Status          string          `db:"status" json:"status"`
	Message         string          `db:"message" json:"message"`
	BuyerPhone      string          `db:"buyer_phone" json:"buyerPhone"`
	BuyerEmail      string          `db:"buyer_email" json:"buyerEmail"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentStatus   string          `db:"payment_status" json:"paymentStatus"`
	MeetingLocation string          `db:"meeting_location" json:"meetingLocation,omitempty"`
	MeetingTime     *time.Time      `db:"meeting_time" json:"meetingTime,omitempty"`
	SellerNotes     string          `db:"seller_notes" json:"sellerNotes"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// Report statuses and moderation actions.
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"

	ActionNone           = "none"
	ActionWarning        = "warning"
	ActionListingRemoved = "listing_removed"
	ActionUserSuspended  = "user_suspended"
)

var ReportReasons = []string{
	"Spam",
	"Inappropriate Content",
	"Misleading Information",
	"Scam/Fraud",
	"Duplicate Listing",
	"Sold Item Still Listed",
	"Other",
}

var reportTransitions = map[string][]string{
	ReportPending:  {ReportReviewed, ReportResolved, ReportDismissed},
	ReportReviewed: {ReportResolved, ReportDismissed},
}

func ReportStatusValid(s string) bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

func ReportCanMove(from, to string) bool {
	return contains(reportTransitions[from], to)
}

func ReportActionValid(s string) bool {
	switch s {
	case ActionNone, ActionWarning, ActionListingRemoved, ActionUserSuspended:
		return true
	}
	return false
}

type Report struct {
	ID          string          `db:"id" json:"id"`
	ListingID   string          `db:"listing_id" json:"listingId"`
	Listing     *ListingSummary `db:"listing" json:"product,omitempty"`
	ReporterID  string          `db:"reporter_id" json:"reporterId"`
	Reporter    *UserSummary    `db:"reporter" json:"reporter,omitempty"`
	Reason      string          `db:"reason" json:"reason"`
	Description string          `db:"description" json:"description"`
	Status      string          `db:"status" json:"status"`
	ReviewedBy  *string         `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewNotes string          `db:"review_notes" json:"reviewNotes"`
	ActionTaken string          `db:"action_taken" json:"actionTaken"`
	ReviewedAt  *time.Time      `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Stats is the admin overview. The New* counts cover the recent window.
type Stats struct {
	TotalUsers     int `db:"total_users" json:"totalUsers"`
	TotalListings  int `db:"total_listings" json:"totalProducts"`
	TotalOrders    int `db:"total_orders" json:"totalOrders"`
	PendingReports int `db:"pending_reports" json:"pendingReports"`
	NewUsers       int `db:"new_users" json:"newUsers"`
	NewListings    int `db:"new_listings" json:"newProducts"`
	NewOrders      int `db:"new_orders" json:"newOrders"`
}

type CategoryCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func ValidCategory(s string) bool  { return contains(Categories, s) }
func ValidCondition(s string) bool { return contains(Conditions, s) }
func ValidReason(s string) bool    { return contains(ReportReasons, s) }
