package api

import (
	"encoding/json"
	"time"
)

// LoginRequest holds the credentials submitted to the token endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the token endpoint response
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// User is an operator account of the back office
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Operator roles
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// MemberStatus is the lifecycle state of a member
type MemberStatus string

const (
	StatusActive    MemberStatus = "active"
	StatusSuspended MemberStatus = "suspended"
	StatusWithdrawn MemberStatus = "withdrawn"
	StatusPending   MemberStatus = "pending"
)

// MemberStatuses lists every status in display order
var MemberStatuses = []MemberStatus{StatusActive, StatusSuspended, StatusWithdrawn, StatusPending}

// Valid reports whether s is a known status
func (s MemberStatus) Valid() bool {
	for _, known := range MemberStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Sponsor is the short form of the member that recruited another
type Sponsor struct {
	ID         int    `json:"id"`
	MemberCode string `json:"member_code"`
	FullName   string `json:"full_name"`
}

// Member is a distributor record. The console only reads it and targets
// mutations by ID.
type Member struct {
	ID                int          `json:"id"`
	MemberCode        string       `json:"member_code"`
	FamilyName        string       `json:"family_name"`
	GivenName         string       `json:"given_name"`
	FamilyNameKana    string       `json:"family_name_kana,omitempty"`
	GivenNameKana     string       `json:"given_name_kana,omitempty"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone,omitempty"`
	PostalCode        string       `json:"postal_code,omitempty"`
	Prefecture        string       `json:"prefecture,omitempty"`
	City              string       `json:"city,omitempty"`
	AddressLine       string       `json:"address_line,omitempty"`
	Status            MemberStatus `json:"status"`
	IsActive          bool         `json:"is_active"`
	OrganizationLevel int          `json:"organization_level"`
	BinaryPosition    string       `json:"binary_position,omitempty"`
	RegistrationDate  *time.Time   `json:"registration_date,omitempty"`
	ActivationDate    *time.Time   `json:"activation_date,omitempty"`
	SuspensionDate    *time.Time   `json:"suspension_date,omitempty"`
	WithdrawalDate    *time.Time   `json:"withdrawal_date,omitempty"`
	TotalSales        float64      `json:"total_sales"`
	TotalRewards      float64      `json:"total_rewards"`
	BankName          string       `json:"bank_name,omitempty"`
	BranchName        string       `json:"branch_name,omitempty"`
	AccountType       string       `json:"account_type,omitempty"`
	AccountNumber     string       `json:"account_number,omitempty"`
	AccountHolder     string       `json:"account_holder,omitempty"`
	Sponsor           *Sponsor     `json:"sponsor,omitempty"`
	CreatedAt         *time.Time   `json:"created_at,omitempty"`
	UpdatedAt         *time.Time   `json:"updated_at,omitempty"`
}

// FullName joins family and given name
func (m Member) FullName() string {
	if m.GivenName == "" {
		return m.FamilyName
	}
	return m.FamilyName + " " + m.GivenName
}

// MemberCreate is the body of a member registration
type MemberCreate struct {
	MemberCode     string `json:"member_code"`
	FamilyName     string `json:"family_name"`
	GivenName      string `json:"given_name"`
	FamilyNameKana string `json:"family_name_kana,omitempty"`
	GivenNameKana  string `json:"given_name_kana,omitempty"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	Prefecture     string `json:"prefecture,omitempty"`
	City           string `json:"city,omitempty"`
	AddressLine    string `json:"address_line,omitempty"`
	SponsorID      *int   `json:"sponsor_id,omitempty"`
	UplineID       *int   `json:"upline_id,omitempty"`
	BinaryPosition string `json:"binary_position,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	BranchName     string `json:"branch_name,omitempty"`
	AccountType    string `json:"account_type,omitempty"`
	AccountNumber  string `json:"account_number,omitempty"`
	AccountHolder  string `json:"account_holder,omitempty"`
}

// MemberUpdate is a partial update; nil fields are left untouched
type MemberUpdate struct {
	FamilyName     *string       `json:"family_name,omitempty"`
	GivenName      *string       `json:"given_name,omitempty"`
	FamilyNameKana *string       `json:"family_name_kana,omitempty"`
	GivenNameKana  *string       `json:"given_name_kana,omitempty"`
	Email          *string       `json:"email,omitempty"`
	Phone          *string       `json:"phone,omitempty"`
	PostalCode     *string       `json:"postal_code,omitempty"`
	Prefecture     *string       `json:"prefecture,omitempty"`
	City           *string       `json:"city,omitempty"`
	AddressLine    *string       `json:"address_line,omitempty"`
	Status         *MemberStatus `json:"status,omitempty"`
	BankName       *string       `json:"bank_name,omitempty"`
	BranchName     *string       `json:"branch_name,omitempty"`
	AccountType    *string       `json:"account_type,omitempty"`
	AccountNumber  *string       `json:"account_number,omitempty"`
	AccountHolder  *string       `json:"account_holder,omitempty"`
	Notes          *string       `json:"notes,omitempty"`
}

// Empty reports whether the update changes nothing
func (u MemberUpdate) Empty() bool {
	return u == MemberUpdate{}
}

// MemberStats are member counters by status
type MemberStats struct {
	TotalMembers              int `json:"total_members"`
	ActiveMembers             int `json:"active_members"`
	SuspendedMembers          int `json:"suspended_members"`
	WithdrawnMembers          int `json:"withdrawn_members"`
	PendingMembers            int `json:"pending_members"`
	NewRegistrationsThisMonth int `json:"new_registrations_this_month"`
}

// ListResponse is a page of results
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// UnmarshalJSON accepts the page under either "items" or "members"
func (l *ListResponse[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items   []T `json:"items"`
		Members []T `json:"members"`
		Total   int `json:"total"`
		Page    int `json:"page"`
		Size    int `json:"size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.Items = raw.Items
	if l.Items == nil {
		l.Items = raw.Members
	}
	l.Total, l.Page, l.Size = raw.Total, raw.Page, raw.Size
	return nil
}

// ListMembersParams filters and pages the member list
type ListMembersParams struct {
	Skip   int
	Limit  int
	Search string
	Status MemberStatus
}

// AlertType is the severity of a dashboard alert
type AlertType string

const (
	AlertError   AlertType = "error"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Alert is an operator-facing message on the dashboard
type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

// GrowthRates compare the current period with the previous one
type GrowthRates struct {
	Sales            float64 `json:"sales"`
	ActiveMembers    float64 `json:"active_members"`
	SuspendedMembers float64 `json:"suspended_members"`
	WithdrawnMembers float64 `json:"withdrawn_members"`
	Revenue          float64 `json:"revenue"`
}

// DashboardStats are the aggregate counters shown on the dashboard
type DashboardStats struct {
	MonthlySales     float64     `json:"monthly_sales"`
	ActiveMembers    int         `json:"active_members"`
	SuspendedMembers int         `json:"suspended_members"`
	WithdrawnMembers int         `json:"withdrawn_members"`
	UnpaidCount      int         `json:"unpaid_count"`
	TotalRevenue     float64     `json:"total_revenue"`
	GrowthRates      GrowthRates `json:"growth_rates"`
	Alerts           []Alert     `json:"alerts"`
}

// ChartData is a time series for the dashboard chart
type ChartData struct {
	Labels  []string  `json:"labels"`
	Sales   []float64 `json:"sales"`
	Members []int     `json:"members"`
}
