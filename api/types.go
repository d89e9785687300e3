// Package api provides typed clients for the dashboard's upstream resource
// endpoints. Every client rides on the session client's request core, which
// injects the stored bearer token and maps failures onto the session error
// taxonomy.
package api

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Advertisement is a promotional placement shown in the dashboard.
type Advertisement struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	ExternalLink string `json:"external_link"`
	Image        string `json:"image"`
	TargetUser   string `json:"target_user"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	CreatedAt    string `json:"created_at"`
}

// CreateAdvertisementRequest creates a new placement.
type CreateAdvertisementRequest struct {
	Title        string `json:"title"`
	ExternalLink string `json:"external_link"`
	Image        string `json:"image"`
	TargetUser   string `json:"target_user"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// Validate implements validation.Validatable.
func (r CreateAdvertisementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.ExternalLink, validation.Required, is.URL),
		validation.Field(&r.TargetUser, validation.Required),
		validation.Field(&r.Status, validation.Required, validation.In("active", "inactive")),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.EndDate, validation.Required),
	)
}

// UpdateAdvertisementRequest partially updates a placement. Nil fields are
// left unchanged.
type UpdateAdvertisementRequest struct {
	Title        *string `json:"title,omitempty"`
	ExternalLink *string `json:"external_link,omitempty"`
	Image        *string `json:"image,omitempty"`
	TargetUser   *string `json:"target_user,omitempty"`
	Status       *string `json:"status,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`
}

// Validate implements validation.Validatable.
func (r UpdateAdvertisementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ExternalLink, is.URL),
		validation.Field(&r.Status, validation.In("active", "inactive")),
	)
}

// MemberCreateRequest enrolls a member account under a farm.
type MemberCreateRequest struct {
	Farm     int    `json:"farm"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate implements validation.Validatable.
func (r MemberCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Farm, validation.Required, validation.Min(1)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// ConsultantRequest asks to link a consultant with a farm.
type ConsultantRequest struct {
	Farm       int `json:"farm"`
	Consultant int `json:"consultant"`
}

// Validate implements validation.Validatable.
func (r ConsultantRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Farm, validation.Required, validation.Min(1)),
		validation.Field(&r.Consultant, validation.Required, validation.Min(1)),
	)
}

// RequestManageRequest accepts or rejects a pending consultant request.
type RequestManageRequest struct {
	Action string `json:"action"`
}

// Validate implements validation.Validatable.
func (r RequestManageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.Required, validation.In("accept", "reject")),
	)
}

// Notification is an in-app message for the current user.
type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Subscription is a payment plan attached to a user.
type Subscription struct {
	ID       int     `json:"id"`
	User     int     `json:"user"`
	PlanName string  `json:"plan_name"`
	Status   string  `json:"status"`
	Start    string  `json:"start_date"`
	End      string  `json:"end_date"`
	Amount   float64 `json:"amount"`
}

// MilkHistoryRequest records one hospital-milk mixing calculation.
type MilkHistoryRequest struct {
	BottleSize           float64 `json:"bottle_size"`
	NumberOfBottles      int     `json:"number_of_bottles"`
	HospitalSolids       float64 `json:"hospital_solids"`
	HospitalMilkVolume   float64 `json:"hospital_milk_volume"`
	DesiredSolidsContent float64 `json:"desired_solids_content"`
	PoundsOfWater        float64 `json:"pounds_of_water"`
	PoundsOfMilkReplacer float64 `json:"pounds_of_milk_replacer"`
	SolidsHospitalMilk   float64 `json:"solids_hospital_milk"`
	HospitalMilkUsed     float64 `json:"hospital_milk_used"`
	TotalVolume          string  `json:"total_volume,omitempty"`
}

// Validate implements validation.Validatable.
func (r MilkHistoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BottleSize, validation.Required, validation.Min(0.1)),
		validation.Field(&r.NumberOfBottles, validation.Required, validation.Min(1)),
		validation.Field(&r.DesiredSolidsContent, validation.Required, validation.Min(0.1)),
	)
}

// MilkHistoryEntry is a stored mixing calculation. Numeric fields come back
// as decimal strings from the upstream.
type MilkHistoryEntry struct {
	ID                   int    `json:"id"`
	User                 int    `json:"user"`
	UserEmail            string `json:"user_email"`
	CreatedAt            string `json:"created_at"`
	BottleSize           string `json:"bottle_size"`
	NumberOfBottles      int    `json:"number_of_bottles"`
	HospitalSolids       string `json:"hospital_solids"`
	HospitalMilkVolume   string `json:"hospital_milk_volume"`
	DesiredSolidsContent string `json:"desired_solids_content"`
	PoundsOfWater        string `json:"pounds_of_water"`
	PoundsOfMilkReplacer string `json:"pounds_of_milk_replacer"`
	SolidsHospitalMilk   string `json:"solids_hospital_milk"`
	HospitalMilkUsed     string `json:"hospital_milk_used"`
	TotalVolume          string `json:"total_volume,omitempty"`
}
