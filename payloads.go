package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// LoginRequest carries the credentials for Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate enforces shape before the request leaves the process.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// RegisterRequest creates a new account. Registration does not authenticate;
// the account verifies through the OTP flow and then logs in.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(RoleConsultant, RoleFarm, RoleMember),
		),
	)
}

// ProfileUpdateRequest is a partial profile update. Nil fields are omitted
// from the request body.
type ProfileUpdateRequest struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

func (r ProfileUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.PhoneNumber, validation.Length(7, 20)),
	)
}

// NormalizePhone rewrites the phone number to E.164 for the given region.
// Unparseable numbers are rejected before the request goes out.
func (r *ProfileUpdateRequest) NormalizePhone(region string) error {
	if r.PhoneNumber == nil || *r.PhoneNumber == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(*r.PhoneNumber, region)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid phone number").
			WithTextCode(TextCodeValidation)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return errors.New("invalid phone number for region", errors.CategoryValidation).
			WithTextCode(TextCodeValidation).
			WithMetadata(map[string]any{"region": region})
	}

	formatted := phonenumbers.Format(parsed, phonenumbers.E164)
	r.PhoneNumber = &formatted
	return nil
}

// ChangePasswordRequest rotates the password of the logged-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// OTPRequest asks the upstream to mail a one-time code.
type OTPRequest struct {
	Email string `json:"email"`
}

func (r OTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// OTPVerifyRequest confirms a one-time code.
type OTPVerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r OTPVerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Length(4, 8), is.Digit),
	)
}

// PasswordResetRequest starts the forgot-password flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetConfirmRequest finishes the forgot-password flow with the
// mailed code and the replacement password.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (r PasswordResetConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Length(4, 8), is.Digit),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// refreshRequest is the wire shape for the token refresh call.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
