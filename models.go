package session

// Role is the user's role. The set is closed; Classify-style consumers must
// treat anything outside it as invalid rather than defaulting upward.
type Role = string

const (
	// RoleAdmin manages the whole platform.
	RoleAdmin Role = "admin"
	// RoleConsultant advises the farms it is linked to.
	RoleConsultant Role = "consultant"
	// RoleFarm is a farm owner account.
	RoleFarm Role = "farm"
	// RoleFarmUser is a worker account under a farm.
	RoleFarmUser Role = "farm_user"
	// RoleMember is a regular member.
	RoleMember Role = "member"
	// RoleViewer has read-only access.
	RoleViewer Role = "viewer"
)

// UserProfile is the nested profile block carried by the user snapshot.
type UserProfile struct {
	Name           string `json:"name,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// User is the denormalized snapshot of the authenticated principal, cached in
// the Store alongside the token pair.
type User struct {
	ID         int          `json:"id"`
	Name       string       `json:"name,omitempty"`
	Email      string       `json:"email,omitempty"`
	Role       Role         `json:"role,omitempty"`
	IsVerified bool         `json:"is_verified,omitempty"`
	Profile    *UserProfile `json:"user_profile,omitempty"`
}

// UserPatch is a partial update applied over an existing snapshot. Nil fields
// are left untouched.
type UserPatch struct {
	Name       *string
	Email      *string
	Role       *Role
	IsVerified *bool
	Profile    *ProfilePatch
}

// ProfilePatch is the nested partial update for the profile block.
type ProfilePatch struct {
	Name           *string
	PhoneNumber    *string
	ProfilePicture *string
}

// Merge returns a copy of the user with the patch applied. Unset patch fields
// preserve the current values, including the nested profile.
func (u User) Merge(patch UserPatch) User {
	merged := u
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Email != nil {
		merged.Email = *patch.Email
	}
	if patch.Role != nil {
		merged.Role = *patch.Role
	}
	if patch.IsVerified != nil {
		merged.IsVerified = *patch.IsVerified
	}
	if patch.Profile != nil {
		profile := UserProfile{}
		if u.Profile != nil {
			profile = *u.Profile
		}
		if patch.Profile.Name != nil {
			profile.Name = *patch.Profile.Name
		}
		if patch.Profile.PhoneNumber != nil {
			profile.PhoneNumber = *patch.Profile.PhoneNumber
		}
		if patch.Profile.ProfilePicture != nil {
			profile.ProfilePicture = *patch.Profile.ProfilePicture
		}
		merged.Profile = &profile
	} else if u.Profile != nil {
		profile := *u.Profile
		merged.Profile = &profile
	}
	return merged
}

// DisplayName prefers the profile name over the account name.
func (u User) DisplayName() string {
	if u.Profile != nil && u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Name
}
