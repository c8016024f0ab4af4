package models

import "time"

// Gender codes stored on a profile
const (
	GenderMale        = "m"
	GenderFemale      = "f"
	GenderUnspecified = "n"
)

// Profile holds the language-exchange data attached to a user
type Profile struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"userId" db:"user_id"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Gender      string     `json:"gender" db:"gender"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	Avatar      *string    `json:"avatar,omitempty" db:"avatar"`
	CountryID   *int64     `json:"countryId,omitempty" db:"country_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Age derives the profile's age in whole years, nil when the date of
// birth is not set.
func (p *Profile) Age() *int {
	if p.DateOfBirth == nil {
		return nil
	}
	age := int(time.Since(*p.DateOfBirth).Hours() / 24 / 365.25)
	return &age
}

// GenderLabel returns the display label for the stored gender code.
func (p *Profile) GenderLabel() string {
	switch p.Gender {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "prefer not to respond"
	}
}

// ProfileCard is the listing entry sent to clients when browsing profiles
type ProfileCard struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Age    *int     `json:"age,omitempty"`
	Gender string   `json:"gender"`
	Study  []string `json:"study"`
	Tags   []string `json:"tags"`
}

// ProfileDetail is the full profile view
type ProfileDetail struct {
	ID       int64           `json:"id"`
	User     UserResponse    `json:"user"`
	Age      *int            `json:"age,omitempty"`
	Gender   string          `json:"gender"`
	Phone    *string         `json:"phone,omitempty"`
	Avatar   *string         `json:"avatar,omitempty"`
	Country  *Country        `json:"country,omitempty"`
	NativeIn []Language      `json:"nativeIn"`
	Study    []LanguageLevel `json:"study"`
	Tags     []Tag           `json:"tags"`
}
