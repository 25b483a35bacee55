package model

import "time"

// Snake badge decoration sets. Every attendee badge carries a snake drawn in
// one of these colours wearing one of these extras; the pair is rolled once
// per user and never changes afterwards.
var (
	SnakeColours = []string{"red", "blue", "orange", "yellow", "green", "purple"}
	SnakeExtras  = []string{"deerstalker", "glasses", "mortar", "astronaut", "crown", "dragon"}
)

// EthnicityOtherDescribe is the ethnicity option that unlocks the free-text
// field on the profile form.
const EthnicityOtherDescribe = "Any other ethnic group, please describe"

// User represents an account holder. Badge fields are printed on the physical
// conference badge; demographic fields are optional and all of them are
// cleared whenever the user opts out of sharing demographics.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // Never expose in JSON

	// Badge fields
	BadgeCompany     *string `json:"badge_company,omitempty" gorm:"size:255"`
	BadgeTwitter     *string `json:"badge_twitter,omitempty" gorm:"size:255"`
	BadgePronoun     *string `json:"badge_pronoun,omitempty" gorm:"size:64"`
	BadgeSnakeColour *string `json:"badge_snake_colour,omitempty" gorm:"size:32"`
	BadgeSnakeExtras *string `json:"badge_snake_extras,omitempty" gorm:"size:32"`

	// Demographic fields. Invariant: all nil when DontAskDemographics is true.
	AccessibilityReqs  *string `json:"accessibility_reqs,omitempty" gorm:"type:text"`
	ChildcareReqs      *string `json:"childcare_reqs,omitempty" gorm:"type:text"`
	DietaryReqs        *string `json:"dietary_reqs,omitempty" gorm:"type:text"`
	YearOfBirth        *string `json:"year_of_birth,omitempty" gorm:"size:4"`
	Gender             *string `json:"gender,omitempty" gorm:"size:255"`
	Ethnicity          *string `json:"ethnicity,omitempty" gorm:"size:255"`
	EthnicityFreeText  *string `json:"ethnicity_free_text,omitempty" gorm:"size:255"`
	Nationality        *string `json:"nationality,omitempty" gorm:"size:255"`
	CountryOfResidence *string `json:"country_of_residence,omitempty" gorm:"size:255"`

	DontAskDemographics bool `json:"dont_ask_demographics" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidSnakeColour reports whether v is one of the fixed snake colours.
func ValidSnakeColour(v string) bool {
	return contains(SnakeColours, v)
}

// ValidSnakeExtras reports whether v is one of the fixed snake extras.
func ValidSnakeExtras(v string) bool {
	return contains(SnakeExtras, v)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
