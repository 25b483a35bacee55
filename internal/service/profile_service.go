package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"conftix/internal/cache"
	apperrors "conftix/internal/errors"
	"conftix/internal/model"
	"conftix/internal/repository"
)

const (
	profileCacheTTL = 5 * time.Minute

	// OptOutNotice replaces the demographic rows on the profile page when the
	// user has declined to share demographics.
	OptOutNotice = "You have opted not to share demographic information with us"

	// Literal tokens for unset fields, matching the badge printing pipeline.
	unsetBadgeValue       = "None"
	unsetDemographicValue = "unknown"
)

// ChoiceFunc picks an index in [0, n). Injectable so tests can observe
// allocation without controlling the exact roll.
type ChoiceFunc func(n int) int

// ProfileField is one label/value row on the profile page.
type ProfileField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProfileView is the fully resolved profile for display. When OptOutNotice is
// set the demographic rows are absent from Fields.
type ProfileView struct {
	Fields       []ProfileField `json:"fields"`
	OptOutNotice string         `json:"opt_out_notice,omitempty"`
}

// ProfileForm carries a profile edit submission. Empty strings clear the
// corresponding optional field.
type ProfileForm struct {
	Name                string
	Email               string
	BadgeCompany        string
	BadgeTwitter        string
	BadgePronoun        string
	BadgeSnakeColour    string
	BadgeSnakeExtras    string
	AccessibilityReqs   string
	ChildcareReqs       string
	DietaryReqs         string
	YearOfBirth         string
	Gender              string
	Ethnicity           string
	EthnicityFreeText   string
	Nationality         string
	CountryOfResidence  string
	DontAskDemographics bool
}

// ProfileService resolves profile fields for display and applies edits.
type ProfileService interface {
	View(ctx context.Context, userID uint) (*ProfileView, error)
	EditForm(ctx context.Context, userID uint) (*model.User, error)
	Update(ctx context.Context, userID uint, form ProfileForm) (*model.User, error)
}

type profileService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	cache    *cache.Client
	choose   ChoiceFunc
	validate *validator.Validate
}

// NewProfileService builds a ProfileService. choose may be nil, in which case
// math/rand drives snake allocation.
func NewProfileService(users repository.UserRepository, orders repository.OrderRepository, cacheClient *cache.Client, choose ChoiceFunc) ProfileService {
	if choose == nil {
		choose = rand.Intn
	}
	return &profileService{
		users:    users,
		orders:   orders,
		cache:    cacheClient,
		choose:   choose,
		validate: validator.New(),
	}
}

// profileCacheKey is shared with the billing service, which invalidates the
// view when a confirmed order changes the resolved company.
func profileCacheKey(userID uint) string {
	return fmt.Sprintf("profile:view:%d", userID)
}

// View resolves all profile fields for display, allocating the snake badge
// attributes first if the user does not have them yet.
func (s *profileService) View(ctx context.Context, userID uint) (*ProfileView, error) {
	if data, _ := s.cache.Get(ctx, profileCacheKey(userID)); data != nil {
		var cached ProfileView
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err = s.ensureSnake(ctx, user)
	if err != nil {
		return nil, err
	}

	company, err := s.resolveCompany(ctx, user)
	if err != nil {
		return nil, err
	}

	view := buildProfileView(user, company)

	if payload, err := json.Marshal(view); err == nil {
		_ = s.cache.Set(ctx, profileCacheKey(userID), payload, profileCacheTTL)
	}
	return view, nil
}

// EditForm returns the user's current values for pre-filling the edit form.
// Snake attributes are allocated here too so the form never shows them unset.
func (s *profileService) EditForm(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ensureSnake(ctx, user)
}

// Update validates and applies a profile edit submission. All validation
// failures are collected into FieldErrors and nothing is persisted unless
// every check passes.
func (s *profileService) Update(ctx context.Context, userID uint, form ProfileForm) (*model.User, error) {
	fieldErrs := apperrors.FieldErrors{}

	if form.Name == "" {
		fieldErrs["name"] = "This field is required."
	}
	if form.Email == "" {
		fieldErrs["email"] = "This field is required."
	} else if err := s.validate.Var(form.Email, "email"); err != nil {
		fieldErrs["email"] = "Enter a valid email address."
	} else {
		taken, err := s.users.EmailTaken(ctx, form.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			fieldErrs["email"] = "That email address has already been registered"
		}
	}

	if form.BadgeSnakeColour != "" && !model.ValidSnakeColour(form.BadgeSnakeColour) {
		fieldErrs["badge_snake_colour"] = "Select a valid choice."
	}
	if form.BadgeSnakeExtras != "" && !model.ValidSnakeExtras(form.BadgeSnakeExtras) {
		fieldErrs["badge_snake_extras"] = "Select a valid choice."
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	fields := map[string]interface{}{
		"name":          form.Name,
		"email":         form.Email,
		"badge_twitter": nullable(form.BadgeTwitter),
		"badge_pronoun": nullable(form.BadgePronoun),
	}

	if form.BadgeSnakeColour != "" {
		fields["badge_snake_colour"] = form.BadgeSnakeColour
	}
	if form.BadgeSnakeExtras != "" {
		fields["badge_snake_extras"] = form.BadgeSnakeExtras
	}

	// A corporate-rate order's billing identity owns the company name; any
	// submitted value is ignored.
	corporate, err := s.latestCorporateOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	if corporate != nil {
		fields["badge_company"] = corporate.BillingName
	} else {
		fields["badge_company"] = nullable(form.BadgeCompany)
	}

	if form.DontAskDemographics {
		fields["dont_ask_demographics"] = true
		for _, col := range demographicColumns {
			fields[col] = nil
		}
	} else {
		fields["dont_ask_demographics"] = false
		fields["accessibility_reqs"] = nullable(form.AccessibilityReqs)
		fields["childcare_reqs"] = nullable(form.ChildcareReqs)
		fields["dietary_reqs"] = nullable(form.DietaryReqs)
		fields["year_of_birth"] = nullable(form.YearOfBirth)
		fields["gender"] = nullable(form.Gender)
		fields["ethnicity"] = nullable(form.Ethnicity)
		fields["ethnicity_free_text"] = nullable(form.EthnicityFreeText)
		fields["nationality"] = nullable(form.Nationality)
		fields["country_of_residence"] = nullable(form.CountryOfResidence)
	}

	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err = s.ensureSnake(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, profileCacheKey(userID))
	return user, nil
}

var demographicColumns = []string{
	"accessibility_reqs",
	"childcare_reqs",
	"dietary_reqs",
	"year_of_birth",
	"gender",
	"ethnicity",
	"ethnicity_free_text",
	"nationality",
	"country_of_residence",
}

// ensureSnake backfills missing snake attributes with a uniform random pick.
// The repository update only applies while the column is still NULL, so a
// concurrent first read cannot overwrite an assigned value; the re-read below
// returns whichever roll won.
func (s *profileService) ensureSnake(ctx context.Context, user *model.User) (*model.User, error) {
	if user.BadgeSnakeColour != nil && user.BadgeSnakeExtras != nil {
		return user, nil
	}

	if user.BadgeSnakeColour == nil {
		colour := model.SnakeColours[s.choose(len(model.SnakeColours))]
		if err := s.users.AllocateSnakeColour(ctx, user.ID, colour); err != nil {
			return nil, fmt.Errorf("allocate snake colour: %w", err)
		}
	}
	if user.BadgeSnakeExtras == nil {
		extras := model.SnakeExtras[s.choose(len(model.SnakeExtras))]
		if err := s.users.AllocateSnakeExtras(ctx, user.ID, extras); err != nil {
			return nil, fmt.Errorf("allocate snake extras: %w", err)
		}
	}

	return s.users.FindByID(ctx, user.ID)
}

// resolveCompany prefers the billing name of the latest confirmed corporate
// order over the user's own badge company.
func (s *profileService) resolveCompany(ctx context.Context, user *model.User) (string, error) {
	corporate, err := s.latestCorporateOrder(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if corporate != nil {
		return corporate.BillingName, nil
	}
	return badgeValue(user.BadgeCompany), nil
}

func (s *profileService) latestCorporateOrder(ctx context.Context, userID uint) (*model.Order, error) {
	order, err := s.orders.LatestConfirmedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find latest confirmed order: %w", err)
	}
	if order != nil && order.Rate == model.RateCorporate {
		return order, nil
	}
	return nil, nil
}

func buildProfileView(user *model.User, company string) *ProfileView {
	fields := []ProfileField{
		{Label: "Name", Value: user.Name},
		{Label: "Email", Value: user.Email},
		{Label: "Company", Value: company},
		{Label: "Twitter", Value: badgeValue(user.BadgeTwitter)},
		{Label: "Pronoun", Value: badgeValue(user.BadgePronoun)},
	}

	if user.DontAskDemographics {
		return &ProfileView{Fields: fields, OptOutNotice: OptOutNotice}
	}

	fields = append(fields,
		ProfileField{Label: "Accessibility", Value: demographicValue(user.AccessibilityReqs)},
		ProfileField{Label: "Childcare", Value: demographicValue(user.ChildcareReqs)},
		ProfileField{Label: "Dietary", Value: demographicValue(user.DietaryReqs)},
		ProfileField{Label: "Year of birth", Value: demographicValue(user.YearOfBirth)},
		ProfileField{Label: "Gender", Value: demographicValue(user.Gender)},
		ProfileField{Label: "Ethnicity", Value: ethnicityValue(user)},
		ProfileField{Label: "Nationality", Value: demographicValue(user.Nationality)},
		ProfileField{Label: "Country of residence", Value: demographicValue(user.CountryOfResidence)},
	)
	return &ProfileView{Fields: fields}
}

// ethnicityValue shows the free-text description when the "please describe"
// option was selected and a description exists.
func ethnicityValue(user *model.User) string {
	if user.Ethnicity != nil && *user.Ethnicity == model.EthnicityOtherDescribe &&
		user.EthnicityFreeText != nil && *user.EthnicityFreeText != "" {
		return *user.EthnicityFreeText
	}
	return demographicValue(user.Ethnicity)
}

func badgeValue(v *string) string {
	if v == nil || *v == "" {
		return unsetBadgeValue
	}
	return *v
}

func demographicValue(v *string) string {
	if v == nil || *v == "" {
		return unsetDemographicValue
	}
	return *v
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
