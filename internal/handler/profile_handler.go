package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"conftix/internal/service"
)

// ProfileHandler handles profile view and edit endpoints.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileEditRequest represents a profile edit submission. Empty optional
// fields clear the stored value.
type ProfileEditRequest struct {
	Name                string `json:"name" form:"name"`
	Email               string `json:"email" form:"email"`
	BadgeCompany        string `json:"badge_company" form:"badge_company"`
	BadgeTwitter        string `json:"badge_twitter" form:"badge_twitter"`
	BadgePronoun        string `json:"badge_pronoun" form:"badge_pronoun"`
	BadgeSnakeColour    string `json:"badge_snake_colour" form:"badge_snake_colour"`
	BadgeSnakeExtras    string `json:"badge_snake_extras" form:"badge_snake_extras"`
	AccessibilityReqs   string `json:"accessibility_reqs" form:"accessibility_reqs"`
	ChildcareReqs       string `json:"childcare_reqs" form:"childcare_reqs"`
	DietaryReqs         string `json:"dietary_reqs" form:"dietary_reqs"`
	YearOfBirth         string `json:"year_of_birth" form:"year_of_birth"`
	Gender              string `json:"gender" form:"gender"`
	Ethnicity           string `json:"ethnicity" form:"ethnicity"`
	EthnicityFreeText   string `json:"ethnicity_free_text" form:"ethnicity_free_text"`
	Nationality         string `json:"nationality" form:"nationality"`
	CountryOfResidence  string `json:"country_of_residence" form:"country_of_residence"`
	DontAskDemographics bool   `json:"dont_ask_demographics" form:"dont_ask_demographics"`
}

// GetProfile godoc
// @Summary View the current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ProfileView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	view, err := h.profileService.View(c.Request().Context(), userID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetEditForm godoc
// @Summary Current values for the profile edit form
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /profile/edit [get]
func (h *ProfileHandler) GetEditForm(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.profileService.EditForm(c.Request().Context(), userID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileEditRequest true "Profile data"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /profile/edit [post]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ProfileEditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	form := service.ProfileForm{
		Name:                req.Name,
		Email:               req.Email,
		BadgeCompany:        req.BadgeCompany,
		BadgeTwitter:        req.BadgeTwitter,
		BadgePronoun:        req.BadgePronoun,
		BadgeSnakeColour:    req.BadgeSnakeColour,
		BadgeSnakeExtras:    req.BadgeSnakeExtras,
		AccessibilityReqs:   req.AccessibilityReqs,
		ChildcareReqs:       req.ChildcareReqs,
		DietaryReqs:         req.DietaryReqs,
		YearOfBirth:         req.YearOfBirth,
		Gender:              req.Gender,
		Ethnicity:           req.Ethnicity,
		EthnicityFreeText:   req.EthnicityFreeText,
		Nationality:         req.Nationality,
		CountryOfResidence:  req.CountryOfResidence,
		DontAskDemographics: req.DontAskDemographics,
	}

	user, err := h.profileService.Update(c.Request().Context(), userID, form)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}
