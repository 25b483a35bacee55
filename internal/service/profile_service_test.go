package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"conftix/internal/cache"
	apperrors "conftix/internal/errors"
	"conftix/internal/model"
)

func snakeUser(id uint) *model.User {
	return &model.User{
		ID:               id,
		Name:             "Alice",
		Email:            "alice@example.com",
		BadgeSnakeColour: strptr("red"),
		BadgeSnakeExtras: strptr("crown"),
	}
}

func fieldValue(t *testing.T, view *ProfileView, label string) string {
	t.Helper()
	for _, f := range view.Fields {
		if f.Label == label {
			return f.Value
		}
	}
	t.Fatalf("field %q not present in view", label)
	return ""
}

func hasField(view *ProfileView, label string) bool {
	for _, f := range view.Fields {
		if f.Label == label {
			return true
		}
	}
	return false
}

func TestProfileService_View_EmptyProfile(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)

	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(snakeUser(1), nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	view, err := svc.View(context.Background(), 1)

	assert.NoError(t, err)
	assert.Empty(t, view.OptOutNotice)
	for label, want := range map[string]string{
		"Name":                 "Alice",
		"Email":                "alice@example.com",
		"Company":              "None",
		"Twitter":              "None",
		"Pronoun":              "None",
		"Accessibility":        "unknown",
		"Childcare":            "unknown",
		"Dietary":              "unknown",
		"Year of birth":        "unknown",
		"Gender":               "unknown",
		"Ethnicity":            "unknown",
		"Nationality":          "unknown",
		"Country of residence": "unknown",
	} {
		assert.Equal(t, want, fieldValue(t, view, label), "field %q", label)
	}

	mockUsers.AssertExpectations(t)
	mockOrders.AssertExpectations(t)
}

func TestProfileService_View_FullProfile(t *testing.T) {
	user := snakeUser(1)
	user.BadgeCompany = strptr("MegaCorp")
	user.BadgeTwitter = strptr("@alice")
	user.BadgePronoun = strptr("she/her")
	user.AccessibilityReqs = strptr("none")
	user.ChildcareReqs = strptr("none")
	user.DietaryReqs = strptr("Vegan")
	user.YearOfBirth = strptr("1985")
	user.Gender = strptr("Female")
	user.Ethnicity = strptr("White and Black Caribbean")
	user.Nationality = strptr("British")
	user.CountryOfResidence = strptr("United Kingdom")

	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	view, err := svc.View(context.Background(), 1)

	assert.NoError(t, err)
	assert.Empty(t, view.OptOutNotice)
	assert.Equal(t, "MegaCorp", fieldValue(t, view, "Company"))
	assert.Equal(t, "@alice", fieldValue(t, view, "Twitter"))
	assert.Equal(t, "she/her", fieldValue(t, view, "Pronoun"))
	assert.Equal(t, "Vegan", fieldValue(t, view, "Dietary"))
	assert.Equal(t, "1985", fieldValue(t, view, "Year of birth"))
	assert.Equal(t, "White and Black Caribbean", fieldValue(t, view, "Ethnicity"))
}

func TestProfileService_View_EthnicityFreeText(t *testing.T) {
	user := snakeUser(1)
	user.Ethnicity = strptr(model.EthnicityOtherDescribe)
	user.EthnicityFreeText = strptr("Abkhazian")

	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	view, err := svc.View(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, "Abkhazian", fieldValue(t, view, "Ethnicity"))
}

func TestProfileService_View_OptedOut(t *testing.T) {
	user := snakeUser(1)
	user.DontAskDemographics = true

	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	view, err := svc.View(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, OptOutNotice, view.OptOutNotice)
	assert.True(t, hasField(view, "Name"))
	assert.True(t, hasField(view, "Company"))
	for _, label := range []string{
		"Accessibility", "Childcare", "Dietary", "Year of birth",
		"Gender", "Ethnicity", "Nationality", "Country of residence",
	} {
		assert.False(t, hasField(view, label), "field %q should be suppressed", label)
	}
}

func TestProfileService_View_CorporateCompanyOverride(t *testing.T) {
	user := snakeUser(1)
	user.BadgeCompany = strptr("Alice Personal Development Co.")

	order := &model.Order{
		Rate:        model.RateCorporate,
		Status:      model.OrderStatusConfirmed,
		BillingName: "Sirius Cybernetics Corp.",
	}

	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(order, nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	view, err := svc.View(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, "Sirius Cybernetics Corp.", fieldValue(t, view, "Company"))
}

func TestProfileService_SnakeAllocation(t *testing.T) {
	bare := &model.User{ID: 1, Name: "Alice", Email: "alice@example.com"}

	var allocatedColour, allocatedExtras string
	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)

	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(bare, nil).Once()
	mockUsers.On("AllocateSnakeColour", mock.Anything, uint(1), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { allocatedColour = args.String(2) }).
		Return(nil).Once()
	mockUsers.On("AllocateSnakeExtras", mock.Anything, uint(1), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { allocatedExtras = args.String(2) }).
		Return(nil).Once()
	// Re-read after allocation reflects whichever roll won the conditional update.
	mockUsers.On("FindByID", mock.Anything, uint(1)).
		Return(&model.User{
			ID:               1,
			Name:             "Alice",
			Email:            "alice@example.com",
			BadgeSnakeColour: strptr("green"),
			BadgeSnakeExtras: strptr("dragon"),
		}, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	_, err := svc.View(context.Background(), 1)

	assert.NoError(t, err)
	assert.Contains(t, model.SnakeColours, allocatedColour)
	assert.Contains(t, model.SnakeExtras, allocatedExtras)
	mockUsers.AssertExpectations(t)

	// Subsequent reads never re-roll: the mock would reject further
	// Allocate calls, since both expectations are consumed.
	_, err = svc.View(context.Background(), 1)
	assert.NoError(t, err)
}

func TestProfileService_Update_PersistsDemographics(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)

	var captured map[string]interface{}
	mockUsers.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)
	mockUsers.On("UpdateFields", mock.Anything, uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(map[string]interface{}) }).
		Return(nil)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(snakeUser(1), nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	_, err := svc.Update(context.Background(), 1, ProfileForm{
		Name:               "Alice",
		Email:              "alice@example.com",
		YearOfBirth:        "1986",
		Gender:             "agender",
		Ethnicity:          model.EthnicityOtherDescribe,
		EthnicityFreeText:  "Abkhazian",
		Nationality:        "Abkhazian",
		CountryOfResidence: "Abkhazia",
	})

	assert.NoError(t, err)
	assert.Equal(t, "1986", captured["year_of_birth"])
	assert.Equal(t, "agender", captured["gender"])
	assert.Equal(t, model.EthnicityOtherDescribe, captured["ethnicity"])
	assert.Equal(t, "Abkhazian", captured["ethnicity_free_text"])
	assert.Equal(t, "Abkhazian", captured["nationality"])
	assert.Equal(t, "Abkhazia", captured["country_of_residence"])
	assert.Equal(t, false, captured["dont_ask_demographics"])
	mockUsers.AssertExpectations(t)
}

func TestProfileService_Update_OptOutClearsDemographics(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)

	var captured map[string]interface{}
	mockUsers.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)
	mockUsers.On("UpdateFields", mock.Anything, uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(map[string]interface{}) }).
		Return(nil)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(snakeUser(1), nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	// Submitted demographic values are discarded when the opt-out is set.
	_, err := svc.Update(context.Background(), 1, ProfileForm{
		Name:                "Alice",
		Email:               "alice@example.com",
		YearOfBirth:         "1986",
		Gender:              "agender",
		DontAskDemographics: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, true, captured["dont_ask_demographics"])
	for _, col := range demographicColumns {
		v, present := captured[col]
		assert.True(t, present, "column %q missing from update", col)
		assert.Nil(t, v, "column %q should be cleared", col)
	}
}

func TestProfileService_Update_CorporateCannotRenameCompany(t *testing.T) {
	order := &model.Order{
		Rate:        model.RateCorporate,
		Status:      model.OrderStatusConfirmed,
		BillingName: "Sirius Cybernetics Corp.",
	}

	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)

	var captured map[string]interface{}
	mockUsers.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(order, nil)
	mockUsers.On("UpdateFields", mock.Anything, uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(map[string]interface{}) }).
		Return(nil)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(snakeUser(1), nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	_, err := svc.Update(context.Background(), 1, ProfileForm{
		Name:         "Alice",
		Email:        "alice@example.com",
		BadgeCompany: "Alice Personal Development Co.",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Sirius Cybernetics Corp.", captured["badge_company"])
}

func TestProfileService_Update_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		form      ProfileForm
		wantField string
		setupMock func(*MockUserRepository)
	}{
		{
			name:      "missing name",
			form:      ProfileForm{Email: "alice@example.com"},
			wantField: "name",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
			},
		},
		{
			name:      "missing email",
			form:      ProfileForm{Name: "Alice"},
			wantField: "email",
			setupMock: func(m *MockUserRepository) {},
		},
		{
			name:      "malformed email",
			form:      ProfileForm{Name: "Alice", Email: "not-an-email"},
			wantField: "email",
			setupMock: func(m *MockUserRepository) {},
		},
		{
			name:      "email already registered",
			form:      ProfileForm{Name: "Alice", Email: "taken@example.com"},
			wantField: "email",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "taken@example.com", uint(1)).Return(true, nil)
			},
		},
		{
			name: "invalid snake colour",
			form: ProfileForm{
				Name:             "Alice",
				Email:            "alice@example.com",
				BadgeSnakeColour: "octarine",
			},
			wantField: "badge_snake_colour",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
			},
		},
		{
			name: "invalid snake extras",
			form: ProfileForm{
				Name:             "Alice",
				Email:            "alice@example.com",
				BadgeSnakeExtras: "fedora",
			},
			wantField: "badge_snake_extras",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockOrders := new(MockOrderRepository)
			tt.setupMock(mockUsers)

			svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
			user, err := svc.Update(context.Background(), 1, tt.form)

			assert.Nil(t, user)
			fieldErrs, ok := apperrors.AsFieldErrors(err)
			assert.True(t, ok, "expected FieldErrors, got %v", err)
			assert.Contains(t, fieldErrs, tt.wantField)
			// Validation failures never persist anything.
			mockUsers.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProfileService_Update_AcceptsSnakeChoices(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockOrders := new(MockOrderRepository)

	var captured map[string]interface{}
	mockUsers.On("EmailTaken", mock.Anything, "alice@example.com", uint(1)).Return(false, nil)
	mockOrders.On("LatestConfirmedByUser", mock.Anything, uint(1)).Return(nil, nil)
	mockUsers.On("UpdateFields", mock.Anything, uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(map[string]interface{}) }).
		Return(nil)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(snakeUser(1), nil)

	svc := NewProfileService(mockUsers, mockOrders, (*cache.Client)(nil), nil)
	_, err := svc.Update(context.Background(), 1, ProfileForm{
		Name:             "Alice",
		Email:            "alice@example.com",
		BadgeCompany:     "BigCorp",
		BadgeTwitter:     "@notalice",
		BadgePronoun:     "they/them",
		BadgeSnakeColour: "red",
		BadgeSnakeExtras: "deerstalker",
	})

	assert.NoError(t, err)
	assert.Equal(t, "BigCorp", captured["badge_company"])
	assert.Equal(t, "@notalice", captured["badge_twitter"])
	assert.Equal(t, "they/them", captured["badge_pronoun"])
	assert.Equal(t, "red", captured["badge_snake_colour"])
	assert.Equal(t, "deerstalker", captured["badge_snake_extras"])
}
