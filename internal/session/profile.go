package session

import (
	"errors"

	"github.com/adanyl0v/go-tasks/internal/models"
)

var ErrNoChanges = errors.New("no changes to save")

// ProfileForm is the editable copy of the profile. Password fields are only
// considered when ChangePassword is set.
type ProfileForm struct {
	Username        string
	Email           string
	ChangePassword  bool
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// NewProfileForm seeds a form from the current user.
func NewProfileForm(user models.User) ProfileForm {
	return ProfileForm{
		Username: user.Username,
		Email:    user.Email,
	}
}

// DiffProfile builds an update holding only the fields of form that differ
// from snapshot. The password pair is validated and included as a whole.
func DiffProfile(snapshot models.User, form ProfileForm) (models.ProfileUpdate, error) {
	var update models.ProfileUpdate

	if form.ChangePassword {
		switch {
		case form.CurrentPassword == "":
			return update, &ValidationError{Field: "CurrentPassword", Message: "Current password is required to change password"}
		case form.NewPassword == "":
			return update, &ValidationError{Field: "NewPassword", Message: "New password is required"}
		case len(form.NewPassword) < 6:
			return update, &ValidationError{Field: "NewPassword", Message: "New password must be at least 6 characters"}
		case form.NewPassword != form.ConfirmPassword:
			return update, &ValidationError{Field: "ConfirmPassword", Message: "Passwords do not match"}
		}
	}

	if form.Username != snapshot.Username {
		username := form.Username
		update.Username = &username
	}
	if form.Email != snapshot.Email {
		email := form.Email
		update.Email = &email
	}
	if form.ChangePassword {
		current, next := form.CurrentPassword, form.NewPassword
		update.CurrentPassword = &current
		update.NewPassword = &next
	}

	if update.IsEmpty() {
		return update, ErrNoChanges
	}
	return update, nil
}
