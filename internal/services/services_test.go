package services

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	issuer := NewTokenIssuer("go-tasks-test", []byte("test-signing-key"), time.Hour, 7*24*time.Hour)
	return New(zerolog.Nop(), storage.NewMemoryRepository(), issuer)
}

func registerAndLogin(t *testing.T, svc *Services, email, username string) *LoginResult {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Auth.Register(ctx, RegisterParams{Email: email, Username: username, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	result, err := svc.Auth.Login(ctx, LoginParams{Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return result
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	registerAndLogin(t, svc, "alice@example.com", "alice")

	_, err := svc.Auth.Register(ctx, RegisterParams{Email: "alice@example.com", Username: "other", Password: "secret1"})
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
	_, err = svc.Auth.Register(ctx, RegisterParams{Email: "other@example.com", Username: "alice", Password: "secret1"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	registerAndLogin(t, svc, "alice@example.com", "alice")

	_, err := svc.Auth.Login(ctx, LoginParams{Email: "alice@example.com", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, err = svc.Auth.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "secret1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like a bad password, got %v", err)
	}
}

func TestAccessTokenCarriesSession(t *testing.T) {
	svc := newTestServices(t)
	result := registerAndLogin(t, svc, "alice@example.com", "alice")

	claims, err := svc.Auth.ParseJWTToken(result.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != result.SessionID {
		t.Fatalf("expected subject %q, got %q", result.SessionID, claims.Subject)
	}

	other := NewTokenIssuer("go-tasks-test", []byte("another-key"), time.Hour, time.Hour)
	if _, err = other.ParseJWTToken(result.AccessToken); err == nil {
		t.Fatal("token signed with another key must be rejected")
	}

	expired := NewTokenIssuer("go-tasks-test", []byte("test-signing-key"), -time.Minute, time.Hour)
	token, _, err := expired.generateAccessToken(result.SessionID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err = svc.Auth.ParseJWTToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected jwt.ErrTokenExpired, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	login := registerAndLogin(t, svc, "alice@example.com", "alice")

	refreshed, err := svc.Auth.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken || refreshed.SessionID != login.SessionID {
		t.Fatalf("unexpected refresh result: %+v", refreshed)
	}

	if _, err = svc.Auth.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	login := registerAndLogin(t, svc, "alice@example.com", "alice")

	if _, err := svc.Sessions.GetActiveSession(ctx, login.SessionID); err != nil {
		t.Fatalf("session must be active: %v", err)
	}
	if err := svc.Auth.Logout(ctx, login.UserID, "not-the-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if err := svc.Auth.Logout(ctx, login.UserID, login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Sessions.GetActiveSession(ctx, login.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("revoked session must be rejected, got %v", err)
	}
	if _, err := svc.Auth.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("revoked refresh token must be rejected, got %v", err)
	}
}

func TestUpdateProfilePassword(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	login := registerAndLogin(t, svc, "alice@example.com", "alice")

	newPassword := "secret2"
	_, err := svc.Users.UpdateProfile(ctx, login.UserID, models.ProfileUpdate{NewPassword: &newPassword})
	if !errors.Is(err, ErrCurrentPasswordRequired) {
		t.Fatalf("expected ErrCurrentPasswordRequired, got %v", err)
	}

	wrong := "nope123"
	_, err = svc.Users.UpdateProfile(ctx, login.UserID, models.ProfileUpdate{CurrentPassword: &wrong, NewPassword: &newPassword})
	if !errors.Is(err, ErrCurrentPasswordIncorrect) {
		t.Fatalf("expected ErrCurrentPasswordIncorrect, got %v", err)
	}

	current := "secret1"
	username := "alice_b"
	user, err := svc.Users.UpdateProfile(ctx, login.UserID, models.ProfileUpdate{
		Username:        &username,
		CurrentPassword: &current,
		NewPassword:     &newPassword,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.Username != "alice_b" {
		t.Fatalf("username not updated: %+v", user)
	}
	if _, err = svc.Auth.Login(ctx, LoginParams{Email: "alice@example.com", Password: "secret2"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if _, err = svc.Users.UpdateProfile(ctx, login.UserID, models.ProfileUpdate{}); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Fatalf("expected ErrNoFieldsToUpdate, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	alice := registerAndLogin(t, svc, "alice@example.com", "alice")
	bob := registerAndLogin(t, svc, "bob@example.com", "bob")

	deadline := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := svc.Tasks.CreateTask(ctx, alice.UserID, models.TaskCreate{
		Title:    "Buy milk",
		Priority: models.PriorityMedium,
		Deadline: deadline,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Completed || task.IsOverdue {
		t.Fatalf("unexpected new task state: %+v", task)
	}

	if _, err = svc.Tasks.GetTask(ctx, bob.UserID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("foreign task must be hidden, got %v", err)
	}

	toggled, err := svc.Tasks.ToggleTask(ctx, alice.UserID, task.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("toggle: %v %+v", err, toggled)
	}

	incomplete := false
	tasks, err := svc.Tasks.ListTasks(ctx, alice.UserID, ListTasksParams{Completed: &incomplete})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("completed task must be filtered out: %+v", tasks)
	}

	title := "Buy oat milk"
	updated, err := svc.Tasks.UpdateTask(ctx, alice.UserID, task.ID, models.TaskUpdate{Title: &title})
	if err != nil || updated.Title != title || !updated.Completed {
		t.Fatalf("partial update: %v %+v", err, updated)
	}

	if err = svc.Tasks.DeleteTask(ctx, alice.UserID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err = svc.Tasks.DeleteTask(ctx, alice.UserID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete must fail, got %v", err)
	}
}

func TestTaskRejectsForeignLabels(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	alice := registerAndLogin(t, svc, "alice@example.com", "alice")
	bob := registerAndLogin(t, svc, "bob@example.com", "bob")

	bobLabel, err := svc.Labels.CreateLabel(ctx, bob.UserID, models.LabelCreate{Name: "work", Color: "#00ff00"})
	if err != nil {
		t.Fatalf("create label: %v", err)
	}

	_, err = svc.Tasks.CreateTask(ctx, alice.UserID, models.TaskCreate{
		Title:    "Sneaky",
		Priority: models.PriorityLow,
		Deadline: time.Now().Add(time.Hour),
		LabelIDs: []string{bobLabel.ID},
	})
	if !errors.Is(err, ErrInvalidLabelIDs) {
		t.Fatalf("expected ErrInvalidLabelIDs, got %v", err)
	}
}

func TestDeleteLabelDetachesFromTasks(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	alice := registerAndLogin(t, svc, "alice@example.com", "alice")

	work, err := svc.Labels.CreateLabel(ctx, alice.UserID, models.LabelCreate{Name: "work", Color: "#ff8800"})
	if err != nil {
		t.Fatalf("create label: %v", err)
	}
	if work.Color != "#FF8800" {
		t.Fatalf("expected normalized color, got %q", work.Color)
	}
	home, _ := svc.Labels.CreateLabel(ctx, alice.UserID, models.LabelCreate{Name: "home", Color: "#000000"})

	if _, err = svc.Labels.CreateLabel(ctx, alice.UserID, models.LabelCreate{Name: "work", Color: "#111111"}); !errors.Is(err, ErrLabelAlreadyExists) {
		t.Fatalf("expected ErrLabelAlreadyExists, got %v", err)
	}

	task, err := svc.Tasks.CreateTask(ctx, alice.UserID, models.TaskCreate{
		Title:    "Report",
		Priority: models.PriorityHigh,
		Deadline: time.Now().Add(time.Hour),
		LabelIDs: []string{work.ID, home.ID, work.ID},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !slices.Equal(task.LabelIDs, []string{work.ID, home.ID}) {
		t.Fatalf("expected deduplicated labels, got %v", task.LabelIDs)
	}

	if err = svc.Labels.DeleteLabel(ctx, alice.UserID, work.ID); err != nil {
		t.Fatalf("delete label: %v", err)
	}
	task, err = svc.Tasks.GetTask(ctx, alice.UserID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !slices.Equal(task.LabelIDs, []string{home.ID}) {
		t.Fatalf("deleted label still referenced: %v", task.LabelIDs)
	}

	if _, err = svc.Labels.UpdateLabel(ctx, alice.UserID, home.ID, models.LabelUpdate{}); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Fatalf("expected ErrNoFieldsToUpdate, got %v", err)
	}
}
