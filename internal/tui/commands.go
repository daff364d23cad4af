package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/adanyl0v/go-tasks/internal/client"
	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

func startCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		return sessionStartedMsg{err: s.Start(context.Background())}
	}
}

func loginCmd(s Session, f session.LoginForm) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{err: s.Login(context.Background(), f)}
	}
}

func registerCmd(s Session, f session.RegisterForm) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{err: s.Register(context.Background(), f)}
	}
}

func logoutCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		s.Logout(context.Background())
		return loggedOutMsg{}
	}
}

// loadCmd fetches tasks and labels concurrently. Filtering happens locally
// so the counter can report the unfiltered total.
func loadCmd(deps Deps) tea.Cmd {
	return func() tea.Msg {
		var (
			tasks  []models.Task
			labels []models.Label
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			tasks, err = deps.Tasks.List(ctx, client.TaskQuery{})
			return err
		})
		g.Go(func() error {
			var err error
			labels, err = deps.Labels.List(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			deps.Logger.Error().
				Err(err).
				Msg("failed to load tasks and labels")
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{tasks: tasks, labels: labels}
	}
}

func mutationCmd(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{done: done, err: fn(context.Background())}
	}
}

func createTaskCmd(api TaskAPI, data models.TaskCreate) tea.Cmd {
	return mutationCmd("Task created", func(ctx context.Context) error {
		_, err := api.Create(ctx, data)
		return err
	})
}

func updateTaskCmd(api TaskAPI, id string, data models.TaskUpdate) tea.Cmd {
	return mutationCmd("Task updated", func(ctx context.Context) error {
		_, err := api.Update(ctx, id, data)
		return err
	})
}

func toggleTaskCmd(api TaskAPI, id string) tea.Cmd {
	return mutationCmd("Task updated", func(ctx context.Context) error {
		_, err := api.ToggleComplete(ctx, id)
		return err
	})
}

func deleteTaskCmd(api TaskAPI, id string) tea.Cmd {
	return mutationCmd("Task deleted", func(ctx context.Context) error {
		return api.Delete(ctx, id)
	})
}

func createLabelCmd(api LabelAPI, data models.LabelCreate) tea.Cmd {
	return mutationCmd("Label created", func(ctx context.Context) error {
		_, err := api.Create(ctx, data)
		return err
	})
}

func updateLabelCmd(api LabelAPI, id string, data models.LabelUpdate) tea.Cmd {
	return mutationCmd("Label updated", func(ctx context.Context) error {
		_, err := api.Update(ctx, id, data)
		return err
	})
}

func deleteLabelCmd(api LabelAPI, id string) tea.Cmd {
	return mutationCmd("Label deleted", func(ctx context.Context) error {
		return api.Delete(ctx, id)
	})
}

func updateProfileCmd(s Session, f session.ProfileForm) tea.Cmd {
	return func() tea.Msg {
		user, err := s.UpdateProfile(context.Background(), f)
		return profileSavedMsg{user: user, err: err}
	}
}
