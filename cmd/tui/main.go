package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/smartcity/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/config"
	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
	orgStore "github.com/MrJamesThe3rd/smartcity/internal/organization/store"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
	taskStore "github.com/MrJamesThe3rd/smartcity/internal/task/store"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
	txStore "github.com/MrJamesThe3rd/smartcity/internal/transaction/store"
)

type model struct {
	session view.Session
	appName string

	currentView View
	width       int
	height      int

	tasksView  view.TasksModel
	ledgerView view.LedgerModel
}

type View int

const (
	ViewMenu   View = 0
	ViewTasks  View = 1
	ViewLedger View = 2
)

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.TUI.UserID <= 0 {
		return model{}, errors.New("TUI_USER_ID is required")
	}

	dialect, err := database.DialectFor(cfg.DB.Driver)
	if err != nil {
		return model{}, err
	}

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		return model{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			return model{}, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	policy, err := access.LoadPolicy(cfg.Auth.RolesFile)
	if err != nil {
		return model{}, fmt.Errorf("failed to load role policy: %w", err)
	}

	taskSvc := task.NewService(taskStore.New(db, dialect))
	orgSvc := organization.NewService(orgStore.New(db, dialect))
	txSvc := transaction.NewService(txStore.New(db, dialect), taskSvc)
	f := facade.New(taskSvc, txSvc, orgSvc, access.NewResolver(policy))

	caller, err := f.Caller(ctx, cfg.TUI.UserID)
	if err != nil {
		return model{}, fmt.Errorf("failed to load memberships: %w", err)
	}

	session := view.Session{Facade: f, Caller: caller}

	return model{
		session:     session,
		appName:     cfg.App.Name,
		currentView: ViewMenu,
		tasksView:   view.NewTasksModel(session),
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewTasks
				m.tasksView = view.NewTasksModel(m.session)

				return m, tea.Batch(m.tasksView.Init(), m.resize())
			}
		}
	case view.OpenLedgerMsg:
		m.currentView = ViewLedger
		m.ledgerView = view.NewLedgerModel(m.session, msg.TaskID)

		return m, tea.Batch(m.ledgerView.Init(), m.resize())
	case view.BackMsg:
		if m.currentView == ViewLedger {
			m.currentView = ViewTasks
			return m, m.tasksView.Init()
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewTasks:
		var newModel tea.Model
		newModel, cmd = m.tasksView.Update(msg)
		m.tasksView = newModel.(view.TasksModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	}

	return m, cmd
}

// resize replays the last window size to a freshly built screen.
func (m model) resize() tea.Cmd {
	if m.height == 0 {
		return nil
	}

	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}

	return func() tea.Msg { return size }
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s (user %d, %d organizations)\n\n", m.appName, m.session.Caller.UserID, len(m.session.Caller.Organizations())) +
				"1. Tasks and ledgers\n\n" +
				"q. Quit",
		)
	case ViewTasks:
		return m.tasksView.View()
	case ViewLedger:
		return m.ledgerView.View()
	}

	return "Unknown View"
}

func main() {
	// Logs would corrupt the alternate screen.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	m, err := initialModel()
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
