package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
)

const dbTimeout = 5 * time.Second

// Session is what every screen needs to call the facade on behalf of the
// configured user.
type Session struct {
	Facade *facade.Facade
	Caller *access.Caller
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenLedgerMsg asks the root model to show the ledger of a task.
type OpenLedgerMsg struct {
	TaskID int64
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

var (
	driftStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)
