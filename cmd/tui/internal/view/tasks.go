package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

type TasksModel struct {
	CommonModel
	session Session

	table   table.Model
	tasks   []*task.Task
	loading bool
	err     error
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewTasksModel(session Session) TasksModel {
	return TasksModel{
		session: session,
		loading: true,
		table: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Title", Width: 30},
			{Title: "Status", Width: 12},
			{Title: "Deadline", Width: 12},
			{Title: "Budget", Width: 12},
			{Title: "Approved", Width: 12},
			{Title: "Org", Width: 6},
		}),
	}
}

func (m TasksModel) Title() string { return "Tasks" }

func (m TasksModel) ShortHelp() string {
	return "Esc: back | Enter: open ledger | r: refresh"
}

func (m TasksModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TasksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTasksMsg:
		m.loading = false
		m.err = msg.err
		m.tasks = msg.tasks
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.tasks) {
				return m, nil
			}

			id := m.tasks[idx].ID

			return m, func() tea.Msg { return OpenLedgerMsg{TaskID: id} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TasksModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading tasks...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.tasks) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No tasks visible to user " + activeStyle(strconv.FormatInt(m.session.Caller.UserID, 10)))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, tableView, faintStyle.Render(m.ShortHelp())),
	)
}

func (m *TasksModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.tasks))
	for _, t := range m.tasks {
		rows = append(rows, table.Row{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			string(t.Status),
			FormatDate(t.Deadline),
			FormatAmount(t.Budget),
			FormatAmount(t.ApprovedBudget),
			strconv.FormatInt(t.OrganizationID, 10),
		})
	}

	m.table.SetRows(rows)
}

type loadTasksMsg struct {
	tasks []*task.Task
	err   error
}

func (m TasksModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tasks, err := m.session.Facade.ListTasks(ctx, m.session.Caller)

		return loadTasksMsg{tasks: tasks, err: err}
	}
}
