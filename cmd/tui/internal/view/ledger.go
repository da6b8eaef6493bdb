package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/smartcity/internal/export"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateAppend
	ledgerStateDelete
	ledgerStateImport
	ledgerStateExport
)

// ledgerInput holds form bindings; huh writes through these pointers, so
// they must survive the model being copied.
type ledgerInput struct {
	amount  string
	confirm bool
}

type LedgerModel struct {
	CommonModel
	session Session
	taskID  int64

	state     ledgerState
	table     table.Model
	statement *transaction.Statement
	drifted   map[int64]transaction.Drift
	form      *huh.Form
	input     *ledgerInput

	importer ImportModel
	exporter ExportModel

	loading bool
	err     error
	status  string
}

func NewLedgerModel(session Session, taskID int64) LedgerModel {
	return LedgerModel{
		session: session,
		taskID:  taskID,
		loading: true,
		input:   &ledgerInput{},
		table: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Created", Width: 24},
			{Title: "Movement", Width: 12},
			{Title: "Balance", Width: 12},
			{Title: "Expected", Width: 12},
		}),
	}
}

func (m LedgerModel) Title() string { return fmt.Sprintf("Ledger of task %d", m.taskID) }

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateAppend, ledgerStateDelete:
		return "Navigate form | Esc: cancel"
	case ledgerStateImport, ledgerStateExport:
		return "Esc: cancel"
	}

	return "Esc: back | a: append | x: delete | i: import | e: export | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.statement = msg.statement
			m.refreshTable()
		}

		return m, nil

	case ledgerDoneMsg:
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
	}

	switch m.state {
	case ledgerStateAppend, ledgerStateDelete:
		return m.updateForm(msg)
	case ledgerStateImport:
		var cmd tea.Cmd
		m.importer, cmd = m.importer.update(msg)

		return m, cmd
	case ledgerStateExport:
		var cmd tea.Cmd
		m.exporter, cmd = m.exporter.update(msg)

		return m, cmd
	}

	return m.updateBrowse(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAppend()
		case "x":
			return m.enterDelete()
		case "i":
			m.state = ledgerStateImport
			m.importer = NewImportModel(m.session, m.taskID)
			m.table.Blur()

			return m, m.importer.Init()
		case "e":
			m.state = ledgerStateExport
			m.exporter = NewExportModel(m.session, m.taskID)
			m.table.Blur()

			return m, m.exporter.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) enterAppend() (tea.Model, tea.Cmd) {
	m.input.amount = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Movement").
				Description("Negative to spend, positive to top up").
				Placeholder("-50.00").
				Value(&m.input.amount).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateAppend
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) enterDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.input.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete transaction %d (%s)?", tx.ID, FormatAmount(tx.TransactionBudget))).
				Description("Later balances are not recomputed.").
				Value(&m.input.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == ledgerStateAppend {
		return m, m.appendCmd()
	}

	return m, m.deleteCmd()
}

func (m LedgerModel) selected() *transaction.Transaction {
	if m.statement == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.statement.Transactions) {
		return nil
	}

	return m.statement.Transactions[idx]
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := activeStyle(export.Summary(m.statement))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	var panel string

	switch m.state {
	case ledgerStateAppend, ledgerStateDelete:
		panel = m.form.View()
	case ledgerStateImport:
		panel = m.importer.View()
	case ledgerStateExport:
		panel = m.exporter.View()
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(60).
			Render(panel))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, content, faintStyle.Render(m.ShortHelp())),
	)
}

func (m *LedgerModel) refreshTable() {
	m.drifted = make(map[int64]transaction.Drift, len(m.statement.Reconciliation.Drifts))
	for _, d := range m.statement.Reconciliation.Drifts {
		m.drifted[d.TransactionID] = d
	}

	rows := make([]table.Row, 0, len(m.statement.Transactions))
	for _, tx := range m.statement.Transactions {
		expected := ""
		if d, ok := m.drifted[tx.ID]; ok {
			expected = driftStyle.Render("! " + FormatAmount(d.Expected))
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(tx.ID, 10),
			tx.CreatedAt.Format(export.TimeLayout),
			FormatAmount(tx.TransactionBudget),
			FormatAmount(tx.CurrentBudget),
			expected,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadLedgerMsg struct {
	statement *transaction.Statement
	err       error
}

// ledgerDoneMsg ends any sub-flow of the ledger screen and triggers a reload.
type ledgerDoneMsg struct {
	status string
	err    error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.session.Facade.AuditLedger(ctx, m.session.Caller, m.taskID)

		return loadLedgerMsg{statement: st, err: err}
	}
}

func (m LedgerModel) appendCmd() tea.Cmd {
	delta, err := ParseAmount(m.input.amount)
	if err != nil {
		return func() tea.Msg { return ledgerDoneMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.session.Facade.AppendTransaction(ctx, m.session.Caller, m.taskID, delta)
		if err != nil {
			return ledgerDoneMsg{err: err}
		}

		return ledgerDoneMsg{status: fmt.Sprintf("Recorded %s, balance %s", FormatAmount(delta), FormatAmount(tx.CurrentBudget))}
	}
}

func (m LedgerModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil || !m.input.confirm {
		return func() tea.Msg { return ledgerDoneMsg{status: "Nothing deleted"} }
	}

	id := tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.session.Facade.DeleteTransaction(ctx, m.session.Caller, id); err != nil {
			return ledgerDoneMsg{err: err}
		}

		return ledgerDoneMsg{status: fmt.Sprintf("Deleted transaction %d", id)}
	}
}
