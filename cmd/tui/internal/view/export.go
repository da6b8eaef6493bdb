package view

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// ExportModel asks for a directory and writes the ledger statement there.
type ExportModel struct {
	session Session
	taskID  int64
	form    *huh.Form
	dir     *string
}

func NewExportModel(session Session, taskID int64) ExportModel {
	dir := "./exports"

	return ExportModel{
		session: session,
		taskID:  taskID,
		dir:     &dir,
		form: huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Export directory").
					Description("Created if missing").
					Value(&dir),
			),
		).WithWidth(50).WithShowHelp(false),
	}
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) update(msg tea.Msg) (ExportModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, func() tea.Msg { return ledgerDoneMsg{status: "Export cancelled"} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.exportCmd(*m.dir)
}

func (m ExportModel) View() string {
	return m.form.View()
}

func (m ExportModel) exportCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var buf bytes.Buffer

		name, err := m.session.Facade.ExportLedger(ctx, m.session.Caller, m.taskID, &buf)
		if err != nil {
			return ledgerDoneMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ledgerDoneMsg{err: fmt.Errorf("failed to create %s: %w", dir, err)}
		}

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
			return ledgerDoneMsg{err: fmt.Errorf("failed to write %s: %w", path, err)}
		}

		return ledgerDoneMsg{status: "Exported to " + path}
	}
}
