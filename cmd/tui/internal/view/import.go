package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
)

const importTimeout = 2 * time.Minute

// ImportModel picks a CSV file and appends its movements to a task ledger.
type ImportModel struct {
	session    Session
	taskID     int64
	filePicker filepicker.Model
	importing  bool
}

func NewImportModel(session Session, taskID int64) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{session: session, taskID: taskID, filePicker: fp}
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) update(msg tea.Msg) (ImportModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && !m.importing {
		return m, func() tea.Msg { return ledgerDoneMsg{status: "Import cancelled"} }
	}

	if m.importing {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.importing = true
		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	if m.importing {
		return "Importing..."
	}

	return fmt.Sprintf("Select a ledger or bank CSV:\n\n%s", m.filePicker.View())
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return ledgerDoneMsg{err: fmt.Errorf("failed to open file: %w", err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.session.Facade.ImportTransactions(ctx, m.session.Caller, m.taskID, f)
		if err != nil {
			return ledgerDoneMsg{err: err}
		}

		return ledgerDoneMsg{status: fmt.Sprintf("Imported %d transactions", len(txs))}
	}
}
