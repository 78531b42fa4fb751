package tui

import (
	"fmt"
	"strings"
	"time"

	"ralphx-cli/internal/model"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// docModel shows a project's design document rendered as markdown, with an
// optional backups pane for restoring an earlier version.
type docModel struct {
	projectID   string
	projectName string

	doc *model.DesignDoc
	err error
	vp  viewport.Model

	backups     []model.DesignDocBackup
	showBackups bool
	backupIdx   int

	width  int
	height int
}

func newDocModel(projectID, projectName string, width, height int) docModel {
	vp := viewport.New(width-4, height-6)
	return docModel{
		projectID:   projectID,
		projectName: projectName,
		vp:          vp,
		width:       width,
		height:      height,
	}
}

func (d docModel) setDoc(doc *model.DesignDoc, err error) docModel {
	d.err = err
	if err != nil {
		return d
	}
	d.doc = doc
	d.vp.SetContent(renderMarkdown(doc.Body, d.vp.Width))
	d.vp.GotoTop()
	return d
}

func (d docModel) setBackups(backups []model.DesignDocBackup, err error) docModel {
	d.err = err
	if err != nil {
		return d
	}
	d.backups = backups
	d.showBackups = true
	d.backupIdx = 0
	return d
}

func (d docModel) resize(width, height int) docModel {
	d.width = width
	d.height = height
	d.vp.Width = width - 4
	d.vp.Height = height - 6
	if d.doc != nil {
		d.vp.SetContent(renderMarkdown(d.doc.Body, d.vp.Width))
	}
	return d
}

// selectedBackup returns the highlighted backup when the backups pane is open.
func (d docModel) selectedBackup() (model.DesignDocBackup, bool) {
	if !d.showBackups || d.backupIdx < 0 || d.backupIdx >= len(d.backups) {
		return model.DesignDocBackup{}, false
	}
	return d.backups[d.backupIdx], true
}

func (d docModel) update(msg tea.Msg) (docModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && d.showBackups {
		switch key.String() {
		case "up", "k":
			if d.backupIdx > 0 {
				d.backupIdx--
			}
			return d, nil
		case "down", "j":
			if d.backupIdx < len(d.backups)-1 {
				d.backupIdx++
			}
			return d, nil
		}
	}
	var cmd tea.Cmd
	d.vp, cmd = d.vp.Update(msg)
	return d, cmd
}

func (d docModel) view() string {
	title := "Design doc: " + d.projectName

	header := lipgloss.NewStyle().Bold(true).Render(title)
	if d.doc != nil && !d.doc.UpdatedAt.IsZero() {
		header += "  " + styleMuted().Render("updated "+formatAgo(d.doc.UpdatedAt, time.Now()))
	}

	if d.err != nil {
		return header + "\n\n" + lipgloss.NewStyle().Foreground(colorError).Render("error: "+d.err.Error())
	}
	if d.doc == nil {
		return header + "\n\n" + styleMuted().Render("loading…")
	}

	if d.showBackups {
		var lines []string
		lines = append(lines, header, "", "Backups:")
		if len(d.backups) == 0 {
			lines = append(lines, styleMuted().Render("  (none)"))
		}
		for i, b := range d.backups {
			marker := "  "
			if i == d.backupIdx {
				marker = "> "
			}
			lines = append(lines, fmt.Sprintf("%s%s  %s", marker, b.CreatedAt.Format("2006-01-02 15:04"), b.ID))
		}
		lines = append(lines, "", styleMuted().Render("enter: restore   esc: back"))
		return strings.Join(lines, "\n")
	}

	footer := styleMuted().Render("↑/↓: scroll   b: backups   esc: close")
	return strings.Join([]string{header, "", d.vp.View(), "", footer}, "\n")
}
