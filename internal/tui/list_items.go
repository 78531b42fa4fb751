package tui

import (
	"fmt"
	"strings"
	"time"

	"ralphx-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type projectItem struct {
	project model.Project
}

func (i projectItem) FilterValue() string { return i.project.Name }

func (i projectItem) Title() string { return i.project.Name }

func (i projectItem) Description() string {
	parts := []string{i.project.Path}
	if i.project.Archived {
		parts = append(parts, "archived")
	}
	return strings.Join(parts, "  ")
}

type loopItem struct {
	loop model.Loop
}

func (i loopItem) FilterValue() string { return i.loop.Name }

func (i loopItem) Title() string {
	marker := ""
	if i.loop.Status == model.LoopRunning {
		marker = glyphRunning() + " "
	}
	return marker + i.loop.Name
}

func (i loopItem) Description() string {
	parts := []string{string(i.loop.Status)}
	if i.loop.ItemSource == model.ItemSourceItems {
		parts = append(parts, "item-driven")
	}
	if i.loop.CompletedRuns > 0 {
		parts = append(parts, fmt.Sprintf("%d runs", i.loop.CompletedRuns))
	}
	if !i.loop.UpdatedAt.IsZero() {
		parts = append(parts, formatAgo(i.loop.UpdatedAt, time.Now()))
	}
	return strings.Join(parts, "  ")
}

func glyphRunning() string { return "●" }

func newList(title, help string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// We render our own global header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases (common muscle memory).
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

func selectListItemByID(l *list.Model, id string) {
	for i := 0; i < len(l.Items()); i++ {
		switch it := l.Items()[i].(type) {
		case projectItem:
			if it.project.ID == id {
				l.Select(i)
				return
			}
		case loopItem:
			if it.loop.ID == id {
				l.Select(i)
				return
			}
		}
	}
}
