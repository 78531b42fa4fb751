package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ralphx-cli/internal/api"
	"ralphx-cli/internal/model"
	"ralphx-cli/internal/store"
	"ralphx-cli/internal/stream"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type view int

const (
	viewProjects view = iota
	viewLoops
	viewLoopDetail
)

type uiMode int

const (
	modeMain uiMode = iota
	modeWizard
	modeConfirm
	modeReady
	modeDoc
)

const (
	refreshInterval = 5 * time.Second
	requestTimeout  = 10 * time.Second
	readyPollEvery  = 2 * time.Second
)

type tickMsg struct{}

type projectsMsg struct {
	projects []model.Project
	stale    bool
	err      error
}

type loopsMsg struct {
	projectID string
	loops     []model.Loop
	stale     bool
	err       error
}

type itemsMsg struct {
	loopID string
	items  []model.WorkItem
	err    error
}

type sessionMsg struct {
	loopID  string
	session *model.IterationSession
	err     error
}

type sessionStartedMsg struct {
	session *model.IterationSession
	err     error
}

type loopCreatedMsg struct {
	loop *model.Loop
	err  error
}

type actionDoneMsg struct {
	note string
	err  error
}

type streamUpdateMsg struct {
	update stream.Update
}

type readyCheckMsg struct {
	check *model.ReadyCheck
	err   error
}

type readyPollMsg struct{ id string }

type docMsg struct {
	doc *model.DesignDoc
	err error
}

type backupsMsg struct {
	backups []model.DesignDocBackup
	err     error
}

type appModel struct {
	deps Deps

	width  int
	height int

	view view
	mode uiMode

	projectsList list.Model
	loopsList    list.Model

	selectedProjectID   string
	selectedProjectName string
	selectedLoopID      string

	loop  *model.Loop
	items []model.WorkItem

	recon *stream.Reconnector
	panel *streamPanel

	wizard  wizardModel
	confirm confirmModel
	ready   readyModel
	doc     docModel

	// offline is set when list data came from the local snapshot cache.
	offline bool
	status  string
	err     error
}

func newAppModel(deps Deps) appModel {
	m := appModel{
		deps: deps,
		view: viewProjects,
	}
	m.projectsList = newList("Projects", "Select a project", []list.Item{})
	m.loopsList = newList("Loops", "Select a loop", []list.Item{})

	// Restore where the user left off; fetches re-validate everything.
	if st, err := store.LoadTUIState(deps.Dir); err == nil && st != nil {
		m.selectedProjectID = st.SelectedProjectID
		m.selectedLoopID = st.SelectedLoopID
		switch st.View {
		case "loops":
			if m.selectedProjectID != "" {
				m.view = viewLoops
			}
		case "loop":
			if m.selectedProjectID != "" && m.selectedLoopID != "" {
				m.view = viewLoopDetail
			}
		}
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchProjectsCmd(), tick()}
	switch m.view {
	case viewLoops:
		cmds = append(cmds, m.fetchLoopsCmd(m.selectedProjectID))
	case viewLoopDetail:
		cmds = append(cmds,
			m.fetchLoopsCmd(m.selectedProjectID),
			m.fetchLoopCmd(m.selectedLoopID),
			m.fetchItemsCmd(m.selectedLoopID),
			m.fetchActiveSessionCmd(m.selectedLoopID))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		if m.mode == modeDoc {
			m.doc = m.doc.resize(m.width, m.height)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tick())

	case projectsMsg:
		return m.onProjects(msg), nil

	case loopsMsg:
		return m.onLoops(msg), nil

	case itemsMsg:
		if msg.loopID == m.selectedLoopID && msg.err == nil {
			m.items = msg.items
		}
		return m, nil

	case sessionMsg:
		return m.onSession(msg)

	case sessionStartedMsg:
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		return m, m.attachStream(*msg.session)

	case loopDetailMsg:
		if msg.loop != nil && msg.loop.ID == m.selectedLoopID {
			m.loop = msg.loop
		}
		return m, nil

	case loopCreatedMsg:
		if msg.err != nil {
			m.status = "create failed: " + msg.err.Error()
			return m, nil
		}
		m.mode = modeMain
		m.status = fmt.Sprintf("created loop %q", msg.loop.Name)
		return m, m.fetchLoopsCmd(m.selectedProjectID)

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = msg.note
		}
		return m, m.refreshCmd()

	case streamUpdateMsg:
		return m.onStreamUpdate(msg.update)

	case readyCheckMsg:
		return m.onReadyCheck(msg)

	case readyPollMsg:
		if m.mode == modeReady && m.ready.check != nil && m.ready.check.ID == msg.id {
			return m, m.getReadyCheckCmd(msg.id)
		}
		return m, nil

	case docMsg:
		if m.mode == modeDoc {
			m.doc = m.doc.setDoc(msg.doc, msg.err)
		}
		return m, nil

	case backupsMsg:
		if m.mode == modeDoc {
			m.doc = m.doc.setBackups(msg.backups, msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m.updateActive(msg)
}

func (m appModel) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	switch m.mode {
	case modeWizard:
		return m.onWizardKey(msg)
	case modeConfirm:
		return m.onConfirmKey(msg)
	case modeReady:
		return m.onReadyKey(msg)
	case modeDoc:
		return m.onDocKey(msg)
	}

	// Don't steal plain letters while a list filter is being typed.
	if m.activeListFiltering() {
		return m.updateActive(msg)
	}

	switch msg.String() {
	case "q":
		m.teardown()
		return m, tea.Quit
	case "r":
		return m, m.refreshCmd()
	case "esc", "backspace":
		return m.goBack()
	case "enter":
		return m.onEnter()
	}

	switch m.view {
	case viewLoops:
		switch msg.String() {
		case "n":
			m.wizard = newWizard(m.selectedProjectID)
			m.mode = modeWizard
			return m, nil
		case "k":
			if it, ok := m.loopsList.SelectedItem().(loopItem); ok {
				m.ready = newReadyModel(it.loop.ID, it.loop.Name)
				m.mode = modeReady
				return m, m.submitReadyCheckCmd(it.loop.ID)
			}
		case "d":
			m.doc = newDocModel(m.selectedProjectID, m.selectedProjectName, m.width, m.height)
			m.mode = modeDoc
			return m, m.fetchDocCmd()
		}
	case viewLoopDetail:
		switch msg.String() {
		case "s":
			if m.loop != nil && (m.panel == nil || m.panel.state.Terminal()) {
				return m, m.startLoopCmd(*m.loop)
			}
		case "c":
			if m.recon != nil && m.panel != nil && !m.panel.state.Terminal() {
				recon := m.recon
				m.confirm = confirmModel{
					title:        "Cancel session",
					body:         "Stop the running session? Progress so far is kept.",
					confirmLabel: "Cancel session",
					action: func() any {
						ctx, cancel := reqCtx()
						defer cancel()
						recon.Cancel(ctx)
						return actionDoneMsg{note: "session cancelled"}
					},
				}
				m.mode = modeConfirm
				return m, nil
			}
		case "R":
			if m.recon != nil && m.panel != nil && m.panel.state == stream.StateLost {
				m.recon.Retry()
				m.panel.state = stream.StateConnecting
				return m, waitForStreamUpdate(m.recon)
			}
		case "k":
			if m.loop != nil {
				m.ready = newReadyModel(m.loop.ID, m.loop.Name)
				m.mode = modeReady
				return m, m.submitReadyCheckCmd(m.loop.ID)
			}
		}
	}

	return m.updateActive(msg)
}

func (m appModel) onWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = modeMain
		return m, nil
	}
	var cmd tea.Cmd
	m.wizard, cmd = m.wizard.update(msg)
	if m.wizard.done {
		req := m.wizard.request()
		return m, m.createLoopCmd(req)
	}
	return m, cmd
}

func (m appModel) onConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.mode = modeMain
		return m, nil
	case "tab", "left", "right":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
		return m, nil
	case "enter", "y":
		if msg.String() == "enter" && m.confirm.focus == confirmFocusCancel {
			m.mode = modeMain
			return m, nil
		}
		action := m.confirm.action
		m.mode = modeMain
		return m, func() tea.Msg { return action() }
	}
	return m, nil
}

func (m appModel) onReadyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = modeMain
		return m, nil
	}
	var cmd tea.Cmd
	var submit bool
	m.ready, cmd, submit = m.ready.update(msg)
	if submit {
		return m, m.answerReadyCheckCmd(m.ready.check.ID, m.ready.answers())
	}
	return m, cmd
}

func (m appModel) onDocKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.doc.showBackups {
			m.doc.showBackups = false
			return m, nil
		}
		m.mode = modeMain
		return m, nil
	case "b":
		if !m.doc.showBackups {
			return m, m.fetchBackupsCmd()
		}
	case "enter":
		if b, ok := m.doc.selectedBackup(); ok {
			backup := b
			deps := m.deps
			projectID := m.doc.projectID
			m.confirm = confirmModel{
				title:        "Restore backup",
				body:         "Overwrite the design doc with the backup from " + backup.CreatedAt.Format("2006-01-02 15:04") + "?",
				confirmLabel: "Restore",
				action: func() any {
					ctx, cancel := reqCtx()
					defer cancel()
					doc, err := deps.Client.RestoreDesignDocBackup(ctx, projectID, backup.ID)
					return docMsg{doc: doc, err: err}
				},
			}
			m.mode = modeConfirm
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.doc, cmd = m.doc.update(msg)
	return m, cmd
}

func (m appModel) onEnter() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewProjects:
		if it, ok := m.projectsList.SelectedItem().(projectItem); ok {
			m.selectedProjectID = it.project.ID
			m.selectedProjectName = it.project.Name
			m.view = viewLoops
			m.saveState()
			return m, m.fetchLoopsCmd(it.project.ID)
		}
	case viewLoops:
		if it, ok := m.loopsList.SelectedItem().(loopItem); ok {
			m.selectedLoopID = it.loop.ID
			loop := it.loop
			m.loop = &loop
			m.items = nil
			m.view = viewLoopDetail
			m.saveState()
			return m, tea.Batch(
				m.fetchLoopCmd(loop.ID),
				m.fetchItemsCmd(loop.ID),
				m.fetchActiveSessionCmd(loop.ID),
			)
		}
	}
	return m, nil
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewLoopDetail:
		m.detachStream()
		m.loop = nil
		m.items = nil
		m.selectedLoopID = ""
		m.view = viewLoops
		m.saveState()
		return m, m.fetchLoopsCmd(m.selectedProjectID)
	case viewLoops:
		m.selectedProjectID = ""
		m.selectedProjectName = ""
		m.view = viewProjects
		m.saveState()
		return m, m.fetchProjectsCmd()
	}
	return m, nil
}

func (m appModel) onProjects(msg projectsMsg) appModel {
	if msg.err != nil {
		m.err = msg.err
		return m
	}
	m.err = nil
	m.offline = msg.stale
	curID := m.selectedProjectID
	var items []list.Item
	for _, p := range msg.projects {
		if p.Archived {
			continue
		}
		if p.ID == m.selectedProjectID {
			m.selectedProjectName = p.Name
		}
		items = append(items, projectItem{project: p})
	}
	m.projectsList.SetItems(items)
	if curID != "" {
		selectListItemByID(&m.projectsList, curID)
	}
	return m
}

func (m appModel) onLoops(msg loopsMsg) appModel {
	if msg.projectID != m.selectedProjectID {
		return m
	}
	if msg.err != nil {
		m.err = msg.err
		return m
	}
	m.err = nil
	m.offline = msg.stale
	curID := m.selectedLoopID
	if curID == "" {
		if it, ok := m.loopsList.SelectedItem().(loopItem); ok {
			curID = it.loop.ID
		}
	}
	var items []list.Item
	for _, l := range msg.loops {
		if l.Archived {
			continue
		}
		items = append(items, loopItem{loop: l})
	}
	m.loopsList.SetItems(items)
	if curID != "" {
		selectListItemByID(&m.loopsList, curID)
	}
	return m
}

func (m appModel) onSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.loopID != m.selectedLoopID || m.view != viewLoopDetail {
		return m, nil
	}
	if msg.err != nil {
		m.status = "session lookup failed: " + msg.err.Error()
		return m, nil
	}
	if msg.session == nil {
		return m, nil
	}
	// Already attached to this session.
	if m.panel != nil && m.panel.session.ID == msg.session.ID {
		return m, nil
	}
	return m, m.attachStream(*msg.session)
}

func (m appModel) onStreamUpdate(u stream.Update) (tea.Model, tea.Cmd) {
	if m.panel == nil || m.recon == nil {
		return m, nil
	}
	m.panel.apply(u)
	if u.State.Terminal() {
		// Leave the reconnector in place so R can retry after a loss; the
		// goroutine has already wound down.
		return m, m.fetchLoopCmd(m.selectedLoopID)
	}
	return m, waitForStreamUpdate(m.recon)
}

func (m appModel) onReadyCheck(msg readyCheckMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeReady {
		return m, nil
	}
	m.ready = m.ready.setCheck(msg.check, msg.err)
	if msg.err == nil && msg.check.Status == model.ReadyAnalyzing {
		id := msg.check.ID
		return m, tea.Tick(readyPollEvery, func(time.Time) tea.Msg { return readyPollMsg{id: id} })
	}
	return m, nil
}

func (m appModel) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeWizard:
		m.wizard, cmd = m.wizard.update(msg)
		return m, cmd
	case modeReady:
		m.ready, cmd, _ = m.ready.update(msg)
		return m, cmd
	case modeDoc:
		m.doc, cmd = m.doc.update(msg)
		return m, cmd
	}
	switch m.view {
	case viewProjects:
		m.projectsList, cmd = m.projectsList.Update(msg)
	case viewLoops:
		m.loopsList, cmd = m.loopsList.Update(msg)
	}
	return m, cmd
}

func (m appModel) activeListFiltering() bool {
	switch m.view {
	case viewProjects:
		return m.projectsList.FilterState() == list.Filtering
	case viewLoops:
		return m.loopsList.FilterState() == list.Filtering
	}
	return false
}

// refreshCmd re-fetches whatever the current view shows.
func (m appModel) refreshCmd() tea.Cmd {
	switch m.view {
	case viewProjects:
		return m.fetchProjectsCmd()
	case viewLoops:
		return m.fetchLoopsCmd(m.selectedProjectID)
	case viewLoopDetail:
		cmds := []tea.Cmd{m.fetchLoopCmd(m.selectedLoopID), m.fetchItemsCmd(m.selectedLoopID)}
		// Only probe for a session while not already streaming; the
		// reconnector owns liveness once attached.
		if m.panel == nil || m.panel.state.Terminal() {
			cmds = append(cmds, m.fetchActiveSessionCmd(m.selectedLoopID))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m appModel) fetchProjectsCmd() tea.Cmd {
	client, cache := m.deps.Client, m.deps.Cache
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		ps, err := client.ListProjects(ctx)
		if err != nil {
			if cached, _, cerr := cache.Projects(ctx); cerr == nil {
				return projectsMsg{projects: cached, stale: true}
			}
			return projectsMsg{err: err}
		}
		_ = cache.PutProjects(ctx, ps)
		return projectsMsg{projects: ps}
	}
}

func (m appModel) fetchLoopsCmd(projectID string) tea.Cmd {
	client, cache := m.deps.Client, m.deps.Cache
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		ls, err := client.ListLoops(ctx, projectID)
		if err != nil {
			if cached, _, cerr := cache.Loops(ctx); cerr == nil {
				var filtered []model.Loop
				for _, l := range cached {
					if l.ProjectID == projectID {
						filtered = append(filtered, l)
					}
				}
				return loopsMsg{projectID: projectID, loops: filtered, stale: true}
			}
			return loopsMsg{projectID: projectID, err: err}
		}
		_ = cache.PutLoops(ctx, ls)
		return loopsMsg{projectID: projectID, loops: ls}
	}
}

func (m appModel) fetchLoopCmd(loopID string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		l, err := client.GetLoop(ctx, loopID)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return loopDetailMsg{loop: l}
	}
}

func (m appModel) fetchItemsCmd(loopID string) tea.Cmd {
	client, cache := m.deps.Client, m.deps.Cache
	projectID := m.selectedProjectID
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		items, err := client.ListItems(ctx, projectID, loopID)
		if err != nil {
			if cached, _, cerr := cache.Items(ctx); cerr == nil {
				var filtered []model.WorkItem
				for _, it := range cached {
					if it.LoopID == loopID {
						filtered = append(filtered, it)
					}
				}
				return itemsMsg{loopID: loopID, items: filtered}
			}
			return itemsMsg{loopID: loopID, err: err}
		}
		_ = cache.PutItems(ctx, items)
		return itemsMsg{loopID: loopID, items: items, err: err}
	}
}

func (m appModel) fetchActiveSessionCmd(loopID string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		sess, err := client.ActiveSession(ctx, loopID)
		return sessionMsg{loopID: loopID, session: sess, err: err}
	}
}

func (m appModel) startLoopCmd(loop model.Loop) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		req := api.StartLoopRequest{Iterations: loop.MaxIterations}
		sess, err := client.StartLoop(ctx, loop.ID, req)
		return sessionStartedMsg{session: sess, err: err}
	}
}

func (m appModel) createLoopCmd(req api.CreateLoopRequest) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		loop, err := client.CreateLoop(ctx, req)
		return loopCreatedMsg{loop: loop, err: err}
	}
}

func (m appModel) submitReadyCheckCmd(loopID string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		check, err := client.SubmitReadyCheck(ctx, loopID)
		return readyCheckMsg{check: check, err: err}
	}
}

func (m appModel) getReadyCheckCmd(id string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		check, err := client.GetReadyCheck(ctx, id)
		return readyCheckMsg{check: check, err: err}
	}
}

func (m appModel) answerReadyCheckCmd(id string, answers []model.ReadyQuestion) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		check, err := client.AnswerReadyCheck(ctx, id, answers)
		return readyCheckMsg{check: check, err: err}
	}
}

func (m appModel) fetchDocCmd() tea.Cmd {
	client := m.deps.Client
	projectID := m.selectedProjectID
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		doc, err := client.GetDesignDoc(ctx, projectID)
		return docMsg{doc: doc, err: err}
	}
}

func (m appModel) fetchBackupsCmd() tea.Cmd {
	client := m.deps.Client
	projectID := m.selectedProjectID
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		backups, err := client.ListDesignDocBackups(ctx, projectID)
		return backupsMsg{backups: backups, err: err}
	}
}

func (m *appModel) attachStream(sess model.IterationSession) tea.Cmd {
	m.detachStream()
	r := stream.New(stream.ClientBackend{Client: m.deps.Client}, sess.ID, stream.WithLogger(m.deps.Log))
	m.recon = r
	p := newStreamPanel(sess)
	m.panel = &p
	r.Connect(0)
	return waitForStreamUpdate(r)
}

func (m *appModel) detachStream() {
	if m.recon != nil {
		m.recon.Stop()
		m.recon = nil
	}
	m.panel = nil
}

// waitForStreamUpdate blocks until the reconnector produces the next update.
// The app stops re-issuing it once a terminal update arrives.
func waitForStreamUpdate(r *stream.Reconnector) tea.Cmd {
	return func() tea.Msg {
		return streamUpdateMsg{update: <-r.Updates()}
	}
}

func (m *appModel) teardown() {
	if m.recon != nil {
		m.recon.Stop()
		m.recon = nil
	}
	m.saveState()
}

func (m *appModel) saveState() {
	viewName := "projects"
	switch m.view {
	case viewLoops:
		viewName = "loops"
	case viewLoopDetail:
		viewName = "loop"
	}
	// Best effort; the TUI works fine without persisted state.
	_ = store.SaveTUIState(m.deps.Dir, &store.TUIState{
		Version:           1,
		View:              viewName,
		SelectedProjectID: m.selectedProjectID,
		SelectedLoopID:    m.selectedLoopID,
	})
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.projectsList.SetSize(w, h)
	m.loopsList.SetSize(w, h)
}

type loopDetailMsg struct{ loop *model.Loop }

func (m appModel) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch m.mode {
	case modeWizard:
		body = m.wizard.view(m.width)
	case modeConfirm:
		body = renderConfirmModal(m.width, m.confirm.title, m.confirm.body, m.confirm.confirmLabel, m.confirm.focus)
	case modeReady:
		body = m.ready.view(m.width)
	case modeDoc:
		body = m.doc.view()
	default:
		switch m.view {
		case viewProjects:
			body = m.projectsList.View()
		case viewLoops:
			body = m.loopsList.View()
		case viewLoopDetail:
			body = m.viewLoopDetail()
		}
	}

	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) renderHeader() string {
	crumbs := []string{"ralphx"}
	if m.selectedProjectName != "" {
		crumbs = append(crumbs, m.selectedProjectName)
	}
	if m.loop != nil {
		crumbs = append(crumbs, m.loop.Name)
	}
	head := lipgloss.NewStyle().Bold(true).Render(strings.Join(crumbs, " › "))
	meta := styleMuted().Render(m.deps.Server)
	if m.offline {
		meta += "  " + lipgloss.NewStyle().Foreground(colorWarn).Render("(offline, cached)")
	}
	return head + "  " + meta
}

func (m appModel) renderFooter() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(colorError).Render("error: " + m.err.Error())
	}
	if m.status != "" {
		return lipgloss.NewStyle().Foreground(colorChromeMutedFg).Render(m.status)
	}
	var help string
	switch m.view {
	case viewProjects:
		help = "enter: open  /: filter  r: refresh  q: quit"
	case viewLoops:
		help = "enter: open  n: new loop  k: ready check  d: design doc  esc: back  q: quit"
	case viewLoopDetail:
		help = "s: start  c: cancel  R: retry  k: ready check  esc: back  q: quit"
	}
	return styleMuted().Render(help)
}

func (m appModel) viewLoopDetail() string {
	bodyHeight := m.height - 6
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	leftWidth := m.width / 3
	if leftWidth < 30 {
		leftWidth = 30
	}
	rightWidth := m.width - leftWidth - 2
	if rightWidth < 30 {
		rightWidth = 30
	}

	left := lipgloss.NewStyle().Width(leftWidth).Height(bodyHeight).
		Render(m.renderLoopInfo(leftWidth))

	var right string
	if m.panel != nil {
		right = m.panel.render(rightWidth, bodyHeight)
	} else {
		right = styleMuted().Render("No active session. Press s to start the loop.")
	}
	right = lipgloss.NewStyle().Width(rightWidth).Height(bodyHeight).Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m appModel) renderLoopInfo(width int) string {
	if m.loop == nil {
		return styleMuted().Render("loading…")
	}
	l := m.loop
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(l.Name))
	lines = append(lines, styleMuted().Render(fmt.Sprintf("status: %s  runs: %d  max: %d",
		l.Status, l.CompletedRuns, l.MaxIterations)))
	if l.ItemSource == model.ItemSourceItems {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Items"))
		if len(m.items) == 0 {
			lines = append(lines, styleMuted().Render("  (none)"))
		}
		for _, it := range m.items {
			mark := " "
			switch it.Status {
			case model.ItemCompleted:
				mark = "✓"
			case model.ItemClaimed:
				mark = "›"
			case model.ItemFailed:
				mark = "✗"
			}
			line := fmt.Sprintf("%s %s", mark, it.Title)
			if xansi.StringWidth(line) > width {
				line = xansi.Cut(line, 0, width)
			}
			lines = append(lines, line)
		}
	}
	if tmpl := strings.TrimSpace(l.PromptTemplate); tmpl != "" {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Template"))
		lines = append(lines, renderMarkdown("```\n"+tmpl+"\n```", width))
	}
	return strings.Join(lines, "\n")
}
