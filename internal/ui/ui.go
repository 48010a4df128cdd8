package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskpad/internal/config"
	"taskpad/internal/storage"
	"taskpad/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeTag
	modePriority
	modeSubtasks
	modeSubtaskAdd
)

type Model struct {
	store   *task.Store
	sorter  *task.Sorter
	sel     *task.Selection
	persist task.Persister
	cfg     config.Config

	visible   []task.Todo
	cursor    int
	subCursor int
	mode      mode
	input     textinput.Model
	status    string
	filters   task.Filters
	dark      bool

	confirmDel bool
	pendingDel []string
	editID     string
}

func Run(store *task.Store, sorter *task.Sorter, persist task.Persister, cfg config.Config) error {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:   store,
		sorter:  sorter,
		sel:     task.NewSelection(),
		persist: persist,
		cfg:     cfg,
		input:   ti,
		mode:    modeList,
		status:  "Press 'a' to add, space to toggle, 'v' to select.",
		filters: task.Filters{Status: defaultStatus(cfg.DefaultFilter)},
		dark:    loadTheme(persist),
	}
	m.refresh()

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func defaultStatus(v string) task.Status {
	switch task.Status(strings.ToLower(v)) {
	case task.StatusActive:
		return task.StatusActive
	case task.StatusCompleted:
		return task.StatusCompleted
	}
	return task.StatusAll
}

func loadTheme(p task.Persister) bool {
	var theme string
	if p.Load(storage.SlotTheme, &theme) {
		return theme == "dark"
	}
	return false
}

func (m *Model) saveTheme() {
	theme := "light"
	if m.dark {
		theme = "dark"
	}
	m.persist.Save(storage.SlotTheme, theme)
}

// refresh recomputes the rendered sequence from the store: filter, then
// sort, then clamp the cursor into the new list.
func (m *Model) refresh() {
	m.visible = m.sorter.Sort(task.Filter(m.store.Todos(), m.filters))
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

// resetView is refresh plus dropping the selection; used whenever the
// filtered view changes shape and stale selections would mislead.
func (m *Model) resetView() {
	m.sel.Clear()
	m.refresh()
}

func (m Model) current() (task.Todo, bool) {
	if len(m.visible) == 0 {
		return task.Todo{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

// actionIDs returns the ids a bulk-style action applies to: the
// selection when non-empty, otherwise the cursor todo.
func (m Model) actionIDs() []string {
	if m.sel.Count() > 0 {
		return m.sel.IDs()
	}
	if t, ok := m.current(); ok {
		return []string{t.ID}
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd, modeEdit, modeSearch, modeTag, modeSubtaskAdd:
		return m.updateInputMode(key, msg)
	case modePriority:
		return m.updatePriorityMode(key)
	case modeSubtasks:
		return m.updateSubtaskMode(key)
	}
	return m.updateListMode(key)
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		prev := m.mode
		m.leaveInput()
		if prev == modeSearch {
			m.filters.Search = ""
			m.resetView()
		}
		if prev == modeSubtaskAdd {
			m.mode = modeSubtasks
		}
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		return m.commitInput()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.mode == modeSearch {
			m.filters.Search = m.input.Value()
			m.resetView()
		}
		return m, cmd
	}
}

func (m Model) commitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAdd:
		if value == "" {
			m.status = "Title cannot be empty"
			return m, nil
		}
		created := m.store.Add(value, task.AddOptions{})
		m.leaveInput()
		m.refresh()
		m.moveCursorTo(created.ID)
		m.status = "Added task"
	case modeEdit:
		if value == "" {
			m.status = "Title cannot be empty"
			return m, nil
		}
		m.store.Update(m.editID, task.TodoUpdate{Title: &value})
		m.leaveInput()
		m.refresh()
		m.status = "Renamed task"
	case modeSearch:
		m.filters.Search = value
		m.leaveInput()
		m.resetView()
		if value == "" {
			m.status = "Search cleared"
		} else {
			m.status = fmt.Sprintf("Searching %q", value)
		}
	case modeTag:
		if value == "" {
			m.status = "Tag name cannot be empty"
			return m, nil
		}
		tag := parseTag(value)
		ids := m.actionIDs()
		m.store.BulkAddTag(ids, tag)
		m.leaveInput()
		m.refresh()
		m.status = fmt.Sprintf("Tagged %d task(s) with %q", len(ids), tag.Name)
	case modeSubtaskAdd:
		if value == "" {
			m.status = "Subtask cannot be empty"
			return m, nil
		}
		if t, ok := m.current(); ok {
			m.store.AddSubtask(t.ID, value)
			m.refresh()
			if cur, ok := m.current(); ok {
				m.subCursor = clampCursor(len(cur.Subtasks)-1, len(cur.Subtasks))
			}
			m.status = "Added subtask"
		}
		m.leaveInput()
		m.mode = modeSubtasks
	}
	return m, nil
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) enterInput(newMode mode, placeholder, value string) {
	m.mode = newMode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// parseTag builds a tag from "name" or "name:color" input. The tag id
// is the lowercased name, so tagging the same name twice stays
// idempotent across bulk applications.
func parseTag(value string) task.Tag {
	name, color := value, ""
	if i := strings.LastIndex(value, ":"); i > 0 {
		name, color = strings.TrimSpace(value[:i]), strings.TrimSpace(value[i+1:])
	}
	return task.Tag{
		ID:    strings.ToLower(name),
		Name:  name,
		Color: task.NormalizeTagColor(color),
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.visible) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.visible))
		}
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case m.cfg.Keys.MoveDown:
		return m.moveCurrent(+1)
	case m.cfg.Keys.MoveUp:
		return m.moveCurrent(-1)
	case m.cfg.Keys.Add:
		m.enterInput(modeAdd, "Task title", "")
		m.status = "Add mode: type a title and press Enter"
	case m.cfg.Keys.Edit:
		if t, ok := m.current(); ok {
			m.editID = t.ID
			m.enterInput(modeEdit, "Task title", t.Title)
			m.status = "Edit title, Enter to save"
		}
	case m.cfg.Keys.Search:
		m.enterInput(modeSearch, "Search", m.filters.Search)
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case m.cfg.Keys.Toggle:
		if t, ok := m.current(); ok {
			m.store.Toggle(t.ID)
			m.refresh()
			m.status = "Toggled task"
		}
	case m.cfg.Keys.Delete:
		ids := m.actionIDs()
		if len(ids) == 0 {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = ids
		if len(ids) == 1 {
			if t, ok := m.current(); ok && m.sel.Count() == 0 {
				m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
				return m, nil
			}
		}
		m.status = fmt.Sprintf("Delete %d task(s)? y/n", len(ids))
	case m.cfg.Keys.BulkDelete:
		if m.sel.Count() == 0 {
			m.status = "Nothing selected"
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = m.sel.IDs()
		m.status = fmt.Sprintf("Delete %d task(s)? y/n", len(m.pendingDel))
	case m.cfg.Keys.Filter:
		m.filters.Status = nextStatus(m.filters.Status)
		m.resetView()
		m.status = "Filter: " + string(m.filters.Status)
	case m.cfg.Keys.PriorityFilter:
		m.filters.Priority = nextPriorityFilter(m.filters.Priority)
		m.resetView()
		m.status = "Priority filter: " + priorityFilterLabel(m.filters.Priority)
	case m.cfg.Keys.Sort:
		pref := m.sorter.Preference()
		m.sorter.SetSortBy(nextSortBy(pref.SortBy))
		m.refresh()
		m.status = "Sort: " + string(m.sorter.Preference().SortBy)
	case m.cfg.Keys.SortDirection:
		pref := m.sorter.Preference()
		if pref.SortDirection == task.Asc {
			m.sorter.SetDirection(task.Desc)
		} else {
			m.sorter.SetDirection(task.Asc)
		}
		m.refresh()
		m.status = "Direction: " + string(m.sorter.Preference().SortDirection)
	case m.cfg.Keys.Select:
		if t, ok := m.current(); ok {
			m.sel.Toggle(t.ID)
			m.cursor = clampCursor(m.cursor+1, len(m.visible))
			m.status = fmt.Sprintf("%d selected", m.sel.Count())
		}
	case m.cfg.Keys.SelectAll:
		ids := make([]string, len(m.visible))
		for i, t := range m.visible {
			ids[i] = t.ID
		}
		m.sel.SelectAll(ids)
		m.status = fmt.Sprintf("%d selected", m.sel.Count())
	case m.cfg.Keys.ClearSelection:
		m.sel.Clear()
		m.status = "Selection cleared"
	case m.cfg.Keys.BulkComplete:
		ids := m.actionIDs()
		if len(ids) == 0 {
			return m, nil
		}
		m.store.BulkComplete(ids)
		m.sel.Clear()
		m.refresh()
		m.status = fmt.Sprintf("Completed %d task(s)", len(ids))
	case m.cfg.Keys.BulkPriority:
		if len(m.actionIDs()) == 0 {
			return m, nil
		}
		m.mode = modePriority
		m.status = "Priority: h)igh m)edium l)ow n)one, Esc to cancel"
	case m.cfg.Keys.BulkTag:
		if len(m.actionIDs()) == 0 {
			return m, nil
		}
		m.enterInput(modeTag, "name or name:color", "")
		m.status = "Tag: name or name:color (" + strings.Join(task.TagColors, " ") + ")"
	case m.cfg.Keys.Subtasks:
		if _, ok := m.current(); ok {
			m.mode = modeSubtasks
			m.subCursor = 0
			m.status = "Subtasks: a add, space toggle, d delete, Esc back"
		}
	case m.cfg.Keys.Theme:
		m.dark = !m.dark
		m.saveTheme()
		if m.dark {
			m.status = "Theme: dark"
		} else {
			m.status = "Theme: light"
		}
	}
	return m, nil
}

// moveCurrent swaps the cursor todo with its neighbor in the visible
// list via the store's reorder, which renumbers the whole collection.
// Only meaningful under custom sort; under other modes the displayed
// order is unaffected, so it is refused.
func (m Model) moveCurrent(delta int) (tea.Model, tea.Cmd) {
	if m.sorter.Preference().SortBy != task.SortCustom {
		m.status = "Reorder needs custom sort"
		return m, nil
	}
	t, ok := m.current()
	if !ok {
		return m, nil
	}
	target := m.cursor + delta
	if target < 0 || target >= len(m.visible) {
		return m, nil
	}
	m.store.Reorder(t.ID, m.visible[target].ID)
	m.refresh()
	m.moveCursorTo(t.ID)
	m.status = "Moved task"
	return m, nil
}

func (m *Model) moveCursorTo(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) updatePriorityMode(key string) (tea.Model, tea.Cmd) {
	var p task.Priority
	switch key {
	case "h":
		p = task.PriorityHigh
	case "m":
		p = task.PriorityMedium
	case "l":
		p = task.PriorityLow
	case "n":
		p = task.PriorityNone
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.status = "Cancelled"
		return m, nil
	default:
		return m, nil
	}
	ids := m.actionIDs()
	m.store.BulkSetPriority(ids, p)
	m.mode = modeList
	m.refresh()
	m.status = fmt.Sprintf("Priority %s on %d task(s)", priorityLabel(p), len(ids))
	return m, nil
}

func (m Model) updateSubtaskMode(key string) (tea.Model, tea.Cmd) {
	t, ok := m.current()
	if !ok {
		m.mode = modeList
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Cancel, m.cfg.Keys.Quit:
		m.mode = modeList
		m.status = ""
	case m.cfg.Keys.Down, "down":
		m.subCursor = clampCursor(m.subCursor+1, len(t.Subtasks))
	case m.cfg.Keys.Up, "up":
		if m.subCursor > 0 {
			m.subCursor = clampCursor(m.subCursor-1, len(t.Subtasks))
		}
	case m.cfg.Keys.Add:
		m.enterInput(modeSubtaskAdd, "Subtask", "")
		m.status = "Add subtask, Enter to save"
	case m.cfg.Keys.Toggle:
		if len(t.Subtasks) > 0 {
			sub := t.Subtasks[clampCursor(m.subCursor, len(t.Subtasks))]
			done := !sub.Completed
			m.store.UpdateSubtask(t.ID, sub.ID, task.SubtaskUpdate{Completed: &done})
			m.refresh()
		}
	case m.cfg.Keys.Delete:
		if len(t.Subtasks) > 0 {
			sub := t.Subtasks[clampCursor(m.subCursor, len(t.Subtasks))]
			m.store.DeleteSubtask(t.ID, sub.ID)
			m.refresh()
			if cur, ok := m.current(); ok {
				m.subCursor = clampCursor(m.subCursor, len(cur.Subtasks))
			}
			m.status = "Deleted subtask"
		}
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		n := len(m.pendingDel)
		m.store.BulkDelete(m.pendingDel)
		m.sel.Clear()
		m.confirmDel = false
		m.pendingDel = nil
		m.refresh()
		m.status = fmt.Sprintf("Deleted %d task(s)", n)
		return m, nil
	default:
		return m, nil
	}
}

func nextStatus(s task.Status) task.Status {
	switch s {
	case task.StatusAll:
		return task.StatusActive
	case task.StatusActive:
		return task.StatusCompleted
	}
	return task.StatusAll
}

func nextPriorityFilter(p *task.Priority) *task.Priority {
	order := []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow, task.PriorityNone}
	if p == nil {
		return &order[0]
	}
	for i := range order {
		if order[i] == *p && i+1 < len(order) {
			return &order[i+1]
		}
	}
	return nil
}

func priorityFilterLabel(p *task.Priority) string {
	if p == nil {
		return "all"
	}
	return priorityLabel(*p)
}

func priorityLabel(p task.Priority) string {
	if p == task.PriorityNone {
		return "none"
	}
	return string(p)
}

func nextSortBy(s task.SortBy) task.SortBy {
	switch s {
	case task.SortCustom:
		return task.SortDate
	case task.SortDate:
		return task.SortPriority
	case task.SortPriority:
		return task.SortAlpha
	}
	return task.SortCustom
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func priorityMarker(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "!!!"
	case task.PriorityMedium:
		return "!!"
	case task.PriorityLow:
		return "!"
	}
	return ""
}

type styles struct {
	title    lipgloss.Style
	done     lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	dim      lipgloss.Style
	priority lipgloss.Style
	due      lipgloss.Style
}

var tagPalette = map[string]lipgloss.Color{
	"red":    lipgloss.Color("1"),
	"orange": lipgloss.Color("208"),
	"yellow": lipgloss.Color("3"),
	"green":  lipgloss.Color("2"),
	"blue":   lipgloss.Color("4"),
	"indigo": lipgloss.Color("63"),
	"purple": lipgloss.Color("5"),
	"pink":   lipgloss.Color("213"),
}

func newStyles(dark bool) styles {
	dim := lipgloss.Color("245")
	if dark {
		dim = lipgloss.Color("240")
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		done:     lipgloss.NewStyle().Strikethrough(true).Foreground(dim),
		cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		dim:      lipgloss.NewStyle().Foreground(dim),
		priority: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		due:      lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

func renderTag(t task.Tag) string {
	color, ok := tagPalette[t.Color]
	if !ok {
		color = tagPalette[task.TagColors[0]]
	}
	return lipgloss.NewStyle().Foreground(color).Render("#" + t.Name)
}

func (m Model) View() string {
	st := newStyles(m.dark)
	var b strings.Builder

	b.WriteString(st.title.Render("Taskpad"))
	b.WriteString(st.dim.Render(fmt.Sprintf("  %s", m.viewSummary())))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		if m.store.Len() == 0 {
			b.WriteString(st.dim.Render("No tasks yet. Press 'a' to add one."))
		} else {
			b.WriteString(st.dim.Render("No tasks match the current filters."))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderList(st))
	}

	b.WriteString("\n---\n")

	if m.mode == modeSubtasks || m.mode == modeSubtaskAdd {
		b.WriteString(m.renderSubtaskPanel(st))
	} else {
		b.WriteString(m.renderDetailPanel(st))
	}

	switch m.mode {
	case modeAdd, modeEdit, modeSearch, modeTag, modeSubtaskAdd:
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(st.dim.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) viewSummary() string {
	pref := m.sorter.Preference()
	parts := []string{
		"filter:" + string(m.filters.Status),
		"priority:" + priorityFilterLabel(m.filters.Priority),
		fmt.Sprintf("sort:%s/%s", pref.SortBy, pref.SortDirection),
	}
	if m.sel.Count() > 0 {
		parts = append(parts, fmt.Sprintf("selected:%d", m.sel.Count()))
	}
	if m.dark {
		parts = append(parts, "dark")
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderList(st styles) string {
	var b strings.Builder
	for i, t := range m.visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = st.cursor.Render(">")
		}

		mark := " "
		if m.sel.IsSelected(t.ID) {
			mark = st.selected.Render("*")
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		title := t.Title
		if t.Completed {
			title = st.done.Render(title)
		}

		b.WriteString(fmt.Sprintf("%s%s %s %s", cursor, mark, checkbox, title))

		if p := priorityMarker(t.Priority); p != "" {
			b.WriteString(" " + st.priority.Render(p))
		}
		if due := formatDue(t.DueDate); due != "" {
			b.WriteString(" " + st.due.Render("due:"+due))
		}
		for _, tag := range t.Tags {
			b.WriteString(" " + renderTag(tag))
		}
		if n := len(t.Subtasks); n > 0 {
			done := 0
			for _, sub := range t.Subtasks {
				if sub.Completed {
					done++
				}
			}
			b.WriteString(st.dim.Render(fmt.Sprintf(" [%d/%d]", done, n)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetailPanel(st styles) string {
	t, ok := m.current()
	if !ok {
		return st.dim.Render("No task selected")
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title    : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Done     : %t\n", t.Completed))
	b.WriteString(fmt.Sprintf("Priority : %s\n", priorityLabel(t.Priority)))
	due := formatDue(t.DueDate)
	if due == "" {
		due = "(none)"
	}
	b.WriteString(fmt.Sprintf("Due      : %s\n", due))
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = renderTag(tag)
	}
	if len(names) == 0 {
		names = []string{"(none)"}
	}
	b.WriteString(fmt.Sprintf("Tags     : %s\n", strings.Join(names, " ")))
	b.WriteString(fmt.Sprintf("Created  : %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Subtasks : %d (press %s)\n", len(t.Subtasks), m.cfg.Keys.Subtasks))
	return b.String()
}

func (m Model) renderSubtaskPanel(st styles) string {
	t, ok := m.current()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString("Subtasks of " + st.title.Render(t.Title) + "\n")
	if len(t.Subtasks) == 0 {
		b.WriteString(st.dim.Render("(none — press 'a' to add)"))
		b.WriteString("\n")
	}
	for i, sub := range t.Subtasks {
		cursor := " "
		if i == m.subCursor && m.mode == modeSubtasks {
			cursor = st.cursor.Render(">")
		}
		checkbox := "[ ]"
		if sub.Completed {
			checkbox = "[x]"
		}
		text := sub.Text
		if sub.Completed {
			text = st.done.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox, text))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s search • %s/%s filter • %s/%s sort • %s select • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Toggle, k.Delete, k.Search, k.Filter, k.PriorityFilter, k.Sort, k.SortDirection, k.Select, k.Quit)
}
