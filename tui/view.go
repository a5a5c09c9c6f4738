package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"dashtodo/model"
)

const (
	clockLayout = "15:04:05"
	dateLayout  = "Monday, January 2, 2006"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	clockStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dropStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	selected    = lipgloss.Color("229")
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	viewW := m.viewportWidth()
	header := m.renderHeader(viewW)

	panelH := m.height - 6
	if panelH < 8 {
		panelH = 8
	}
	innerH := panelH - 2

	var body string
	if m.view.Locked {
		body = m.renderLoginPanel(viewW-2, innerH)
	} else {
		const paneGap = 1
		leftW, rightW := m.paneWidths(viewW-2, paneGap)
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.renderSummaryPanel(leftW, innerH),
			lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│"),
			m.renderTasksPanel(rightW, innerH),
		)
	}

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal || m.mode == modeLogin {
		frameColor = lipgloss.Color("39")
	}
	if m.mode == modeDrag {
		frameColor = lipgloss.Color("220")
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(viewW - 2).
		Height(panelH).
		Render(body)

	parts := []string{header, panes, m.renderFooter(viewW)}
	if prompt := m.renderPrompt(viewW); prompt != "" {
		parts = append(parts, prompt)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader(width int) string {
	left := titleStyle.Render("dashtodo")
	if greeting := m.auth.Greeting(m.clock); greeting != "" {
		left += mutedStyle.Render("  " + greeting)
	}
	right := clockStyle.Render(m.clock.Format(clockLayout)) + mutedStyle.Render("  "+m.clock.Format(dateLayout))

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

func (m *Model) renderLoginPanel(width, height int) string {
	h := m.auth.Helper()
	helper := mutedStyle.Render(h.Text)
	if h.IsError {
		helper = errStyle.Render(h.Text)
	}
	lines := []string{
		titleStyle.Render("Sign in"),
		"",
		"What should we call you?",
		m.input.View(),
		helper,
		"",
		mutedStyle.Render(m.view.Helper.Text),
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

func (m *Model) renderSummaryPanel(width, height int) string {
	v := m.view
	lines := []string{
		panelTitleStyled("Summary", false),
		v.Summary,
		"",
		mutedStyle.Render("filter: ") + filterLabel(v.Filter),
		mutedStyle.Render(fmt.Sprintf("active: %d", v.Counts.Active)),
		mutedStyle.Render(fmt.Sprintf("done:   %d", v.Counts.Done)),
	}
	if v.CanClear {
		lines = append(lines, "", mutedStyle.Render("C clears completed"))
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTasksPanel(width, height int) string {
	v := m.view
	lines := make([]string, 0, len(v.Items)+3)
	lines = append(lines, panelTitleStyled("Tasks: "+filterLabel(v.Filter), m.mode != modeLogin))

	if len(v.Items) == 0 {
		lines = append(lines, mutedStyle.Render(v.Empty))
	}
	for i, it := range v.Items {
		if it.DropHint == model.Before {
			lines = append(lines, dropStyle.Render("  ── drop here ──"))
		}
		lines = append(lines, m.renderItem(i, it, width))
		if it.DropHint == model.After {
			lines = append(lines, dropStyle.Render("  ── drop here ──"))
		}
	}
	if v.DropAtEnd {
		lines = append(lines, dropStyle.Render("  ── drop at end ──"))
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderItem(i int, it model.Item, width int) string {
	cursor := " "
	if i == m.cursor {
		cursor = "▸"
	}
	check := "[ ]"
	if it.Done {
		check = "[x]"
	}
	marker := " "
	switch {
	case it.Dragging:
		marker = "≡"
	case !it.Draggable:
		marker = "·"
	}

	cursorStyle := lipgloss.NewStyle()
	textStyle := lipgloss.NewStyle()
	if it.Done {
		textStyle = textStyle.Faint(true)
	}
	if i == m.cursor {
		cursorStyle = cursorStyle.Bold(true).Foreground(selected)
		textStyle = textStyle.Bold(true).Foreground(selected)
	}

	text := truncateRunes(it.Text, width-10)
	if it.Editing && m.mode == modeEdit {
		text = m.input.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		cursorStyle.Render(cursor+" "),
		marker+" ",
		check+" ",
		textStyle.Render(text),
	)
}

func (m *Model) renderPrompt(width int) string {
	var line string
	switch m.mode {
	case modeAdd:
		line = "New task: " + m.input.View()
	case modeConfirmClear:
		line = fmt.Sprintf("Remove %d completed tasks? [y/N]", m.view.Counts.Done)
	default:
		return ""
	}
	return promptStyle.Width(width).Render(line)
}

func (m *Model) renderFooter(width int) string {
	left := strings.TrimSpace(m.status)
	isErr := m.statusErr
	if left == "" {
		left = m.view.Helper.Text
		isErr = m.view.Helper.IsError
	}
	style := okStyle
	if isErr {
		style = errStyle
	}

	var right string
	switch m.mode {
	case modeAdd, modeEdit, modeLogin:
		right = m.help.View(inputKeys{m.keys})
	case modeDrag:
		right = m.help.View(dragKeys{m.keys})
	default:
		right = m.help.View(m.keys)
	}
	if m.showHelp {
		return style.Render(left) + "\n" + right
	}

	rightW := lipgloss.Width(right)
	leftW := utf8.RuneCountInString(left)
	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = truncateRunes(left, maxLeft)
		leftW = utf8.RuneCountInString(left)
	}
	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}
	return style.Render(left) + strings.Repeat(" ", padding) + right
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// One column is kept free so the right border does not wrap in some
	// terminals.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 20, 30
	}
	if gap < 0 {
		gap = 0
	}

	minLeft := 18
	minRight := 30
	if total < minLeft+minRight+gap {
		left := total / 3
		if left < 12 {
			left = 12
		}
		right := total - left - gap
		if right < 12 {
			right = 12
			left = total - right - gap
			if left < 10 {
				left = 10
			}
		}
		return left, right
	}

	left := total / 4
	if left < 22 {
		left = 22
	}
	if left > 30 {
		left = 30
	}

	right := total - left - gap
	if right < minRight {
		right = minRight
		left = total - right - gap
	}
	if left < minLeft {
		left = minLeft
		right = total - left - gap
	}
	return left, right
}

func panelTitleStyled(title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	text := base.Foreground(selected).Render(title)
	marker := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("*")
	return lipgloss.JoinHorizontal(lipgloss.Left, text, " ", marker)
}

func filterLabel(f model.Filter) string {
	switch f {
	case model.FilterActive:
		return "active"
	case model.FilterDone:
		return "done"
	default:
		return "all"
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
