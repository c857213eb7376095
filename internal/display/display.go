// Package display renders the bedtime form in the terminal using
// Bubble Tea.
//
// Each key press that changes a field is turned into exactly one call
// on the form, which recomputes the bedtime synchronously inside
// Update. The UI therefore blocks for the duration of one inference,
// which for a local model is short.
package display

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/locale"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#bae6fd"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#a1a1aa"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	focusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	bedtimeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#bbf7d0"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	sectionStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(1)

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))
)

// Step sizes for the wake-up field, in minutes.
const (
	wakeStep    = 5
	wakeBigStep = 60
	coffeeBig   = 5
	sleepBig    = 4 // one hour of quarter steps
)

// Form is the state the display edits.
type Form interface {
	State() domain.FormState
	Result() domain.BedtimeResult
	StepWakeUp(ctx context.Context, minutes int) domain.BedtimeResult
	StepSleepAmount(ctx context.Context, n int) domain.BedtimeResult
	StepCoffeeAmount(ctx context.Context, n int) domain.BedtimeResult
}

// UI runs the form program.
type UI struct {
	form    Form
	loc     *locale.Locale
	program *tea.Program
}

// NewUI creates the display. Call Run to start.
func NewUI(form Form, loc *locale.Locale) *UI {
	if loc == nil {
		loc = locale.Default()
	}
	return &UI{form: form, loc: loc}
}

// Run starts the Bubble Tea event loop and blocks until the user quits
// or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	u.program = tea.NewProgram(newModel(ctx, u.form, u.loc), tea.WithContext(ctx))
	_, err := u.program.Run()
	return err
}

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	ctx    context.Context
	form   Form
	loc    *locale.Locale
	keys   keyMap
	help   help.Model
	focus  domain.Field
	result domain.BedtimeResult
	width  int
}

var fields = []domain.Field{domain.FieldWakeUp, domain.FieldSleepAmount, domain.FieldCoffeeAmount}

func newModel(ctx context.Context, form Form, loc *locale.Locale) model {
	return model{
		ctx:    ctx,
		form:   form,
		loc:    loc,
		keys:   defaultKeys(),
		help:   help.New(),
		focus:  domain.FieldWakeUp,
		result: form.Result(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.titleStr())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.focus = m.moveFocus(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.focus = m.moveFocus(1)
			return m, nil
		case key.Matches(msg, m.keys.Inc):
			return m.change(1, false)
		case key.Matches(msg, m.keys.Dec):
			return m.change(-1, false)
		case key.Matches(msg, m.keys.IncBig):
			return m.change(1, true)
		case key.Matches(msg, m.keys.DecBig):
			return m.change(-1, true)
		}
	}
	return m, nil
}

func (m model) moveFocus(delta int) domain.Field {
	idx := 0
	for i, f := range fields {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	return fields[idx]
}

// change applies one step to the focused field. The form recomputes
// only when the value actually changes.
func (m model) change(dir int, big bool) (tea.Model, tea.Cmd) {
	prev := m.result.Revision

	switch m.focus {
	case domain.FieldWakeUp:
		step := wakeStep
		if big {
			step = wakeBigStep
		}
		m.result = m.form.StepWakeUp(m.ctx, dir*step)
	case domain.FieldSleepAmount:
		step := 1
		if big {
			step = sleepBig
		}
		m.result = m.form.StepSleepAmount(m.ctx, dir*step)
	case domain.FieldCoffeeAmount:
		step := 1
		if big {
			step = coffeeBig
		}
		m.result = m.form.StepCoffeeAmount(m.ctx, dir*step)
	}

	if m.result.Revision == prev {
		return m, nil
	}
	return m, tea.SetWindowTitle(m.titleStr())
}

func (m model) titleStr() string {
	return m.loc.Text(locale.KeyTitle) + " — " + m.result.Text
}

func (m model) View() string {
	state := m.form.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.loc.Text(locale.KeyTitle)))
	b.WriteString("\n\n")

	b.WriteString(m.section(locale.KeyWakeHeader, domain.FieldWakeUp, m.loc.FormatTime(state.WakeUp)))
	b.WriteString(m.section(locale.KeySleepHeader, domain.FieldSleepAmount, m.loc.Hours(state.SleepAmount)))
	b.WriteString(m.section(locale.KeyCoffeeHeader, domain.FieldCoffeeAmount, m.loc.Cups(state.CoffeeAmount)))

	bed := bedtimeStyle.Render(m.result.Text)
	if m.result.Failed {
		bed = failureStyle.Render(m.result.Text)
	}
	b.WriteString(headerStyle.Render(m.loc.Text(locale.KeyBedtimeHeader)))
	b.WriteByte('\n')
	b.WriteString(sectionStyle.Render(bed))
	b.WriteByte('\n')

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m model) section(header string, f domain.Field, value string) string {
	marker := "  "
	style := valueStyle
	if m.focus == f {
		marker = "▸ "
		style = focusStyle
	}
	return headerStyle.Render(m.loc.Text(header)) + "\n" +
		sectionStyle.Render(marker+style.Render(value)) + "\n"
}
