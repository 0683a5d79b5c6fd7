package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/litescript/ls-trails/internal/scene"
	"github.com/litescript/ls-trails/internal/view"
)

// PanelWidth is the fixed width of the control panel.
const PanelWidth = 36

// coarseSteps is how many animation steps a shifted scrub key moves.
const coarseSteps = 36

// panelItem identifies a focusable control.
type panelItem int

const (
	itemPlay panelItem = iota
	itemScrub
	itemMode
	itemManual
	itemLon
	itemLat
	itemZoom
	itemPitch
	itemFly
	itemParis
	itemReset
	itemCount
)

var inputLabels = [...]string{"Lon", "Lat", "Zoom", "Pitch"}

// sparklineBlocks are the block characters for the activity strip (0 = lowest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// PanelModel is the control panel: playback, day/night mode and the
// custom location form.
type PanelModel struct {
	width    int
	height   int
	selected panelItem
	inputs   [4]textinput.Model
	focused  bool

	frame    scene.Frame
	activity []float64
	errMsg   string
}

// NewPanelModel creates a panel whose location fields show initial.
func NewPanelModel(initial view.State) PanelModel {
	in := view.InputFor(initial)
	values := [4]string{in.Longitude, in.Latitude, in.Zoom, in.Pitch}

	var inputs [4]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 16
		ti.Width = 14
		ti.Placeholder = strings.ToLower(inputLabels[i])
		ti.SetValue(values[i])
		inputs[i] = ti
	}

	return PanelModel{
		inputs: inputs,
	}
}

// SetSize updates the panel height.
func (m PanelModel) SetSize(width, height int) PanelModel {
	m.width = width
	m.height = height
	return m
}

// SetFrame updates the panel with the latest scene frame.
func (m PanelModel) SetFrame(f scene.Frame) PanelModel {
	m.frame = f
	// Leaving auto mode may reveal the manual toggle; entering it hides it.
	if m.selected == itemManual && f.Mode.Auto {
		m.selected = itemMode
	}
	return m
}

// SetActivity sets the active-trip histogram drawn under the scrubber.
func (m PanelModel) SetActivity(values []float64) PanelModel {
	m.activity = values
	return m
}

// SetError shows a validation error under the location form. Nil clears it.
func (m PanelModel) SetError(err error) PanelModel {
	if err == nil {
		m.errMsg = ""
	} else {
		m.errMsg = err.Error()
	}
	return m
}

// Error returns the message currently shown, if any.
func (m PanelModel) Error() string {
	return m.errMsg
}

// Focus gives the panel keyboard focus.
func (m PanelModel) Focus() (PanelModel, tea.Cmd) {
	m.focused = true
	return m.syncInputFocus()
}

// Blur removes keyboard focus.
func (m PanelModel) Blur() PanelModel {
	m.focused = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m
}

// Selected returns the selected control.
func (m PanelModel) Selected() panelItem {
	return m.selected
}

// Editing reports whether a location field has keyboard focus, in which
// case printable keys belong to the field.
func (m PanelModel) Editing() bool {
	return m.focused && isInput(m.selected)
}

// Input returns the raw text of the location form.
func (m PanelModel) Input() view.CustomInput {
	return view.CustomInput{
		Longitude: m.inputs[0].Value(),
		Latitude:  m.inputs[1].Value(),
		Zoom:      m.inputs[2].Value(),
		Pitch:     m.inputs[3].Value(),
	}
}

func isInput(item panelItem) bool {
	return item >= itemLon && item <= itemPitch
}

func (m PanelModel) visible(item panelItem) bool {
	return item != itemManual || !m.frame.Mode.Auto
}

func (m PanelModel) move(delta int) PanelModel {
	next := m.selected
	for {
		next = panelItem((int(next) + delta + int(itemCount)) % int(itemCount))
		if m.visible(next) {
			break
		}
	}
	m.selected = next
	return m
}

func (m PanelModel) syncInputFocus() (PanelModel, tea.Cmd) {
	var cmd tea.Cmd
	for i := range m.inputs {
		if m.focused && m.selected == itemLon+panelItem(i) {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m, cmd
}

// Update handles panel navigation and control activation. Actions are
// returned as commands producing the Msg types in ui.go.
func (m PanelModel) Update(msg tea.Msg) (PanelModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		// Cursor blink and friends go to the focused field.
		if isInput(m.selected) {
			var cmd tea.Cmd
			i := int(m.selected - itemLon)
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "up":
		m = m.move(-1)
		return m.syncInputFocus()
	case "down":
		m = m.move(1)
		return m.syncInputFocus()
	case "esc":
		if isInput(m.selected) {
			m.selected = itemFly
			return m.syncInputFocus()
		}
		return m, nil
	case "enter":
		return m, m.activate()
	case "left", "right", "shift+left", "shift+right":
		if m.selected == itemScrub {
			steps := 1
			if strings.HasPrefix(key.String(), "shift+") {
				steps = coarseSteps
			}
			if strings.HasSuffix(key.String(), "left") {
				steps = -steps
			}
			return m, func() tea.Msg { return SeekMsg{Steps: steps} }
		}
	case " ":
		if !isInput(m.selected) {
			return m, m.activate()
		}
	}

	if isInput(m.selected) {
		var cmd tea.Cmd
		i := int(m.selected - itemLon)
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m PanelModel) activate() tea.Cmd {
	var out tea.Msg
	switch {
	case m.selected == itemPlay:
		out = TogglePlayMsg{}
	case m.selected == itemMode:
		out = ToggleAutoMsg{}
	case m.selected == itemManual:
		out = ToggleManualMsg{}
	case m.selected == itemFly || isInput(m.selected):
		out = GoToCustomMsg{Input: m.Input()}
	case m.selected == itemParis:
		out = GoToPresetMsg{Name: "paris"}
	case m.selected == itemReset:
		out = ResetViewMsg{}
	default:
		return nil
	}
	return func() tea.Msg { return out }
}

// View renders the panel.
func (m PanelModel) View() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	inner := PanelWidth - 4

	b.WriteString(headerStyle.Render("PLAYBACK"))
	b.WriteString("\n")
	playLabel := "▶ Play"
	if m.frame.Playing {
		playLabel = "⏸ Pause"
	}
	b.WriteString(m.renderControl(itemPlay, playLabel))
	b.WriteString("\n")
	b.WriteString(m.renderMarker(itemScrub))
	b.WriteString(renderScrubber(m.frame.Progress, inner-2))
	b.WriteString("\n  ")
	b.WriteString(renderSparkline(m.activity, inner-2, m.frame.Progress))
	b.WriteString("\n  ")
	b.WriteString(valueStyle.Render(m.frame.Time.Format("Mon 02 Jan 15:04:05")))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %3.0f%%", m.frame.Progress*100)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("DAY / NIGHT"))
	b.WriteString("\n")
	mode := "Auto"
	if !m.frame.Mode.Auto {
		mode = "Manual"
	}
	b.WriteString(m.renderControl(itemMode, "Mode: "+mode))
	b.WriteString("\n")
	if m.visible(itemManual) {
		daytime := "☾ Night"
		if m.frame.Mode.ManualDaytime {
			daytime = "☀ Day"
		}
		b.WriteString(m.renderControl(itemManual, "Manual: "+daytime))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Daylight: "))
	b.WriteString(renderBar(m.frame.Daylight, 12))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("LOCATION"))
	b.WriteString("\n")
	for i, label := range inputLabels {
		item := itemLon + panelItem(i)
		b.WriteString(m.renderMarker(item))
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-6s", label)))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString(m.renderControl(itemFly, "Fly"))
	b.WriteString(m.renderControl(itemParis, "Paris"))
	b.WriteString(m.renderControl(itemReset, "Reset"))
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(truncate(m.errMsg, inner)))
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("ACTIVITY"))
	b.WriteString("\n")
	b.WriteString(renderActivityGraph(m.activity, inner))

	return lipgloss.NewStyle().
		Width(PanelWidth).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor()).
		Render(b.String())
}

func (m PanelModel) borderColor() lipgloss.Color {
	if m.focused {
		return lipgloss.Color("205")
	}
	return lipgloss.Color("60")
}

func (m PanelModel) renderMarker(item panelItem) string {
	if m.focused && m.selected == item {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("▸ ")
	}
	return "  "
}

func (m PanelModel) renderControl(item panelItem, label string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	if m.focused && m.selected == item {
		style = style.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7B2CBF")).Bold(true)
	}
	return m.renderMarker(item) + style.Render("["+label+"]") + " "
}

// renderScrubber draws a progress bar with a thumb at progress.
func renderScrubber(progress float64, width int) string {
	if width < 3 {
		return ""
	}
	progress = math.Max(0, math.Min(1, progress))
	pos := int(progress * float64(width-1))

	fillStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	thumbStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	return fillStyle.Render(strings.Repeat("━", pos)) +
		thumbStyle.Render("●") +
		emptyStyle.Render(strings.Repeat("─", width-pos-1))
}

// renderBar draws a fraction as filled and empty blocks.
func renderBar(frac float64, width int) string {
	frac = math.Max(0, math.Min(1, frac))
	filled := int(math.Round(frac * float64(width)))

	fillStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F6C343"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#2A3350"))

	return fillStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}

// resample picks width values from data by nearest index.
func resample(data []float64, width int) []float64 {
	if len(data) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	for i := range out {
		idx := i * len(data) / width
		out[i] = data[idx]
	}
	return out
}

// renderSparkline draws the activity histogram as block characters with
// the column under the playhead highlighted.
func renderSparkline(data []float64, width int, progress float64) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	samples := resample(data, width)
	if len(samples) == 0 {
		return dimStyle.Render(strings.Repeat("·", max(width, 0)))
	}

	peak := 0.0
	for _, v := range samples {
		peak = math.Max(peak, v)
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5A4FCF"))
	headStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	head := int(math.Max(0, math.Min(1, progress)) * float64(width-1))

	var b strings.Builder
	for i, v := range samples {
		ch := ' '
		if peak > 0 && v > 0 {
			level := int(v / peak * float64(len(sparklineBlocks)-1))
			ch = sparklineBlocks[level]
		}
		if i == head {
			b.WriteString(headStyle.Render(string(ch)))
		} else {
			b.WriteString(barStyle.Render(string(ch)))
		}
	}
	return b.String()
}

// renderActivityGraph plots the histogram with asciigraph. It needs at
// least two samples and some variation to be meaningful.
func renderActivityGraph(data []float64, width int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if len(data) < 2 {
		return dimStyle.Render("no trips loaded")
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return dimStyle.Render(fmt.Sprintf("flat at %.0f active trips", hi))
	}

	graphWidth := width - 8
	if graphWidth < 8 {
		graphWidth = 8
	}
	plot := asciigraph.Plot(data,
		asciigraph.Height(4),
		asciigraph.Width(graphWidth),
		asciigraph.Precision(0),
		asciigraph.Caption("active trips"),
	)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF")).Render(plot)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
