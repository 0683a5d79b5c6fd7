package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-trails/internal/colormap"
	"github.com/litescript/ls-trails/internal/scene"
	"github.com/litescript/ls-trails/internal/view"
)

// CrossfadeDuration is how long the basemap takes to fade between day and
// night once the targets flip.
const CrossfadeDuration = 2500 * time.Millisecond

// Cell size in Web Mercator pixels. Terminal cells are roughly twice as
// tall as they are wide.
const (
	cellW = 8.0
	cellH = 16.0
)

// Pan and rotate increments for keyboard interaction.
const (
	panCols     = 4
	panRows     = 2
	bearingStep = 15.0
	pitchStep   = 5.0
)

// basemap is one palette of the two-theme map.
type basemap struct {
	background colorful.Color
	graticule  colorful.Color
	text       colorful.Color
}

var (
	dayBasemap = basemap{
		background: mustHex("#dfe6ec"),
		graticule:  mustHex("#9aa7b4"),
		text:       mustHex("#2b3440"),
	}
	nightBasemap = basemap{
		background: mustHex("#0b1021"),
		graticule:  mustHex("#2a3350"),
		text:       mustHex("#a9b4d0"),
	}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// flight is a fly-to animation in progress.
type flight struct {
	from, to view.State
	start    time.Time
	duration time.Duration
	easing   view.Easing
}

// MapModel renders the trail layer over a day/night basemap and animates
// camera transitions.
type MapModel struct {
	width  int
	height int
	frame  scene.Frame

	// Camera as currently drawn; trails behind the controller's target
	// while a flight is in progress.
	display view.State
	flight  *flight

	// Eased basemap mix, 1 = full day.
	dayLevel  float64
	lastFrame time.Time
	started   bool
}

// NewMapModel creates a map view showing initial.
func NewMapModel(initial view.State) MapModel {
	return MapModel{
		display: initial.Camera(),
	}
}

// SetSize updates the viewport size.
func (m MapModel) SetSize(width, height int) MapModel {
	m.width = width
	m.height = height
	return m
}

// Display returns the camera as currently drawn.
func (m MapModel) Display() view.State {
	return m.display
}

// Flying reports whether a fly-to animation is running.
func (m MapModel) Flying() bool {
	return m.flight != nil
}

// DayLevel returns the eased basemap mix.
func (m MapModel) DayLevel() float64 {
	return m.dayLevel
}

// SetFrame applies a new scene frame at wall time now. It starts a flight
// when the frame carries a transition and reports whether a flight landed
// on this frame.
func (m MapModel) SetFrame(f scene.Frame, now time.Time) (MapModel, bool) {
	m.frame = f

	if !m.started {
		m.started = true
		m.dayLevel = f.Crossfade.Day
		m.lastFrame = now
	}
	m.dayLevel = approach(m.dayLevel, f.Crossfade.Day, float64(now.Sub(m.lastFrame))/float64(CrossfadeDuration))
	m.lastFrame = now

	if f.Transition != nil {
		easing := f.Transition.Easing
		if easing == nil {
			easing = view.FlyTo
		}
		m.flight = &flight{
			from:     m.display,
			to:       f.View.Camera(),
			start:    now,
			duration: f.Transition.Duration,
			easing:   easing,
		}
	}

	if m.flight == nil {
		m.display = f.View.Camera()
		return m, false
	}

	frac := 1.0
	if m.flight.duration > 0 {
		frac = float64(now.Sub(m.flight.start)) / float64(m.flight.duration)
	}
	if frac >= 1 {
		m.display = m.flight.to
		m.flight = nil
		return m, true
	}
	m.display = view.Interpolate(m.flight.from, m.flight.to, frac, m.flight.easing)
	return m, false
}

// approach moves v toward target by at most step.
func approach(v, target, step float64) float64 {
	if step < 0 {
		step = 0
	}
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}

// Update handles camera keys. Every interaction proposes the new camera to
// the scene and cancels any flight in progress.
func (m MapModel) Update(msg tea.Msg) (MapModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	next := m.display
	world := worldSize(next.Zoom)
	lonStep := panCols * cellW * 360 / world
	latStep := panRows * cellH * 360 / world * math.Cos(next.Latitude*math.Pi/180)

	switch key.String() {
	case "left", "h":
		next.Longitude -= lonStep
	case "right", "l":
		next.Longitude += lonStep
	case "up", "k":
		next.Latitude += latStep
	case "down", "j":
		next.Latitude -= latStep
	case "+", "=":
		next.Zoom++
	case "-", "_":
		next.Zoom--
	case "[":
		next.Bearing -= bearingStep
	case "]":
		next.Bearing += bearingStep
	case "{":
		next.Pitch -= pitchStep
	case "}":
		next.Pitch += pitchStep
	default:
		return m, nil
	}

	next = next.Normalized()
	m.display = next
	m.flight = nil
	return m, func() tea.Msg { return ProposeViewMsg{State: next} }
}

// worldSize is the Web Mercator world width in pixels at zoom.
func worldSize(zoom float64) float64 {
	return 256 * math.Pow(2, zoom)
}

// projector maps between geographic coordinates and grid cells for one
// camera and canvas size.
type projector struct {
	world      float64
	cx, cy     float64 // Camera center, world pixels
	col0, row0 float64 // Screen center, cells
	sinB, cosB float64
	squash     float64 // Vertical foreshortening from pitch
}

func newProjector(cam view.State, width, height int) projector {
	world := worldSize(cam.Zoom)
	cx, cy := mercator(cam.Longitude, cam.Latitude, world)
	b := cam.Bearing * math.Pi / 180
	return projector{
		world:  world,
		cx:     cx,
		cy:     cy,
		col0:   float64(width) / 2,
		row0:   float64(height) / 2,
		sinB:   math.Sin(b),
		cosB:   math.Cos(b),
		squash: math.Max(math.Cos(cam.Pitch*math.Pi/180), 0.3),
	}
}

func mercator(lon, lat, world float64) (x, y float64) {
	lat = math.Max(-view.MaxLatitude, math.Min(view.MaxLatitude, lat))
	phi := lat * math.Pi / 180
	x = (lon + 180) / 360 * world
	y = (1 - math.Log(math.Tan(phi)+1/math.Cos(phi))/math.Pi) / 2 * world
	return x, y
}

// toCell projects lon/lat to fractional grid coordinates.
func (p projector) toCell(lon, lat float64) (col, row float64) {
	x, y := mercator(lon, lat, p.world)
	dx, dy := x-p.cx, y-p.cy
	// Shortest way around the antimeridian.
	if dx > p.world/2 {
		dx -= p.world
	} else if dx < -p.world/2 {
		dx += p.world
	}
	rx := dx*p.cosB + dy*p.sinB
	ry := -dx*p.sinB + dy*p.cosB
	return p.col0 + rx/cellW, p.row0 + ry*p.squash/cellH
}

// toGeo is the inverse of toCell.
func (p projector) toGeo(col, row float64) (lon, lat float64) {
	rx := (col - p.col0) * cellW
	ry := (row - p.row0) * cellH / p.squash
	dx := rx*p.cosB - ry*p.sinB
	dy := rx*p.sinB + ry*p.cosB
	x, y := p.cx+dx, p.cy+dy
	lon = x/p.world*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*y/p.world))) * 180 / math.Pi
	return lon, lat
}

// cell is one character of the canvas.
type cell struct {
	ch rune
	fg colorful.Color
}

// View renders the map and its HUD.
func (m MapModel) View() string {
	if m.width < 20 || m.height < 6 {
		return "Terminal too small for map view"
	}
	canvasH := m.height - 2
	return lipgloss.JoinVertical(lipgloss.Left, m.renderCanvas(m.width, canvasH), m.renderHUD())
}

func (m MapModel) palette() basemap {
	t := m.dayLevel
	return basemap{
		background: nightBasemap.background.BlendRgb(dayBasemap.background, t),
		graticule:  nightBasemap.graticule.BlendRgb(dayBasemap.graticule, t),
		text:       nightBasemap.text.BlendRgb(dayBasemap.text, t),
	}
}

func (m MapModel) buildGrid(width, height int) [][]cell {
	pal := m.palette()
	proj := newProjector(m.display, width, height)

	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' ', fg: pal.graticule}
		}
	}

	m.drawGraticule(grid, proj)
	m.drawTrails(grid, proj, pal)

	cx, cy := width/2, height/2
	if grid[cy][cx].ch == ' ' || grid[cy][cx].ch == '·' {
		grid[cy][cx] = cell{ch: '+', fg: pal.text}
	}
	return grid
}

func (m MapModel) renderCanvas(width, height int) string {
	grid := m.buildGrid(width, height)
	bg := lipgloss.Color(m.palette().background.Hex())

	var b strings.Builder
	for _, row := range grid {
		// Batch runs of one color into a single styled span.
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:x] {
				run.WriteRune(c.ch)
			}
			style := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(row[start].fg.Hex()))
			b.WriteString(style.Render(run.String()))
			start = x
		}
		b.WriteRune('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// graticuleSteps are candidate grid spacings in degrees.
var graticuleSteps = []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 15, 30}

func (m MapModel) drawGraticule(grid [][]cell, proj projector) {
	height := len(grid)
	width := len(grid[0])

	// Aim for a meridian every dozen columns or so.
	cellDeg := cellW * 360 / proj.world
	spacing := graticuleSteps[len(graticuleSteps)-1]
	for _, s := range graticuleSteps {
		if s >= cellDeg*12 {
			spacing = s
			break
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			lon, lat := proj.toGeo(float64(x)+0.5, float64(y)+0.5)
			lonR, _ := proj.toGeo(float64(x)+1.5, float64(y)+0.5)
			_, latD := proj.toGeo(float64(x)+0.5, float64(y)+1.5)
			onMeridian := math.Floor(lon/spacing) != math.Floor(lonR/spacing)
			onParallel := math.Floor(lat/spacing) != math.Floor(latD/spacing)
			switch {
			case onMeridian && onParallel:
				grid[y][x].ch = '┼'
			case onMeridian || onParallel:
				grid[y][x].ch = '·'
			}
		}
	}
}

func (m MapModel) drawTrails(grid [][]cell, proj projector, pal basemap) {
	layer := m.frame.Layer
	if layer.Trips == nil {
		return
	}
	height := len(grid)
	width := len(grid[0])

	plot := func(col, row, age float64, color colormap.RGBA) {
		x, y := int(math.Floor(col)), int(math.Floor(row))
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		// Fresher points win over older ones in the same cell.
		if prev := grid[y][x]; prev.ch == '●' || (prev.ch == '•' && age >= 0.4) {
			return
		}
		c := colorful.Color{R: float64(color.R) / 255, G: float64(color.G) / 255, B: float64(color.B) / 255}
		grid[y][x] = cell{ch: trailGlyph(age), fg: c.BlendRgb(pal.background, age*0.7).Clamped()}
	}

	for _, t := range layer.Trips.Trips {
		pts := t.TrailAt(layer.CurrentTime, layer.TrailLength)
		if len(pts) == 0 {
			continue
		}
		color := colormap.Default().Map(t.Quantity)
		if layer.Color != nil {
			color = layer.Color(t.Quantity)
		}

		prevCol, prevRow := proj.toCell(pts[0].Lon, pts[0].Lat)
		prevAge := pts[0].Age
		plot(prevCol, prevRow, prevAge, color)
		for _, p := range pts[1:] {
			col, row := proj.toCell(p.Lon, p.Lat)
			steps := int(math.Ceil(math.Max(math.Abs(col-prevCol), math.Abs(row-prevRow))))
			if steps > 4*(width+height) {
				steps = 4 * (width + height)
			}
			for i := 1; i <= steps; i++ {
				f := float64(i) / float64(steps)
				plot(prevCol+(col-prevCol)*f, prevRow+(row-prevRow)*f, prevAge+(p.Age-prevAge)*f, color)
			}
			prevCol, prevRow, prevAge = col, row, p.Age
		}
	}
}

func trailGlyph(age float64) rune {
	switch {
	case age <= 0.02:
		return '●'
	case age < 0.4:
		return '•'
	default:
		return '∙'
	}
}

func (m MapModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	d := m.display
	b.WriteString(headerStyle.Render(fmt.Sprintf("◆ %.4f, %.4f", d.Longitude, d.Latitude)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", d.Zoom)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Pitch:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f°", d.Pitch)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Bearing:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f°", d.Bearing)))
	b.WriteString("  ")
	if m.flight != nil {
		b.WriteString(valueStyle.Render("✈ flying"))
	} else {
		b.WriteString(dimStyle.Render(m.frame.Phase.String()))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Basemap:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf(" day %3.0f%% / night %3.0f%%", m.dayLevel*100, (1-m.dayLevel)*100)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("arrows: pan | +/-: zoom | [/]: rotate | {/}: pitch"))

	return b.String()
}
