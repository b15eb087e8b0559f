package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	tickRate     = time.Second / 30
	sparkWidth   = 30
)

// Frame is one recorded point of a run. Mode is the mode of the step that
// arrived at the pose; the first frame has none.
type Frame struct {
	Pose nav.Pose
	Time float64
	Mode string
}

// StartFunc opens a fresh session. The live model calls it on start and on
// every restart.
type StartFunc func() (*nav.Session, error)

type TickMsg time.Time

// Model drives either a live session or the replay of a stored run.
type Model struct {
	ws    *workspace.Workspace
	title string

	start   StartFunc
	session *nav.Session
	law     nav.Configurable

	frames  []Frame
	head    int
	outcome string
	err     error

	running      bool
	stepsPerTick int
	theme        int
	showHelp     bool

	paramKeys []string
	selected  int

	canvas *Canvas
	view   Viewport
}

func newModel(ws *workspace.Workspace, title string) Model {
	c := NewCanvas(canvasWidth, canvasHeight)
	return Model{
		ws:           ws,
		title:        title,
		running:      true,
		stepsPerTick: 1,
		canvas:       c,
		view:         NewViewport(ws.Bounds(), c),
	}
}

// NewLive returns a model that steps sessions from start. If law is
// configurable its parameters can be tuned from the keyboard; every change
// restarts the run.
func NewLive(ws *workspace.Workspace, title string, law nav.GuidanceLaw, start StartFunc) Model {
	m := newModel(ws, title)
	m.start = start
	if c, ok := law.(nav.Configurable); ok {
		m.law = c
		for k := range c.GetParams() {
			m.paramKeys = append(m.paramKeys, k)
		}
		sort.Strings(m.paramKeys)
	}
	m.restart()
	return m
}

// NewReplay plays back recorded frames.
func NewReplay(ws *workspace.Workspace, title, outcome string, frames []Frame) Model {
	m := newModel(ws, title)
	m.frames = frames
	m.outcome = outcome
	return m
}

// Frames builds replay frames from stored samples where modes[i] is the
// mode issued at poses[i].
func Frames(times []float64, poses []nav.Pose, modes []string) []Frame {
	frames := make([]Frame, len(poses))
	for i, p := range poses {
		frames[i] = Frame{Pose: p, Time: times[i]}
		if i > 0 && i-1 < len(modes) {
			frames[i].Mode = modes[i-1]
		}
	}
	return frames
}

func FramesFromResult(r *nav.Result) []Frame {
	modes := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		modes[i] = c.Mode.String()
	}
	return Frames(r.Times, r.Poses, modes)
}

func (m Model) live() bool { return m.start != nil }

// SetSpeed sets how many simulation steps run per frame.
func (m *Model) SetSpeed(n int) {
	if n > 0 {
		m.stepsPerTick = n
	}
}

func (m *Model) SetTheme(name string) {
	for i, t := range Themes {
		if t.Name == name {
			m.theme = i
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.session != nil {
				m.session.Cancel()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "[":
			m.running = false
			m.scrub(-1)
		case "]":
			m.running = false
			m.scrub(1)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, 64)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1.1)
		case "down", "j":
			m.adjustParam(1 / 1.1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance moves the play head forward, stepping the live session when the
// head is already at the newest frame.
func (m *Model) advance() {
	if m.head < len(m.frames)-1 {
		m.head = min(m.head+m.stepsPerTick, len(m.frames)-1)
		return
	}
	if m.session == nil || m.session.Done() {
		return
	}
	for i := 0; i < m.stepsPerTick; i++ {
		done, err := m.session.Next()
		if err != nil {
			m.err = err
		}
		if done {
			m.outcome = m.session.Result().Outcome.String()
			break
		}
		r := m.session.Result()
		m.frames = append(m.frames, Frame{
			Pose: m.session.Pose(),
			Time: m.session.Time(),
			Mode: r.Commands[len(r.Commands)-1].Mode.String(),
		})
	}
	m.head = len(m.frames) - 1
}

func (m *Model) scrub(dir int) {
	if len(m.frames) == 0 {
		return
	}
	m.head = min(max(m.head+dir*m.stepsPerTick, 0), len(m.frames)-1)
}

func (m *Model) restart() {
	if !m.live() {
		m.head = 0
		m.running = true
		return
	}
	if m.session != nil {
		m.session.Cancel()
	}
	m.err = nil
	m.outcome = ""
	m.frames = nil
	m.head = 0
	sess, err := m.start()
	if err != nil {
		m.session = nil
		m.err = err
		return
	}
	m.session = sess
	m.frames = append(m.frames, Frame{Pose: sess.Pose(), Time: sess.Time()})
	m.running = true
}

func (m *Model) adjustParam(factor float64) {
	if m.law == nil || len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.law.GetParams()[key] * factor
	if err := m.law.SetParam(key, val); err != nil {
		m.err = err
		return
	}
	m.restart()
}

// Current returns the frame under the play head.
func (m Model) Current() (Frame, bool) {
	if len(m.frames) == 0 {
		return Frame{}, false
	}
	return m.frames[m.head], true
}

func (m Model) History() []Frame { return m.frames }

// Result is the result of the live session, or nil for replays.
func (m Model) Result() *nav.Result {
	if m.session == nil {
		return nil
	}
	return m.session.Result()
}

func (m Model) draw() string {
	c, v := m.canvas, m.view
	c.Clear()
	c.DrawWorkspace(v, m.ws)
	if len(m.frames) == 0 {
		return c.String()
	}
	path := make([]geom.Point, m.head+1)
	for i := 0; i <= m.head; i++ {
		path[i] = m.frames[i].Pose.Point()
	}
	c.Polyline(v, path)
	cur := m.frames[m.head].Pose
	c.Robot(v, cur.Point(), cur.Heading)
	return c.String()
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.stopped.Render("ERROR")
	case m.head < len(m.frames)-1 && !m.running:
		return st.paused.Render(fmt.Sprintf("SCRUB %d/%d", m.head, len(m.frames)-1))
	case m.head < len(m.frames)-1:
		return st.running.Render("REPLAY")
	case m.outcome != "":
		return st.stopped.Render(strings.ToUpper(m.outcome))
	case !m.running:
		return st.paused.Render("PAUSED")
	}
	return st.running.Render("RUNNING")
}

func (m Model) View() string {
	st := newStyles(Themes[m.theme])
	mapView := st.canvas.Render(m.draw())

	var s strings.Builder
	s.WriteString(st.header.Render(m.title) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	if f, ok := m.Current(); ok {
		p := f.Pose
		row("Time", fmt.Sprintf("%.2fs", f.Time))
		row("Step", fmt.Sprintf("%d", m.head))
		row("Position", fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y))
		row("Heading", fmt.Sprintf("%.1f°", geom.Deg(p.Heading)))
		if f.Mode != "" {
			row("Mode", f.Mode)
		}
		row("To goal", fmt.Sprintf("%.2f", m.ws.DistanceToGoal(p.X, p.Y)))
		row("Speed", fmt.Sprintf("x%d", m.stepsPerTick))
		if len(m.frames) > 1 {
			s.WriteString("\n" + st.label.Render("Progress") + ProgressBar(float64(m.head)/float64(len(m.frames)-1), 20) + "\n")
		}
		s.WriteString("\n" + st.label.Render("Cross-track") + "\n" + Sparkline(m.crossTrack(), sparkWidth) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + st.stopped.Render(m.err.Error()) + "\n")
	}

	if m.law != nil {
		s.WriteString("\n" + st.header.Render("PARAMETERS") + "\n")
		params := m.law.GetParams()
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-14s %8.3f", k, params[k])
			if i == m.selected {
				s.WriteString(st.active.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + st.value.Render(line) + "\n")
			}
		}
	}

	s.WriteString("\n" + st.hint.Render("space pause  [ ] scrub  r restart  q quit  ? help"))
	panel := st.panel.Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, mapView, panel)
	if m.showHelp {
		return st.panel.Render(helpText) + "\n" + main
	}
	return main
}

const helpText = `space    pause / resume
[ ]      step back / forward through the run
+ -      change playback speed
r        restart
tab      select parameter
up/down  scale parameter by 10% and restart
t        cycle theme
q        quit`

func (m Model) crossTrack() []float64 {
	line := m.ws.Line()
	n := m.head + 1
	from := max(0, n-sparkWidth)
	out := make([]float64, 0, n-from)
	for _, f := range m.frames[from:n] {
		out = append(out, math.Abs(line.CrossTrack(f.Pose.Point())))
	}
	return out
}
