// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	amplitudeStep = 4
	offsetStep    = 2
	blendStep     = 0.05
	spectrumShown = 16
)

// Panes
const (
	paneWaveform = iota
	paneSpectrum
	paneSegments
	paneCorrections
	paneCount
)

var paneNames = [paneCount]string{"Waveform", "Spectrum", "Segments", "Corrections"}

//////////////////////////////////////////////////////////////
// Key Bindings
//////////////////////////////////////////////////////////////

type viewKeyMap struct {
	NextPane   key.Binding
	PrevPane   key.Binding
	NextWave   key.Binding
	PrevWave   key.Binding
	AmpUp      key.Binding
	AmpDown    key.Binding
	OffsetUp   key.Binding
	OffsetDown key.Binding
	BlendUp    key.Binding
	BlendDown  key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.NextWave, k.AmpUp, k.AmpDown, k.Save, k.Help, k.Quit}
}

func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane},
		{k.NextWave, k.PrevWave},
		{k.AmpUp, k.AmpDown, k.OffsetUp, k.OffsetDown},
		{k.BlendUp, k.BlendDown},
		{k.Save, k.Help, k.Quit},
	}
}

var viewKeys = viewKeyMap{
	NextPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	PrevPane:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous pane")),
	NextWave:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next waveform")),
	PrevWave:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous waveform")),
	AmpUp:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "amplitude up")),
	AmpDown:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "amplitude down")),
	OffsetUp:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "offset up")),
	OffsetDown: key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "offset down")),
	BlendUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more triangle")),
	BlendDown:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "more sine")),
	Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var viewTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("12")).
	Background(lipgloss.Color("235")).
	Padding(0, 1)

var viewHeaderStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241"))

var viewLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("12")).
	Bold(true)

var viewValueStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("10"))

var viewErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("9")).
	Bold(true)

var viewWarningStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("11"))

var viewActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(lipgloss.Color("12")).
	Padding(0, 1)

var viewTabStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	Padding(0, 1)

var viewBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

// viewModel is the Bubble Tea model for the table viewer
type viewModel struct {
	source   tableSource
	outPath  string
	// editable is false for tables loaded from files or registers
	editable bool

	table     *mslut.Table
	info      mslut.TableInfo
	wave      []int
	spectrum  *mslut.SpectrumResult
	anomalies []mslut.ValidationError
	err       error

	segments table.Model
	help     help.Model
	keys     viewKeyMap

	pane   int
	status string
	width  int
	height int
}

func initialViewModel(source tableSource, outPath string) viewModel {
	segments := table.New(
		table.WithColumns([]table.Column{
			{Title: "Seg", Width: 4},
			{Title: "Range", Width: 10},
			{Title: "W", Width: 3},
			{Title: "Deltas", Width: 8},
			{Title: "Corr", Width: 5},
		}),
		table.WithHeight(mslut.SegmentCount+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12"))
	segments.SetStyles(styles)

	m := viewModel{
		source:   source,
		outPath:  outPath,
		editable: source.file == "" && !source.fromRegisters(),
		segments: segments,
		help:     help.New(),
		keys:     viewKeys,
		width:    80,
		height:   24,
	}
	m.reload()
	return m
}

// reload re-encodes the table from the current source settings.
// On failure the previous table stays on screen with the error shown.
func (m *viewModel) reload() {
	t, info, err := m.source.load()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.table = t
	m.info = info
	m.anomalies = mslut.ValidateTable(t)

	m.wave, err = t.FullWaveform()
	if err != nil {
		m.wave = nil
		m.spectrum = nil
		m.err = err
	} else {
		m.spectrum, _ = t.Spectrum(spectrumAmplitude(info))
	}
	m.segments.SetRows(segmentRows(t))
}

func segmentRows(t *mslut.Table) []table.Row {
	ends := t.SegmentEnds()
	w := t.BaseIncrements()
	rows := make([]table.Row, 0, mslut.SegmentCount)
	for i := 0; i < mslut.SegmentCount; i++ {
		start, end := t.SegmentStart(i), ends[i]
		if end > mslut.Microsteps {
			end = mslut.Microsteps
		}
		if end <= start {
			rows = append(rows, table.Row{fmt.Sprint(i), "(empty)", fmt.Sprint(w[i]), "", ""})
			continue
		}
		corrections := 0
		for p := start; p < end; p++ {
			if t.Correction(p) {
				corrections++
			}
		}
		base := t.BaseDelta(i)
		rows = append(rows, table.Row{
			fmt.Sprint(i),
			fmt.Sprintf("%d..%d", start, end-1),
			fmt.Sprint(w[i]),
			fmt.Sprintf("%+d/%+d", base, base+1),
			fmt.Sprint(corrections),
		})
	}
	return rows
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m viewModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NextPane):
		m.setPane((m.pane + 1) % paneCount)
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.setPane((m.pane + paneCount - 1) % paneCount)
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if m.table == nil {
			return m, nil
		}
		if err := mslut.WriteTableFile(m.outPath, m.table, m.info); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Saved " + m.outPath
		}
		return m, nil
	}

	if m.pane == paneSegments {
		var cmd tea.Cmd
		m.segments, cmd = m.segments.Update(msg)
		if cmd != nil {
			return m, cmd
		}
	}

	if !m.editable {
		return m, nil
	}

	changed := true
	switch {
	case key.Matches(msg, m.keys.NextWave):
		m.cycleWaveform(1)
	case key.Matches(msg, m.keys.PrevWave):
		m.cycleWaveform(-1)
	case key.Matches(msg, m.keys.AmpUp):
		m.source.amplitude += amplitudeStep
	case key.Matches(msg, m.keys.AmpDown):
		m.source.amplitude -= amplitudeStep
	case key.Matches(msg, m.keys.OffsetUp):
		m.source.offset += offsetStep
	case key.Matches(msg, m.keys.OffsetDown):
		m.source.offset -= offsetStep
	case key.Matches(msg, m.keys.BlendUp):
		m.source.blend = math.Min(1, math.Max(0, m.source.blend)+blendStep)
	case key.Matches(msg, m.keys.BlendDown):
		if m.source.blend >= 0 {
			m.source.blend = math.Max(0, m.source.blend-blendStep)
		}
	default:
		changed = false
	}
	if changed {
		m.status = ""
		m.reload()
	}
	return m, nil
}

func (m *viewModel) setPane(p int) {
	m.pane = p
	if p == paneSegments {
		m.segments.Focus()
	} else {
		m.segments.Blur()
	}
}

// cycleWaveform steps through the named waveforms and clears any blend
func (m *viewModel) cycleWaveform(dir int) {
	names := mslut.WaveformNames()
	idx := 0
	for i, name := range names {
		if name == m.source.waveform {
			idx = i
		}
	}
	m.source.waveform = names[(idx+dir+len(names))%len(names)]
	m.source.blend = -1
}

//////////////////////////////////////////////////////////////
// Rendering
//////////////////////////////////////////////////////////////

func (m viewModel) View() string {
	var s strings.Builder
	s.WriteString(viewTitleStyle.Render("SINESTAT - TABLE VIEWER"))
	s.WriteString("\n")
	s.WriteString(viewHeaderStyle.Render(m.sourceLine()))
	s.WriteString("\n\n")

	tabs := make([]string, 0, paneCount)
	for i, name := range paneNames {
		if i == m.pane {
			tabs = append(tabs, viewActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, viewTabStyle.Render(name))
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	s.WriteString("\n")

	innerWidth := m.width - 6
	if innerWidth < 20 {
		innerWidth = 20
	}
	plotHeight := m.height - 16
	if plotHeight < 6 {
		plotHeight = 6
	}

	var body string
	switch m.pane {
	case paneWaveform:
		body = renderWaveform(m.wave, innerWidth, plotHeight)
	case paneSpectrum:
		body = renderSpectrum(m.spectrum, innerWidth)
	case paneSegments:
		body = m.segments.View()
	case paneCorrections:
		if m.table != nil {
			body = strings.TrimRight(mslut.FormatCorrections(m.table), "\n")
		}
	}
	s.WriteString(viewBoxStyle.Width(m.width - 2).Render(body))
	s.WriteString("\n")

	s.WriteString(m.summaryLine())
	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(viewErrorStyle.Render("✗ " + m.err.Error()))
		s.WriteString("\n")
	}
	for _, a := range m.anomalies {
		s.WriteString(viewWarningStyle.Render("ℹ " + a.Message))
		s.WriteString("\n")
	}
	if m.status != "" {
		s.WriteString(viewValueStyle.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))
	return s.String()
}

func (m viewModel) sourceLine() string {
	switch {
	case m.source.file != "":
		return fmt.Sprintf("File: %s | Press 'q' to quit", m.source.file)
	case m.source.fromRegisters():
		return "Source: registers | Press 'q' to quit"
	}
	return fmt.Sprintf("Waveform: %s | Amplitude: %d | Offset: %d | Press 'q' to quit",
		m.info.Waveform, m.source.amplitude, m.source.offset)
}

func (m viewModel) summaryLine() string {
	if m.table == nil {
		return ""
	}
	r := m.table.Registers()
	line := fmt.Sprintf("%s %s   %s %s   %s %s",
		viewLabelStyle.Render("MSLUTSEL:"), viewValueStyle.Render(fmt.Sprintf("0x%08X", r.MSLUTSEL)),
		viewLabelStyle.Render("MSLUTSTART:"), viewValueStyle.Render(fmt.Sprintf("0x%08X", r.MSLUTSTART)),
		viewLabelStyle.Render("Segments:"), viewValueStyle.Render(fmt.Sprint(m.table.ActiveSegments())),
	)
	if m.spectrum != nil {
		line += fmt.Sprintf("   %s %s",
			viewLabelStyle.Render("THD:"), viewValueStyle.Render(fmt.Sprintf("%.3f%%", m.spectrum.THD()*100)))
	}
	return line
}

// renderWaveform plots one electrical cycle as a dot chart
func renderWaveform(wave []int, width, height int) string {
	if len(wave) == 0 {
		return viewHeaderStyle.Render("(no waveform)")
	}

	lo, hi := wave[0], wave[0]
	for _, v := range wave {
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	for c := 0; c < width; c++ {
		v := wave[c*len(wave)/width]
		row := (hi - v) * (height - 1) / (hi - lo)
		grid[row][c] = '•'
	}

	lines := make([]string, height)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	axis := viewHeaderStyle.Render(fmt.Sprintf("%d..%d over %d microsteps", lo, hi, len(wave)))
	return strings.Join(lines, "\n") + "\n" + axis
}

// renderSpectrum draws the first bins as horizontal bars on a log scale
func renderSpectrum(s *mslut.SpectrumResult, width int) string {
	if s == nil {
		return viewHeaderStyle.Render("(no spectrum)")
	}
	barWidth := width - 22
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	for i := 0; i < spectrumShown && i < len(s.Magnitude); i++ {
		m := s.Magnitude[i]
		// -80 dB maps to an empty bar, 0 dB to a full one
		level := 0.0
		if m > 0 {
			level = (20*math.Log10(m) + 80) / 80
		}
		level = math.Min(1, math.Max(0, level))
		b.WriteString(fmt.Sprintf("%3d %9.6f %s\n", i, m, magnitudeBar(level, barWidth)))
	}
	return strings.TrimRight(b.String(), "\n")
}
