package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"panelcode-go/bus"
	"panelcode-go/can"
	"panelcode-go/hal"
	"panelcode-go/services/logger"
	"panelcode-go/services/panel"
	"panelcode-go/types"
)

const (
	simLogLines = 12
	simTestSSID = "sim-network"
	simTestPass = "sim-password"
)

// Messages
type busMsg struct{ m *bus.Message }
type stoppedMsg struct{ err error }

type simKeys struct {
	Buttons key.Binding
	Wifi    key.Binding
	OTA     key.Binding
	Release key.Binding
	Quit    key.Binding
}

func (k simKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Buttons, k.Release, k.Wifi, k.OTA, k.Quit}
}

func (k simKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultSimKeys = simKeys{
	Buttons: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("1-8", "latch button")),
	Release: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "release all")),
	Wifi:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "send wifi")),
	OTA:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "send ota")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type simModel struct {
	info    string
	name    string
	buttons []hal.Line
	ctl     can.Transport

	pressed [can.Channels]bool
	leds    [can.Channels]bool
	mode    types.Mode
	log     []string
	err     error

	keys     simKeys
	help     help.Model
	quitting bool
}

func newSimModel(r *simRig) simModel {
	return simModel{
		info:    r.info,
		name:    r.name,
		buttons: r.buttons,
		ctl:     r.ctl,
		mode:    types.ModeBoot,
		keys:    defaultSimKeys,
		help:    help.New(),
	}
}

func (m simModel) Init() tea.Cmd { return nil }

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case busMsg:
		m.apply(msg.m)

	case stoppedMsg:
		m.err = msg.err
		m.addLog("[sim] panel stopped: " + msg.err.Error())
	}
	return m, nil
}

func (m simModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Buttons):
		ch := int(msg.String()[0] - '1')
		m.pressed[ch] = !m.pressed[ch]
		m.buttons[ch].Drive(m.pressed[ch])

	case key.Matches(msg, m.keys.Release):
		for i := range m.pressed {
			m.pressed[i] = false
			m.buttons[i].Drive(false)
		}

	case key.Matches(msg, m.keys.Wifi):
		if m.ctl == nil {
			m.addLog("[sim] no loopback controller")
			break
		}
		frames, err := can.WifiCredentialFrames(simTestSSID, simTestPass)
		if err == nil {
			err = sendAll(m.ctl, frames, 0)
		}
		if err != nil {
			m.addLog("[sim] wifi: " + err.Error())
		}

	case key.Matches(msg, m.keys.OTA):
		if m.ctl == nil {
			m.addLog("[sim] no loopback controller")
			break
		}
		s, err := ParseSuffix(m.name)
		if err == nil {
			err = m.ctl.Send(can.OTATrigger(s))
		}
		if err != nil {
			m.addLog("[sim] ota: " + err.Error())
		}
	}
	return m, nil
}

// apply folds a panel bus event into the view state.
func (m *simModel) apply(msg *bus.Message) {
	switch p := msg.Payload.(type) {
	case types.LEDState:
		m.leds = p.On
	case types.Mode:
		m.mode = p
	}
	if msg.Topic.String() == panel.TopicLED.String() || msg.Topic.String() == panel.TopicMode.String() {
		return
	}
	m.addLog(logger.Line(msg))
}

func (m *simModel) addLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > simLogLines {
		m.log = m.log[len(m.log)-simLogLines:]
	}
}

func (m simModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	ledOn := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	ledOff := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	pressedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	releasedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	var s strings.Builder
	s.WriteString(titleStyle.Render("panel "+m.name) + " " + headerStyle.Render(m.info+" | mode "+m.mode.String()))
	s.WriteString("\n\n")

	var leds, btns []string
	for i := 0; i < can.Channels; i++ {
		if m.leds[i] {
			leds = append(leds, ledOn.Render(" ● "))
		} else {
			leds = append(leds, ledOff.Render(" ○ "))
		}
		label := " " + string(rune('1'+i)) + " "
		if m.pressed[i] {
			btns = append(btns, pressedStyle.Render(label))
		} else {
			btns = append(btns, releasedStyle.Render(label))
		}
	}
	panelView := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, leds...),
		lipgloss.JoinHorizontal(lipgloss.Top, btns...),
	)
	s.WriteString(boxStyle.Render(panelView))
	s.WriteString("\n")

	logView := strings.Join(m.log, "\n")
	if logView == "" {
		logView = headerStyle.Render("no events yet")
	}
	s.WriteString(boxStyle.Render(logView))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(m.help.View(m.keys))
	return s.String()
}
