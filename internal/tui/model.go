// Package tui is an interactive inspector for PRAGMA circuits. Operations are
// laid out by dependency layer, one row per qubit plus a global row for the
// operations that involve no qubit.
package tui

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qpragma/calc"
	"qpragma/circuit"
	"qpragma/internal/circuitfile"
	"qpragma/operations"
)

// defaultPath is where ctrl+s writes a circuit that was not loaded from a file.
const defaultPath = "circuit.yaml"

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusMenu
	focusParams
	focusRemap
	focusVariable
)

// Model represents the TUI application state.
type Model struct {
	circuit    *circuit.Circuit
	calculator *calc.Calculator
	logger     *zap.Logger
	path       string

	// Derived from circuit on every change
	layers    [][]*circuit.DAGNode
	numQubits int

	cursorQubit int // -1 is the global row
	cursorLayer int
	width       int
	height      int
	input       textinput.Model
	focus       focus
	statusMsg   string
	statusErr   bool

	// Menu state
	menuCat  int
	menuItem int
	pending  *menuItem
}

// New returns a model inspecting c. A nil circuit or calculator starts empty.
func New(c *circuit.Circuit, calculator *calc.Calculator, path string, logger *zap.Logger) Model {
	if c == nil {
		c = circuit.New()
	}
	if calculator == nil {
		calculator = calc.NewCalculator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		circuit:    c,
		calculator: calculator,
		logger:     logger,
		path:       path,
		input:      ti,
		focus:      focusCircuit,
	}
	m.refresh()
	return m
}

// Circuit returns the circuit as currently edited.
func (m Model) Circuit() *circuit.Circuit {
	return m.circuit
}

// refresh rebuilds the DAG view and keeps the cursor inside it.
func (m *Model) refresh() {
	m.layers = circuit.NewDAG(m.circuit).Layers()
	m.numQubits = qubitCount(m.circuit)
	m.cursorQubit = min(m.cursorQubit, m.numQubits-1)
	m.cursorLayer = min(m.cursorLayer, max(len(m.layers)-1, 0))
}

// qubitCount is one past the highest qubit named by any operation, at least 1.
func qubitCount(c *circuit.Circuit) int {
	n := 1
	for _, op := range c.Operations() {
		if involved := op.InvolvedQubits(); involved.Kind == operations.InvolveSet && len(involved.Qubits) > 0 {
			n = max(n, involved.Qubits[len(involved.Qubits)-1]+1)
		}
	}
	return n
}

// opsAt returns the nodes of layer drawn on the row of qubit.
func (m Model) opsAt(layer, qubit int) []*circuit.DAGNode {
	if layer < 0 || layer >= len(m.layers) {
		return nil
	}
	var out []*circuit.DAGNode
	for _, node := range m.layers[layer] {
		involved := node.Operation.InvolvedQubits()
		if qubit < 0 && involved.Kind == operations.InvolveNone || qubit >= 0 && involved.Contains(qubit) {
			out = append(out, node)
		}
	}
	return out
}

// selected returns the nodes under the cursor.
func (m Model) selected() []*circuit.DAGNode {
	return m.opsAt(m.cursorLayer, m.cursorQubit)
}

func sortedNames(vars map[string]float64) []string {
	return slices.Sorted(maps.Keys(vars))
}

func (m *Model) setStatus(msg string) {
	m.statusMsg, m.statusErr = msg, false
}

func (m *Model) setError(err error) {
	m.statusMsg, m.statusErr = err.Error(), true
	m.logger.Debug("inspector action failed", zap.Error(err))
}

// replace swaps in a transformed circuit.
func (m *Model) replace(c operations.Circuit, msg string) {
	m.circuit = c.(*circuit.Circuit)
	m.refresh()
	m.setStatus(msg)
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width/3, 20)

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			m.statusMsg = ""
			return m.updateCircuit(key)
		case focusMenu:
			return m.updateMenu(key)
		case focusParams, focusRemap, focusVariable:
			switch key {
			case "esc":
				m.closeInput()
				return m, nil
			case "enter":
				m.submit(m.input.Value())
				m.closeInput()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateCircuit(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursorQubit > -1 {
			m.cursorQubit--
		}
	case "down", "j":
		if m.cursorQubit < m.numQubits-1 {
			m.cursorQubit++
		}
	case "left", "h":
		if m.cursorLayer > 0 {
			m.cursorLayer--
		}
	case "right", "l":
		if m.cursorLayer < len(m.layers)-1 {
			m.cursorLayer++
		}
	case "a":
		m.focus = focusMenu
		m.menuCat = 0
		m.menuItem = 0
	case "r":
		return m, m.openInput(focusRemap, "map> ", "0:1,1:0")
	case "v":
		return m, m.openInput(focusVariable, "set> ", "t=0.5")
	case "s":
		sub, err := m.circuit.SubstituteParameters(m.calculator)
		if err != nil {
			m.setError(err)
			break
		}
		m.replace(sub, "Substituted parameters")
	case "backspace", "delete":
		nodes := m.selected()
		if len(nodes) == 0 {
			break
		}
		m.circuit.Remove(nodes[0].ID)
		m.refresh()
		m.setStatus("Removed " + nodes[0].Operation.Hqslang())
	case "ctrl+s":
		m.save()
	}
	return m, nil
}

func (m Model) updateMenu(key string) (tea.Model, tea.Cmd) {
	cat := pragmaMenu[m.menuCat]
	switch key {
	case "esc", "q":
		m.focus = focusCircuit
	case "up", "k":
		if m.menuItem > 0 {
			m.menuItem--
		}
	case "down", "j":
		if m.menuItem < len(cat.items)-1 {
			m.menuItem++
		}
	case "left", "h":
		if m.menuCat > 0 {
			m.menuCat--
			m.menuItem = 0
		}
	case "right", "l", "tab":
		if m.menuCat < len(pragmaMenu)-1 {
			m.menuCat++
			m.menuItem = 0
		}
	case "enter":
		item := cat.items[m.menuItem]
		m.focus = focusCircuit
		if len(item.params) == 0 {
			m.add(item, "")
			return m, nil
		}
		m.pending = &item
		return m, m.openInput(focusParams, "args> ", item.example)
	}
	return m, nil
}

// add builds item on the cursor qubit and appends it to the circuit.
func (m *Model) add(item menuItem, raw string) {
	op, err := buildItem(item, max(m.cursorQubit, 0), raw)
	if err != nil {
		m.setError(err)
		return
	}
	m.circuit.Add(op)
	m.refresh()
	m.setStatus("Added " + op.Hqslang())
}

func (m *Model) openInput(f focus, prompt, placeholder string) tea.Cmd {
	m.focus = f
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.focus = focusCircuit
	m.pending = nil
}

// submit applies the entered line according to the active input mode.
func (m *Model) submit(value string) {
	switch m.focus {
	case focusParams:
		if m.pending != nil {
			m.add(*m.pending, value)
		}
	case focusRemap:
		mapping, err := circuitfile.ParseMapping(value)
		if err != nil {
			m.setError(err)
			return
		}
		remapped, err := m.circuit.RemapQubits(mapping)
		if err != nil {
			m.setError(err)
			return
		}
		m.replace(remapped, "Remapped qubits")
	case focusVariable:
		v, err := circuitfile.ParseAssignment(value)
		if err != nil {
			m.setError(err)
			return
		}
		val, err := m.calculator.Assign(v.Name, v.Expr)
		if err != nil {
			m.setError(err)
			return
		}
		m.setStatus(fmt.Sprintf("%s = %s", v.Name, calc.FormatFloat(val)))
	}
}

func (m *Model) save() {
	path := m.path
	if path == "" {
		path = defaultPath
	}
	data, err := circuitfile.Encode(m.circuit, m.calculator)
	if err != nil {
		m.setError(err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.setError(err)
		return
	}
	m.logger.Debug("saved circuit", zap.String("path", path), zap.Int("operations", m.circuit.Len()))
	m.setStatus("Saved " + path)
}

// ──────────────────────────── View ────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	detailWidth := m.width / 3
	circuitWidth := m.width - detailWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	detailPanel := m.renderDetailPanel(detailWidth, circuitHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, detailPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusParams, focusRemap, focusVariable:
		frame = overlayAt(frame, m.renderInput(), 2, 2)
	}

	return frame
}
