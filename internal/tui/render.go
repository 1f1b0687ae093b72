package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"qpragma/calc"
	"qpragma/circuit"
	"qpragma/internal/circuitfile"
	"qpragma/operations"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given visible width.
func padCenter(s string, width int) string {
	if w := lipgloss.Width(s); w > width {
		s = string([]rune(s)[:width])
	}
	total := max(width-lipgloss.Width(s), 0)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// extraSymbols covers the variants that cannot be added from the menu.
var extraSymbols = map[string]string{
	operations.NameSetStateVector:   "|ψ⟩",
	operations.NameSetDensityMatrix: "ρ",
	operations.NameGeneralNoise:     "Nk",
	operations.NameConditional:      "if",
}

// symbolFor returns the short box label of op.
func symbolFor(op operations.Operation) string {
	for _, cat := range pragmaMenu {
		for _, item := range cat.items {
			if item.hqslang == op.Hqslang() {
				return item.symbol
			}
		}
	}
	if s, ok := extraSymbols[op.Hqslang()]; ok {
		return s
	}
	return "?"
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide. wire is the rune used
// for the horizontal line of the row.
func renderCell(nodes []*circuit.DAGNode, cursor bool, wire string) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	if len(nodes) == 0 && !cursor {
		return emptyRow, strings.Repeat(wire, cellW), emptyRow
	}

	label := ""
	style := opStyle
	if len(nodes) > 0 {
		label = symbolFor(nodes[0].Operation)
		if len(nodes) > 1 {
			label = fmt.Sprintf("%s+%d", label, len(nodes)-1)
		}
		if operations.HasTag(nodes[0].Operation, operations.TagPragmaNoiseOperation) {
			style = noiseStyle
		}
	}

	bdr := dimStyle
	if cursor {
		bdr = cursorBoxStyle
	}
	left := (cellW - opNameW - 2) / 2
	right := cellW - opNameW - 2 - left
	top = strings.Repeat(" ", left) + bdr.Render("┌"+strings.Repeat("─", opNameW)+"┐") + strings.Repeat(" ", right)
	mid = strings.Repeat(wire, left) + bdr.Render("┤") + style.Render(padCenter(label, opNameW)) + bdr.Render("├") + strings.Repeat(wire, right)
	bot = strings.Repeat(" ", left) + bdr.Render("└"+strings.Repeat("─", opNameW)+"┘") + strings.Repeat(" ", right)
	return top, mid, bot
}

// ──────────────────────────── Panels ────────────────────────────

func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	title := "PRAGMA Circuit"
	if m.path != "" {
		title += "  " + m.path
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	// How many layers fit
	availWidth := width - labelVisualW - 4
	maxLayers := max(availWidth/cellW, 1)

	startLayer := 0
	if m.cursorLayer >= maxLayers {
		startLayer = m.cursorLayer - maxLayers + 1
	}
	endLayer := min(startLayer+maxLayers, max(len(m.layers), 1))

	if startLayer > 0 {
		fmt.Fprintf(&sb, "  ◀ showing layers %d–%d\n", startLayer, endLayer-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for layer := startLayer; layer < endLayer; layer++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", layer), cellW))
	}
	sb.WriteString(header + "\n")

	// Row -1 holds the operations that involve no qubit.
	for qubit := -1; qubit < m.numQubits; qubit++ {
		wire, label := "─", fmt.Sprintf("q[%d]", qubit)
		if qubit < 0 {
			wire, label = "═", "glob"
		}
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + strings.Repeat(wire, labelVisualW-5)
		botLine := strings.Repeat(" ", labelVisualW)

		for layer := startLayer; layer < endLayer; layer++ {
			cursor := layer == m.cursorLayer && qubit == m.cursorQubit
			top, mid, bot := renderCell(m.opsAt(layer, qubit), cursor, wire)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	if m.cursorQubit < 0 {
		fmt.Fprintf(&sb, "\n  Position: Layer %d, global", m.cursorLayer)
	} else {
		fmt.Fprintf(&sb, "\n  Position: Layer %d, Qubit %d", m.cursorLayer, m.cursorQubit)
	}
	fmt.Fprintf(&sb, "  │  %d operation(s)", m.circuit.Len())
	if m.statusMsg != "" {
		style := activeStyle
		if m.statusErr {
			style = errorStyle
		}
		fmt.Fprintf(&sb, "  │  %s", style.Render(m.statusMsg))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderDetailPanel describes the operations under the cursor.
func (m Model) renderDetailPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Details"))
	sb.WriteString("\n\n")

	nodes := m.selected()
	if len(nodes) == 0 {
		sb.WriteString(dimStyle.Render("No operation here."))
	}
	for i, node := range nodes {
		if i > 0 {
			sb.WriteString(dimStyle.Render(strings.Repeat("─", max(width-6, 1))))
			sb.WriteString("\n")
		}
		sb.WriteString(m.describe(node))
	}

	if vars := m.calculator.Variables(); len(vars) > 0 {
		sb.WriteString("\n")
		sb.WriteString(activeStyle.Render("Variables"))
		sb.WriteString("\n")
		for _, name := range sortedNames(vars) {
			fmt.Fprintf(&sb, "  %s = %s\n", name, calc.FormatFloat(vars[name]))
		}
	}

	return detailStyle.Width(width).Height(height).Render(sb.String())
}

func (m Model) describe(node *circuit.DAGNode) string {
	var sb strings.Builder
	op := node.Operation

	fmt.Fprintf(&sb, "%s #%d\n", activeStyle.Render(op.Hqslang()), node.ID)
	fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render("tags:"), strings.Join(op.Tags(), ", "))
	fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render("qubits:"), op.InvolvedQubits())
	fmt.Fprintf(&sb, "%s %t\n", dimStyle.Render("parametrized:"), op.IsParametrized())
	if len(node.Dependencies) > 0 {
		fmt.Fprintf(&sb, "%s %v\n", dimStyle.Render("after:"), node.Dependencies)
	}

	if entry, err := circuitfile.EntryOf(op); err == nil {
		if out, err := yaml.Marshal(entry); err == nil {
			sb.WriteString("\n")
			sb.WriteString(string(out))
		}
	}

	noise, ok := op.(operations.PragmaNoiseOperation)
	if !ok {
		return sb.String()
	}
	prob := noise.Probability()
	fmt.Fprintf(&sb, "\n%s %s", dimStyle.Render("probability:"), calc.Format(prob))
	if !prob.IsFloat() {
		if v, err := m.calculator.Evaluate(prob); err == nil {
			fmt.Fprintf(&sb, " = %s", calc.FormatFloat(v))
		}
	}
	sb.WriteString("\n")

	resolved, err := op.SubstituteParameters(m.calculator)
	if err != nil {
		sb.WriteString(errorStyle.Render(err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}
	superop, err := resolved.(operations.PragmaNoiseOperation).Superoperator()
	if err != nil {
		sb.WriteString(errorStyle.Render(err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(dimStyle.Render("superoperator:"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%.4v\n", mat.Formatted(superop, mat.Squeeze()))
	return sb.String()
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move qubit  ←→/hl Move layer")
	sb.WriteString("    ")
	sb.WriteString(activeStyle.Render("a"))
	sb.WriteString(" Add PRAGMA\n")

	sb.WriteString(activeStyle.Render("Actions:  "))
	sb.WriteString("r Remap  v Set variable  s Substitute  Bksp Delete  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// renderInput renders the prompt overlay for remap, variable and argument input.
func (m Model) renderInput() string {
	var sb strings.Builder
	title, hint := "", ""
	switch m.focus {
	case focusParams:
		title = "Arguments for " + m.pending.name
		hint = "Comma separated: " + strings.Join(m.pending.params, ", ")
	case focusRemap:
		title = "Remap Qubits"
		hint = "Every involved qubit needs an entry, e.g. 0:3,2:4"
	case focusVariable:
		title = "Set Variable"
		hint = "name=expression, e.g. t=pi/4"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(hint + "   ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// isEscEnd reports whether r terminates an ANSI escape sequence.
func isEscEnd(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := lipgloss.Width(overlay)

	var prefix strings.Builder
	col, i := 0, 0

	// Collect prefix: everything up to visible column x, escapes included
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				r := runes[i]
				prefix.WriteRune(r)
				i++
				if r != '\x1b' && r != '[' && isEscEnd(r) {
					break
				}
			}
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	for skipped := 0; i < len(runes) && skipped < ovWidth; {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				r := runes[i]
				i++
				if r != '\x1b' && r != '[' && isEscEnd(r) {
					break
				}
			}
			continue
		}
		skipped++
		i++
	}

	return prefix.String() + overlay + string(runes[i:])
}
