package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"qpragma/calc"
	"qpragma/operations"
)

// buildFunc creates an operation on the cursor qubit from the entered arguments.
type buildFunc func(qubit int, args []string) (operations.Operation, error)

// menuItem represents a single PRAGMA choice in the menu.
type menuItem struct {
	name    string
	hqslang string
	symbol  string
	params  []string // argument names, entered comma separated
	example string
	build   buildFunc
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// pragmaMenu defines the PRAGMA picker categories and items.
var pragmaMenu = []menuCategory{
	{
		name: "Initialization",
		items: []menuItem{
			{name: "Active Reset", hqslang: operations.NameActiveReset, symbol: "|0⟩",
				build: func(q int, _ []string) (operations.Operation, error) {
					return operations.NewPragmaActiveReset(q), nil
				}},
			{name: "Measurements", hqslang: operations.NameSetNumberOfMeasurements, symbol: "#M",
				params: []string{"number_measurements", "readout"}, example: "100, ro",
				build: func(_ int, args []string) (operations.Operation, error) {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return nil, errors.Wrap(err, "number_measurements")
					}
					return operations.NewPragmaSetNumberOfMeasurements(n, args[1]), nil
				}},
		},
	},
	{
		name: "Timing",
		items: []menuItem{
			{name: "Sleep", hqslang: operations.NameSleep, symbol: "Zz",
				params: []string{"sleep_time"}, example: "t",
				build: func(q int, args []string) (operations.Operation, error) {
					return operations.NewPragmaSleep([]int{q}, calc.Parse(args[0])), nil
				}},
			{name: "Stop Parallel", hqslang: operations.NameStopParallelBlock, symbol: "║",
				params: []string{"execution_time"}, example: "1e-6",
				build: func(q int, args []string) (operations.Operation, error) {
					return operations.NewPragmaStopParallelBlock([]int{q}, calc.Parse(args[0])), nil
				}},
			{name: "Repeat Gate", hqslang: operations.NameRepeatGate, symbol: "×n",
				params: []string{"repetition_coefficient"}, example: "3",
				build: func(_ int, args []string) (operations.Operation, error) {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return nil, errors.Wrap(err, "repetition_coefficient")
					}
					return operations.NewPragmaRepeatGate(n), nil
				}},
		},
	},
	{
		name: "Noise",
		items: []menuItem{
			{name: "Damping", hqslang: operations.NameDamping, symbol: "Ɣ",
				params: []string{"gate_time", "rate"}, example: "1, 0.01",
				build: func(q int, args []string) (operations.Operation, error) {
					return operations.NewPragmaDamping(q, calc.Parse(args[0]), calc.Parse(args[1])), nil
				}},
			{name: "Depolarising", hqslang: operations.NameDepolarising, symbol: "Δ",
				params: []string{"gate_time", "rate"}, example: "1, 0.01",
				build: func(q int, args []string) (operations.Operation, error) {
					return operations.NewPragmaDepolarising(q, calc.Parse(args[0]), calc.Parse(args[1])), nil
				}},
			{name: "Dephasing", hqslang: operations.NameDephasing, symbol: "φ",
				params: []string{"gate_time", "rate"}, example: "1, 0.01",
				build: func(q int, args []string) (operations.Operation, error) {
					return operations.NewPragmaDephasing(q, calc.Parse(args[0]), calc.Parse(args[1])), nil
				}},
			{name: "Random Noise", hqslang: operations.NameRandomNoise, symbol: "≈",
				params: []string{"gate_time", "depolarising_rate", "dephasing_rate"}, example: "1, 0.01, 0.02",
				build: func(q int, args []string) (operations.Operation, error) {
					return operations.NewPragmaRandomNoise(q, calc.Parse(args[0]), calc.Parse(args[1]), calc.Parse(args[2])), nil
				}},
		},
	},
	{
		name: "Global",
		items: []menuItem{
			{name: "Global Phase", hqslang: operations.NameGlobalPhase, symbol: "eⁱᶿ",
				params: []string{"phase"}, example: "pi/2",
				build: func(_ int, args []string) (operations.Operation, error) {
					return operations.NewPragmaGlobalPhase(calc.Parse(args[0])), nil
				}},
			{name: "Boost Noise", hqslang: operations.NameBoostNoise, symbol: "↑N",
				params: []string{"noise_coefficient"}, example: "1.5",
				build: func(_ int, args []string) (operations.Operation, error) {
					return operations.NewPragmaBoostNoise(calc.Parse(args[0])), nil
				}},
		},
	},
	{
		name: "Decomposition",
		items: []menuItem{
			{name: "Start Block", hqslang: operations.NameStartDecompositionBlock, symbol: "[",
				build: func(q int, _ []string) (operations.Operation, error) {
					return operations.NewPragmaStartDecompositionBlock([]int{q}, map[int]int{q: q}), nil
				}},
			{name: "Stop Block", hqslang: operations.NameStopDecompositionBlock, symbol: "]",
				build: func(q int, _ []string) (operations.Operation, error) {
					return operations.NewPragmaStopDecompositionBlock([]int{q}), nil
				}},
			{name: "Overrotation", hqslang: operations.NameOverrotation, symbol: "~R",
				params: []string{"gate", "amplitude", "variance"}, example: "RotateX, 0.1, 0.01",
				build: func(q int, args []string) (operations.Operation, error) {
					amplitude, err := strconv.ParseFloat(args[1], 64)
					if err != nil {
						return nil, errors.Wrap(err, "amplitude")
					}
					variance, err := strconv.ParseFloat(args[2], 64)
					if err != nil {
						return nil, errors.Wrap(err, "variance")
					}
					return operations.NewPragmaOverrotation(args[0], []int{q}, amplitude, variance), nil
				}},
		},
	},
}

// buildItem splits the raw argument line and builds the selected item.
func buildItem(item menuItem, qubit int, raw string) (operations.Operation, error) {
	var args []string
	if strings.TrimSpace(raw) != "" {
		for _, a := range strings.Split(raw, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}
	if len(args) != len(item.params) {
		return nil, errors.Errorf("%s expects %d argument(s): %s", item.hqslang, len(item.params), strings.Join(item.params, ", "))
	}
	return item.build(qubit, args)
}

// renderMenu renders the floating PRAGMA picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add PRAGMA"))
	sb.WriteString("\n")

	for i, cat := range pragmaMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(pragmaMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 56)))
	sb.WriteString("\n")

	cat := pragmaMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(opStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if len(item.params) > 0 {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.example)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
