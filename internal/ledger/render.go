package ledger

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"calcshell/pkg/calctypes"
)

// EmptyHistoryMessage is rendered instead of a table when there is nothing to show.
const EmptyHistoryMessage = "No history recorded."

// TableHeaders are the columns of the history table.
var TableHeaders = []string{"#", "Operation", "Operand 1", "Operand 2", "Result"}

// TableStyle controls how the history table is drawn.
type TableStyle struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style
	// Diagnostic styles rows that could not be decomposed into two operands.
	Diagnostic lipgloss.Style
	// Plain strips every ANSI sequence from the rendered table.
	Plain bool
}

// PlainTableStyle returns an unstyled table style.
func PlainTableStyle() TableStyle {
	return TableStyle{
		Header:     lipgloss.NewStyle().Padding(0, 1),
		Cell:       lipgloss.NewStyle().Padding(0, 1),
		Border:     lipgloss.NewStyle(),
		Diagnostic: lipgloss.NewStyle().Padding(0, 1),
		Plain:      true,
	}
}

// Render draws calcs as a table with one row per calculation. A calculation whose operands are
// not exactly two is rendered as a diagnostic row and reported with ErrFormat; the rest of the
// table is still drawn.
func Render(calcs []calctypes.Calculation, style TableStyle) (string, error) {
	if len(calcs) == 0 {
		return EmptyHistoryMessage, nil
	}

	var formatErr error
	diagnostic := make(map[int]bool)
	rows := make([][]string, 0, len(calcs))
	for i, calc := range calcs {
		index := strconv.Itoa(i + 1)
		operands := calc.Operands()
		if len(operands) != calctypes.OperandCount {
			diagnostic[i] = true
			if formatErr == nil {
				formatErr = fmt.Errorf("%w: record %d has %d operands, expected %d",
					calctypes.ErrFormat, i+1, len(operands), calctypes.OperandCount)
			}
			rows = append(rows, []string{index, calc.Operation(), "?", "?", "unreadable record"})
			continue
		}
		rows = append(rows, []string{
			index,
			calc.Operation(),
			operands[0].String(),
			operands[1].String(),
			calc.Result().String(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(style.Border).
		Headers(TableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return style.Header
			case diagnostic[row]:
				return style.Diagnostic
			default:
				return style.Cell
			}
		})

	out := t.String()
	if style.Plain {
		out = ansi.Strip(out)
	}
	return out, formatErr
}
