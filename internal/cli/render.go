package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/garyjia/billed/internal/application/bills"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	accent  = lipgloss.Color("#D97706")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	errorStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(success)

	statusColors = map[string]lipgloss.Color{
		entity.LabelPending:  warning,
		entity.LabelAccepted: success,
		entity.LabelRefused:  danger,
	}
)

var billColumns = []string{"Type", "Nom", "Date", "Montant", "Statut", "Justificatif"}

const statusColumn = 4

// renderBills draws the listing rows in display order
func renderBills(rows []bills.BillView) string {
	if len(rows) == 0 {
		return dimStyle.Render("Aucune note de frais")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers(billColumns...)

	for _, row := range rows {
		t.Row(row.Bill.Type, row.Bill.Name, row.Date, formatAmount(row.Bill.Amount), row.Status, proofLabel(row.Bill))
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == statusColumn && row >= 0 && row < len(rows) {
			if color, ok := statusColors[rows[row].Status]; ok {
				return cellStyle.Foreground(color)
			}
		}
		return cellStyle
	})

	return t.Render()
}

func formatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2) + " €"
}

func proofLabel(bill entity.Bill) string {
	if !bills.ValidProofURL(bill.FileURL) || bill.FileName == nil {
		return "-"
	}
	return *bill.FileName
}

// terminal drives the new bill form controls on a terminal.
// The file input holds the path given on the command line.
type terminal struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	value  string
}

func newTerminal(out, errOut io.Writer, fileValue string) *terminal {
	return &terminal{out: out, errOut: errOut, value: fileValue}
}

func (t *terminal) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = ""
}

func (t *terminal) Show(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.errOut, errorStyle.Render(text))
}

func (t *terminal) Hide() {}

func (t *terminal) Navigate(route string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, dimStyle.Render("→ "+route))
}
