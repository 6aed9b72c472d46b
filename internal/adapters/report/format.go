package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/stockwatch/internal/domain/model"
)

// timestampLayout is used for every human-facing date.
const timestampLayout = "02/01/2006 15:04:05"

// Subject returns the mail subject line for an outcome.
func Subject(o *model.RunOutcome) string {
	n := len(o.AlertGroups)
	if n == 1 {
		return "Alerta de estoque baixo: 1 evento"
	}
	return fmt.Sprintf("Alerta de estoque baixo: %d eventos", n)
}

// FormatText renders the outcome as a plain-text report.
func FormatText(o *model.RunOutcome, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Relatorio de estoque (%s)\n", o.FinishedAt.In(loc).Format(timestampLayout))
	fmt.Fprintf(&b, "Execucao: %s\n", o.RunID)
	fmt.Fprintf(&b, "Eventos consultados: %d, sucesso: %d, falhas: %d, carrinho fechado: %d\n\n",
		o.Identifiers, o.Successes, len(o.Failures), len(o.NotFound))

	for _, g := range o.AlertGroups {
		fmt.Fprintf(&b, "%s\n", g.EventName)
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "  - %s: %d\n", e.Label, e.Quantity)
		}
		b.WriteString("\n")
	}

	if len(o.Failures) > 0 {
		b.WriteString("Falhas:\n")
		for _, f := range o.Failures {
			fmt.Fprintf(&b, "  - %s: %s\n", f.Identifier, f.Message)
		}
	}
	return b.String()
}
