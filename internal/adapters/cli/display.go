package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"inventory-engine/internal/app"
	"inventory-engine/internal/core"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAlerts(w io.Writer, alerts []core.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No unread alerts.")
		return
	}
	fmt.Fprintf(w, "%-6s %-8s %-18s %-9s %s\n", "ID", "SEVERITY", "TYPE", "ENTITY", "MESSAGE")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, a := range alerts {
		entity := fmt.Sprintf("%s#%d", strings.ToLower(string(a.EntityKind)), a.EntityID)
		fmt.Fprintf(w, "%-6d %-8s %-18s %-9s %s\n", a.ID, a.Severity, a.Type, entity, a.Message)
	}
}

func printABC(w io.Writer, res *app.ABCResult) {
	fmt.Fprintf(w, "%-4s %-30s %14s %10s\n", "CAT", "PRODUCT", "SALES VALUE", "CUM %")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, c := range res.Classifications {
		fmt.Fprintf(w, "%-4s %-30s %14s %10s\n", c.Category, c.ProductName, c.SalesValue.StringFixed(2), c.CumulativePct.StringFixed(2))
	}
}

func printIntegrity(w io.Writer, res *app.IntegrityResult) {
	if res.OK {
		fmt.Fprintln(w, "All integrity checks passed.")
		return
	}
	fmt.Fprintf(w, "%d integrity issue(s):\n", len(res.Issues))
	for _, is := range res.Issues {
		fmt.Fprintf(w, "  [%s] #%d %s\n", is.Check, is.EntityID, is.Detail)
	}
}
