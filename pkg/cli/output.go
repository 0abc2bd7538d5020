package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"costwise-hq/atlas/pkg/budget"
	"costwise-hq/atlas/pkg/orchestrator"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is a human-readable summary (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON, the same shape the HTTP API serves.
	FormatJSON OutputFormat = "json"
	// FormatCSV is one row per (provider, account) pair.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON, FormatCSV:
		return OutputFormat(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json, or csv)", s)
	}
}

// WriteCosts renders one aggregation pass in the requested format.
func WriteCosts(w io.Writer, format OutputFormat, resp *orchestrator.CostsResponse) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, resp)
	case FormatCSV:
		return writeCostsCSV(w, resp)
	default:
		return writeCostsText(w, resp)
	}
}

// WriteAlerts renders an alert evaluation in the requested format. CSV
// falls back to JSON; alerts have no natural tabular shape.
func WriteAlerts(w io.Writer, format OutputFormat, alerts []budget.Alert) error {
	if format == FormatText {
		if len(alerts) == 0 {
			_, err := fmt.Fprintln(w, "No budget alerts.")
			return err
		}
		for _, a := range alerts {
			scope := "consolidated"
			if a.AccountID != "" {
				scope = fmt.Sprintf("%s/%s", a.Provider, a.AccountID)
			}
			if _, err := fmt.Fprintf(w, "[%s] %s: %.1f%% of %.2f %s (threshold %.0f%%)\n",
				a.Month, scope, a.UsagePercentage, a.BudgetLimit, a.Currency, a.Threshold); err != nil {
				return err
			}
		}
		return nil
	}
	return writeJSON(w, map[string]any{"alerts": alerts})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCostsText(w io.Writer, resp *orchestrator.CostsResponse) error {
	fmt.Fprintf(w, "Period: %s to %s\n",
		resp.Period.From.Format("2006-01-02"), resp.Period.To.Format("2006-01-02"))
	fmt.Fprintf(w, "Total: %.2f %s", resp.Costs.Total, resp.Costs.DisplayCurrency)
	if resp.Costs.ChangePercent != nil {
		fmt.Fprintf(w, " (%+.1f%% vs previous period)", *resp.Costs.ChangePercent)
	}
	fmt.Fprintln(w)

	for _, p := range resp.Costs.Providers {
		fmt.Fprintf(w, "\n%s: %.2f %s\n", p.Provider, p.Amount, resp.Costs.DisplayCurrency)
		for _, a := range p.Accounts {
			fmt.Fprintf(w, "  %s (%s): %.2f\n", a.Name, a.AccountID, a.Amount)
		}
	}

	if len(resp.Errors) > 0 {
		fmt.Fprintf(w, "\n%d collector failure(s):\n", len(resp.Errors))
		for _, e := range resp.Errors {
			fmt.Fprintf(w, "  %s/%s: %s\n", e.Provider, e.AccountID, e.Message)
		}
	}
	return nil
}

func writeCostsCSV(w io.Writer, resp *orchestrator.CostsResponse) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"provider", "account_id", "account_name", "amount", "currency"}); err != nil {
		return err
	}
	for _, p := range resp.Costs.Providers {
		for _, a := range p.Accounts {
			row := []string{
				string(p.Provider),
				a.AccountID,
				a.Name,
				strconv.FormatFloat(a.Amount, 'f', 2, 64),
				resp.Costs.DisplayCurrency,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
