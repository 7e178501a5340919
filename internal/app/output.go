package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/deploygrid/internal/deployer"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
	"github.com/specialistvlad/deploygrid/internal/resolver"
)

type reportJSON struct {
	RunID    string      `json:"run_id"`
	State    string      `json:"state"`
	PlanHash string      `json:"plan_hash,omitempty"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished"`
	Entries  []entryJSON `json:"entries"`
}

type entryJSON struct {
	Name     string          `json:"name"`
	Sequence int             `json:"sequence"`
	Status   string          `json:"status"`
	Handle   string          `json:"handle,omitempty"`
	Error    string          `json:"error,omitempty"`
	Config   json.RawMessage `json:"config,omitempty"`
}

type planJSON struct {
	Hash   string              `json:"hash"`
	Order  []string            `json:"order"`
	Levels [][]string          `json:"levels"`
	Deps   map[string][]string `json:"dependencies"`
}

func (a *App) writeReport(report *orchestrator.Report) error {
	if a.config.OutputFormat == OutputJSON {
		return a.writeJSON(toReportJSON(report))
	}

	fmt.Fprintf(a.outW, "RUN   %s\nSTATE %s\n\n", report.RunID, report.State)
	if len(report.Entries) == 0 {
		fmt.Fprintln(a.outW, "No components deployed.")
		return nil
	}

	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOMPONENT\tSTATUS\tHANDLE\tERROR")
	for _, e := range report.Entries {
		errText := "-"
		if e.Err != nil {
			errText = e.Err.Error()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Sequence, e.Name, e.Status, dash(e.Handle.String()), errText)
	}
	return tw.Flush()
}

func (a *App) writePlan(plan *resolver.Plan) error {
	if a.config.OutputFormat == OutputJSON {
		out := planJSON{
			Hash:   plan.Hash(),
			Order:  plan.Order(),
			Levels: plan.Levels(),
			Deps:   make(map[string][]string, plan.Len()),
		}
		for _, name := range out.Order {
			out.Deps[name] = plan.Dependencies(name)
		}
		return a.writeJSON(out)
	}

	fmt.Fprintf(a.outW, "PLAN %s\n\n", plan.Hash())
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLEVEL\tCOMPONENT\tDEPENDS ON")
	for i, name := range plan.Order() {
		depth, _ := plan.Depth(name)
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, depth, name, dash(strings.Join(plan.Dependencies(name), ", ")))
	}
	return tw.Flush()
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func toReportJSON(report *orchestrator.Report) reportJSON {
	out := reportJSON{
		RunID:    report.RunID,
		State:    string(report.State),
		Started:  report.Started,
		Finished: report.Finished,
		Entries:  make([]entryJSON, 0, len(report.Entries)),
	}
	if report.Plan != nil {
		out.PlanHash = report.Plan.Hash()
	}
	for _, e := range report.Entries {
		ej := entryJSON{
			Name:     e.Name,
			Sequence: e.Sequence,
			Status:   string(e.Status),
			Handle:   e.Handle.String(),
		}
		if e.Err != nil {
			ej.Error = e.Err.Error()
		}
		if e.Config != nil {
			if buf, err := deployer.MarshalConfig(e.Config); err == nil {
				ej.Config = buf
			}
		}
		out.Entries = append(out.Entries, ej)
	}
	return out
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
