package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/raggleton/htcondenser/internal/status"
)

// Renderer turns status snapshots into terminal output using a compiled
// style mapping. It holds no mutable state and never touches the store.
type Renderer struct {
	styles *Styles
}

// New builds a renderer; a nil styles argument uses the defaults.
func New(styles *Styles) *Renderer {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Renderer{styles: styles}
}

// Table writes the full per-node view: a title line, one coloured row per
// node, the one-line summary, and the reporting times when the feed
// includes them.
func (r *Renderer) Table(w io.Writer, title string, snap status.Snapshot) {
	nodes := snap.Nodes()

	headers := []string{"Node", "Status", "Retries", "Detail"}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		detail := n.Detail
		if n.DetailedCode != "" {
			detail = strings.TrimSpace(detail + " [" + n.DetailedCode + "]")
		}
		rows = append(rows, []string{n.Name, n.State.String(), fmt.Sprintf("%d", n.Retries), detail})
	}
	widths := columnWidths(headers, rows)
	format := rowFormat(widths)

	summaryLine, summaryState, summaryWidth := r.summaryRow(snap)
	rule := max(lineWidth(widths), summaryWidth) + 1

	if title != "" {
		r.styles.section("filename").Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat("~", rule))
	fmt.Fprintf(w, format, toAny(headers)...)
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for i, row := range rows {
		r.styles.state(nodes[i].State).Fprintf(w, format, toAny(row)...)
	}
	fmt.Fprintln(w, strings.Repeat("-", rule))

	fmt.Fprintln(w, strings.Repeat("~", rule))
	r.styles.state(summaryState).Fprint(w, summaryLine)
	fmt.Fprintln(w)

	if snap.Info != nil {
		fmt.Fprintln(w, strings.Repeat("-", rule))
		fmt.Fprintln(w, "Status recorded at:", snap.Info.RecordedAt)
		r.styles.section("next_update").Fprintln(w, "Next update:        "+snap.Info.NextUpdate)
	}
	fmt.Fprintln(w, strings.Repeat("~", rule))
}

// Summary writes only the condensed one-line-per-graph view.
func (r *Renderer) Summary(w io.Writer, title string, snap status.Snapshot) {
	if title != "" {
		r.styles.section("filename").Fprintln(w, title)
	}
	line, state, _ := r.summaryRow(snap)
	r.styles.state(state).Fprint(w, line)
	fmt.Fprintln(w)
}

// summaryRow builds the condensed counters line and picks the state that
// colours it.
func (r *Renderer) summaryRow(snap status.Snapshot) (string, status.State, int) {
	counts := snap.Counts()
	total := snap.Len()
	done := counts[status.Done]
	failed := counts[status.Failed] + counts[status.Error]
	running := counts[status.Running]
	idle := counts[status.Idle]
	queued := idle + running
	dagStatus := overallState(snap).String()

	// Prefer the scheduler's own verdict and counters when the feed
	// carries a whole-graph record.
	if s := snap.Summary; s != nil {
		dagStatus = s.Status
		total = s.Total
		done = s.Done
		failed = s.Failed
		queued = s.Queued
		idle = s.Idle
	}

	headers := []string{"DAG Status", "Total", "Queued", "Idle", "Running", "Failed", "Done", "Done %"}
	row := []string{
		dagStatus,
		fmt.Sprintf("%d", total),
		fmt.Sprintf("%d", queued),
		fmt.Sprintf("%d", idle),
		fmt.Sprintf("%d", running),
		fmt.Sprintf("%d", failed),
		fmt.Sprintf("%d", done),
		percent(done, total),
	}
	widths := columnWidths(headers, [][]string{row})
	format := rowFormat(widths)

	var b strings.Builder
	fmt.Fprintf(&b, format, toAny(headers)...)
	b.WriteString(strings.Repeat("-", lineWidth(widths)+1))
	b.WriteString("\n")
	line := fmt.Sprintf(strings.TrimSuffix(format, "\n"), toAny(row)...)
	return b.String() + line, overallState(snap), lineWidth(widths)
}

// overallState condenses a snapshot into the single state used to colour
// the summary row.
func overallState(snap status.Snapshot) status.State {
	if s := snap.Summary; s != nil {
		st, _ := status.MapCode(s.Status, "")
		if s.Status != "" {
			return st
		}
	}
	counts := snap.Counts()
	switch {
	case snap.AllDone():
		return status.Done
	case counts[status.Error] > 0:
		return status.Error
	case counts[status.Failed] > 0:
		return status.Failed
	case counts[status.Running] > 0:
		return status.Running
	case counts[status.Idle] > 0:
		return status.Idle
	default:
		return status.Unready
	}
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", 100*float64(part)/float64(total))
}

// columnWidths sizes each column to fit its header and widest cell.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func rowFormat(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = fmt.Sprintf("%%-%dv", w)
	}
	return strings.Join(parts, " | ") + "\n"
}

func lineWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + 3*(len(widths)-1)
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, cell := range row {
		out[i] = cell
	}
	return out
}
