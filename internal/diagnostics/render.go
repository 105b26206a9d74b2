package diagnostics

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"

	"github.com/jopamo/hxm/logger"
)

// RenderTable formats a Snapshot as the pterm table --dump-stats and
// SIGUSR1 print to stdout. Map-valued fields (per-layer client counts)
// are sorted by key so output is stable across runs.
func RenderTable(snap Snapshot) (string, error) {
	rows := [][]string{
		{"metric", "value"},
		{"trace_id", snap.TraceID},
		{"tick_rate_hz", fmt.Sprintf("%.2f", snap.TickRate)},
		{"last_tick_ms", fmt.Sprintf("%.3f", snap.LastTickMS)},
		{"events_ingested", fmt.Sprintf("%d", snap.EventsIngested)},
		{"events_coalesced", fmt.Sprintf("%d", snap.EventsCoalesced)},
		{"coalescing_ratio", fmt.Sprintf("%.3f", snap.BucketerCoalescingRatio)},
		{"cookie_load_factor", fmt.Sprintf("%.3f", snap.CookieLoadFactor)},
		{"cookie_oldest_age_ms", fmt.Sprintf("%.3f", snap.CookieOldestAgeMS)},
		{"cookies_resolved", fmt.Sprintf("%d", snap.CookiesResolved)},
		{"cookies_abandoned", fmt.Sprintf("%d", snap.CookiesAbandoned)},
		{"focus_history_len", fmt.Sprintf("%d", snap.FocusHistoryLen)},
		{"commit_p50_ms", fmt.Sprintf("%.3f", snap.CommitDurationP50MS)},
		{"commit_p99_ms", fmt.Sprintf("%.3f", snap.CommitDurationP99MS)},
		{"process_rss_bytes", fmt.Sprintf("%d", snap.ProcessRSSBytes)},
		{"process_cpu_pct", fmt.Sprintf("%.2f", snap.ProcessCPUPct)},
	}

	layers := make([]string, 0, len(snap.ClientsPerLayer))
	for l := range snap.ClientsPerLayer {
		layers = append(layers, l)
	}
	sort.Strings(layers)
	for _, l := range layers {
		rows = append(rows, []string{"layer_clients:" + l, fmt.Sprintf("%d", snap.ClientsPerLayer[l])})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
}

// PrintTable renders and writes the snapshot table directly to stdout,
// the path --dump-stats and SIGUSR1 both use.
func PrintTable(snap Snapshot) error {
	out, err := RenderTable(snap)
	if err != nil {
		return err
	}
	pterm.Println(out)
	return nil
}

// LogSnapshot emits the snapshot as a single structured log line, for
// consumers that scrape logs rather than parse --dump-stats output.
func LogSnapshot(snap Snapshot) {
	logger.TickInfow("diagnostics snapshot",
		"trace_id", snap.TraceID,
		"tick_rate_hz", snap.TickRate,
		"last_tick_ms", snap.LastTickMS,
		"events_ingested", snap.EventsIngested,
		"events_coalesced", snap.EventsCoalesced,
		"coalescing_ratio", snap.BucketerCoalescingRatio,
		"cookie_load_factor", snap.CookieLoadFactor,
		"cookie_oldest_age_ms", snap.CookieOldestAgeMS,
		"cookies_resolved", snap.CookiesResolved,
		"cookies_abandoned", snap.CookiesAbandoned,
		"focus_history_len", snap.FocusHistoryLen,
		"commit_p50_ms", snap.CommitDurationP50MS,
		"commit_p99_ms", snap.CommitDurationP99MS,
		"process_rss_bytes", snap.ProcessRSSBytes,
		"process_cpu_pct", snap.ProcessCPUPct,
		"clients_per_layer", snap.ClientsPerLayer,
	)
}
