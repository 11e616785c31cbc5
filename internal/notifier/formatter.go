package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PillarReport/internal/model"
	"PillarReport/internal/recorder"
)

// FormatRunSummary formats a batch run into a Telegram message.
func FormatRunSummary(s *model.RunSummary) string {
	var b strings.Builder

	succeeded := s.Succeeded()
	failed := s.FailedResults()
	icon := "✅"
	if len(failed) > 0 {
		icon = "⚠️"
	}
	b.WriteString(fmt.Sprintf("%s <b>Fundamentals reports</b> | %s\n\n", icon, s.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Written: %d/%d", len(succeeded), len(s.Results)))
	if d := s.FinishedAt.Sub(s.StartedAt); d > 0 {
		b.WriteString(fmt.Sprintf(" in %s", d.Round(time.Second)))
	}
	b.WriteString("\n")

	if len(succeeded) > 0 {
		b.WriteString("\n<b>Written:</b>\n")
		for _, r := range succeeded {
			b.WriteString(fmt.Sprintf("  %s → <code>%s</code>\n", html.EscapeString(r.Ticker), html.EscapeString(r.Path)))
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n<b>Failed:</b>\n")
		for _, r := range failed {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(r.Ticker), html.EscapeString(r.Err.Error())))
		}
	}
	if s.Aborted {
		b.WriteString("\nRun stopped before all tickers were processed.\n")
	}
	b.WriteString(fmt.Sprintf("\n<i>run %s</i>", html.EscapeString(s.RunID)))
	return b.String()
}

// FormatRunHistory formats stored runs, newest first.
func FormatRunHistory(runs []recorder.RunRecord) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		status := "ok"
		switch {
		case r.Aborted:
			status = "stopped"
		case r.Failed > 0:
			status = "partial"
		}
		b.WriteString(fmt.Sprintf("%s  %d/%d written (%s)\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.Succeeded, r.Succeeded+r.Failed, status))
		for _, t := range r.Tickers {
			if t.Error != "" {
				b.WriteString(fmt.Sprintf("  ✗ %s: %s\n", html.EscapeString(t.Ticker), html.EscapeString(t.Error)))
			}
		}
	}
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /report TICKER [TICKER...] - build reports now\n" +
		"• /run - build reports for the configured tickers\n" +
		"• /status - show the last run\n" +
		"• /history - show recent runs"
}
