// Package report renders analysis reports for the terminal or as JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/aglab/internal/analysis"
	"github.com/emiliopalmerini/aglab/internal/pkg/tui/components"
	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/aglab/internal/util"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (use text or json)", s)
}

// Write renders r in the given format. Width bounds the text layout.
func Write(w io.Writer, r analysis.Report, format Format, width int) error {
	if format == FormatJSON {
		return JSON(w, r)
	}
	return Text(w, r, width)
}

const barWidth = 20

type column struct {
	title string
	width int
	right bool
}

var participantColumns = []column{
	{"Participant", 12, false},
	{"Type", 13, false},
	{"Started", 11, false},
	{"Train acc", 10, true},
	{"1st try", 8, true},
	{"Att/trial", 10, true},
	{"Train RT", 9, true},
	{"Test acc", 9, true},
	{"Test RT", 8, true},
	{"Inv", 4, true},
	{"Omit", 5, true},
	{"d'", 6, true},
}

// Text writes the report as styled terminal text.
func Text(w io.Writer, r analysis.Report, width int) error {
	s := theme.Default()
	if width <= 0 {
		width = 100
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Artificial grammar learning: analysis"))
	b.WriteString("\n")
	meta := fmt.Sprintf("%d participants", len(r.Participants))
	if r.DataDir != "" {
		meta = r.DataDir + "  " + meta
	}
	b.WriteString(s.Muted.Render(meta))
	b.WriteString("\n\n")

	if len(r.Participants) == 0 {
		b.WriteString(s.Warning.Render("No participant data found."))
		b.WriteString("\n")
		writeSkipped(&b, r.Skipped)
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(RenderMetricCards(groupCards(r.Group), width))
	b.WriteString("\n\n")

	b.WriteString(s.Subtitle.Render("Participants"))
	b.WriteString("\n")
	b.WriteString(participantTable(r.Participants))
	b.WriteString("\n")

	b.WriteString(s.Subtitle.Render("By grammaticality (all trials)"))
	b.WriteString("\n")
	b.WriteString(grammaticalityTable(r.Group.ByGrammaticality))
	b.WriteString("\n")

	b.WriteString(s.Subtitle.Render("Overall"))
	b.WriteString("\n")
	o := r.Group.Overall
	fmt.Fprintf(&b, "training  %s  %s\n", padLeft(util.FormatPercent(o.TrainingAccuracy), 7), util.FormatMs(o.TrainingMeanRTMs))
	fmt.Fprintf(&b, "test      %s  %s\n\n", padLeft(util.FormatPercent(o.TestAccuracy), 7), util.FormatMs(o.TestMeanRTMs))

	b.WriteString(s.Subtitle.Render("Accuracy"))
	b.WriteString("\n")
	for _, p := range r.Participants {
		id := cell(p.Session.ParticipantID, 12, false)
		fmt.Fprintf(&b, "%s training %s %s\n", id, components.RenderBar(p.Training.Rates.AttemptAccuracy, barWidth), util.FormatPercent(p.Training.Rates.AttemptAccuracy))
		fmt.Fprintf(&b, "%s test     %s %s\n", cell("", 12, false), components.RenderBar(p.Test.Rates.Accuracy, barWidth), util.FormatPercent(p.Test.Rates.Accuracy))
	}
	b.WriteString("\n")

	b.WriteString(s.Subtitle.Render("Response times over trials"))
	b.WriteString("\n")
	for _, p := range r.Participants {
		id := cell(p.Session.ParticipantID, 12, false)
		fmt.Fprintf(&b, "%s training %s\n", id, sparkline(p.TrainingRTs, width-22))
		fmt.Fprintf(&b, "%s test     %s\n", cell("", 12, false), sparkline(p.TestRTs, width-22))
	}

	writeSkipped(&b, r.Skipped)

	_, err := io.WriteString(w, b.String())
	return err
}

func groupCards(g analysis.GroupReport) []MetricCard {
	return []MetricCard{
		{
			Title:    "Training accuracy",
			Value:    util.FormatPercent(g.TrainingAccuracy.Mean),
			Subtitle: fmt.Sprintf("SD %s  n=%d", util.FormatPercent(g.TrainingAccuracy.SD), g.TrainingAccuracy.N),
		},
		{
			Title:    "First-attempt accuracy",
			Value:    util.FormatPercent(g.FirstAttemptAccuracy.Mean),
			Subtitle: fmt.Sprintf("%.2f attempts per trial", g.AttemptsPerTrial.Mean),
		},
		{
			Title:    "Test accuracy",
			Value:    util.FormatPercent(g.TestAccuracy.Mean),
			Subtitle: fmt.Sprintf("SD %s  n=%d", util.FormatPercent(g.TestAccuracy.SD), g.TestAccuracy.N),
		},
		{
			Title:    "Sensitivity d'",
			Value:    fmt.Sprintf("%.2f", g.DPrime.Mean),
			Subtitle: fmt.Sprintf("SD %.2f  correct RT %s", g.DPrime.SD, util.FormatMs(g.TestMeanCorrectRTMs.Mean)),
		},
	}
}

func participantTable(ps []analysis.ParticipantReport) string {
	s := theme.Default()
	var b strings.Builder

	header := make([]string, len(participantColumns))
	for i, c := range participantColumns {
		header[i] = cell(c.title, c.width, c.right)
	}
	b.WriteString(s.Bold.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	for _, p := range ps {
		tr, te := p.Training, p.Test
		values := []string{
			p.Session.ParticipantID,
			string(p.Session.ExperimentType),
			util.FormatDateISO(p.Session.StartedAt),
			util.FormatPercent(tr.Rates.AttemptAccuracy),
			util.FormatPercent(tr.Rates.FirstAttemptAccuracy),
			fmt.Sprintf("%.2f", tr.Rates.AttemptsPerTrial),
			rtOrDash(tr.MeanCorrectRTMs, tr.Counts.CorrectAttempts),
			util.FormatPercent(te.Rates.Accuracy),
			rtOrDash(te.MeanCorrectRTMs, te.Counts.Correct),
			fmt.Sprintf("%d", te.Counts.Invalid),
			fmt.Sprintf("%d", te.Counts.Omitted),
			fmt.Sprintf("%.2f", te.DPrime),
		}
		row := make([]string, len(values))
		for i, v := range values {
			c := participantColumns[i]
			row[i] = cell(v, c.width, c.right)
		}
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func grammaticalityTable(rows []analysis.GrammaticalityRow) string {
	s := theme.Default()
	if len(rows) == 0 {
		return s.Muted.Render("no test trials") + "\n"
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			cell(r.Label(), 14, false),
			cell(fmt.Sprintf("%d/%d", r.Correct, r.Trials), 9, true),
			components.RenderBar(r.Accuracy, barWidth),
			cell(util.FormatPercent(r.Accuracy), 7, true),
			util.FormatMs(r.MeanRTMs),
		)
	}
	return b.String()
}

func writeSkipped(b *strings.Builder, skipped []analysis.SkippedDir) {
	if len(skipped) == 0 {
		return
	}
	s := theme.Default()
	b.WriteString("\n")
	b.WriteString(s.Warning.Render(fmt.Sprintf("Skipped %d directories", len(skipped))))
	b.WriteString("\n")
	for _, d := range skipped {
		fmt.Fprintf(b, "  %s: %s\n", d.Dir, s.Muted.Render(d.Reason))
	}
}

// sparkline keeps the most recent values that fit the width.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return theme.Default().Muted.Render("-")
	}
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	return components.RenderSparkline(values)
}

func rtOrDash(ms float64, n int64) string {
	if n == 0 {
		return "-"
	}
	return util.FormatMs(ms)
}

func cell(v string, width int, right bool) string {
	style := lipgloss.NewStyle().Width(width).MaxWidth(width)
	if right {
		style = style.Align(lipgloss.Right)
	}
	return style.Render(v)
}

func padLeft(v string, width int) string {
	return cell(v, width, true)
}
