package notify

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/pharmez/medimate/internal/adherence"
)

func renderDoseReminder(medicineName, dosage, instructions, slot string) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 10px;">`)
	b.WriteString(`<h2 style="color: #008080;">Time to take your medication</h2>`)
	b.WriteString(`<p>Hello,</p>`)
	fmt.Fprintf(&b, `<p>This is a reminder to take the following medication scheduled for <strong>%s</strong>:</p>`, html.EscapeString(slot))
	b.WriteString(`<div style="background-color: #f8f9fa; padding: 15px; border-left: 4px solid #008080; margin: 20px 0;">`)
	fmt.Fprintf(&b, `<h3 style="margin: 0; color: #008080;">%s</h3>`, html.EscapeString(medicineName))
	fmt.Fprintf(&b, `<p style="margin: 5px 0 0;"><strong>Dosage:</strong> %s</p>`, html.EscapeString(dosage))
	if instructions != "" {
		fmt.Fprintf(&b, `<p style="margin: 5px 0 0;"><strong>Instructions:</strong> %s</p>`, html.EscapeString(instructions))
	}
	b.WriteString(`</div>`)
	b.WriteString(`<p>Please log this dose in your medimate dashboard.</p>`)
	b.WriteString(`<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">`)
	b.WriteString(`<small style="color: #666;">medimate health assistant</small>`)
	b.WriteString(`</div></body></html>`)

	return b.String()
}

func renderAdherenceReport(userName string, stats *adherence.Stats) string {
	var b strings.Builder

	row := func(label, value, style string) {
		fmt.Fprintf(&b,
			`<tr><td style="padding: 10px; border: 1px solid #ddd;">%s</td><td style="padding: 10px; border: 1px solid #ddd;%s">%s</td></tr>`,
			label, style, value)
	}

	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	b.WriteString(`<h2 style="color: #008080;">Medication Adherence Report</h2>`)
	fmt.Fprintf(&b, `<p>Hello %s,</p>`, html.EscapeString(userName))
	fmt.Fprintf(&b, `<p>Here is your medication adherence summary for the last %d days.</p>`, stats.PeriodDays)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%; max-width: 600px;">`)
	b.WriteString(`<tr style="background-color: #f2f2f2;"><th style="padding: 10px; border: 1px solid #ddd;">Metric</th><th style="padding: 10px; border: 1px solid #ddd;">Value</th></tr>`)
	row("Total Doses", strconv.Itoa(stats.TotalDoses), "")
	row("Taken", strconv.Itoa(stats.TakenCount), " color: green;")
	row("Missed", strconv.Itoa(stats.MissedCount), " color: red;")
	row("Adherence Rate", fmt.Sprintf("<strong>%.1f%%</strong>", stats.AdherenceRate), "")
	b.WriteString(`</table>`)
	b.WriteString(`<p>A detailed CSV report is attached.</p>`)
	b.WriteString(`<p>Stay healthy,<br>medimate</p>`)
	b.WriteString(`</body></html>`)

	return b.String()
}

func statsCSV(stats *adherence.Stats) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"medicine_name", "dosage", "times", "total_doses", "taken", "missed", "adherence_rate"}); err != nil {
		return nil, err
	}
	for _, med := range stats.Details {
		rec := []string{
			med.MedicineName,
			med.Dosage,
			strings.Join(med.Times, " "),
			strconv.Itoa(med.TotalDoses),
			strconv.Itoa(med.TakenCount),
			strconv.Itoa(med.MissedCount),
			fmt.Sprintf("%.1f", med.AdherenceRate),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
