package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmez/medimate/internal/adherence"
)

// SendAdherenceReport emails an adherence summary with a per-medicine
// CSV attachment. Unlike dose reminders this is caller-initiated, so a
// disabled transport is surfaced as an error.
func (d *Dispatcher) SendAdherenceReport(ctx context.Context, toEmail, userName string, stats *adherence.Stats) error {
	if !d.transport.Enabled() {
		return fmt.Errorf("mail transport disabled")
	}
	if len(stats.Details) == 0 {
		return fmt.Errorf("no adherence data to report")
	}

	csvData, err := statsCSV(stats)
	if err != nil {
		return fmt.Errorf("failed to build report csv: %w", err)
	}

	msg := Message{
		To:       toEmail,
		Subject:  "Your medimate Adherence Report",
		HTMLBody: renderAdherenceReport(userName, stats),
		Attachments: []Attachment{{
			Filename: fmt.Sprintf("medimate_adherence_report_%s.csv", time.Now().Format("20060102_150405")),
			Content:  csvData,
		}},
	}

	return d.transport.Send(ctx, msg)
}
