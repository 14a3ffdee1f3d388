package rollup

import "github.com/ncecere/cursor_port_sync/internal/cursorapi"

// AggregateAiCodeChanges groups AI-assisted edit events by user email and
// returns one rollup record per user, in first-seen user order. Unrecognized
// source tags count toward the overall totals only, not the tab/composer
// sub-buckets.
func AggregateAiCodeChanges(org string, dayStartMS int64, changes []cursorapi.AiCodeChangeRow) []AiCodeChangeRecord {
	grouped := make(map[string][]cursorapi.AiCodeChangeRow)
	var order []string
	for _, change := range changes {
		email := emailOrUnknown(change.UserEmail)
		if _, seen := grouped[email]; !seen {
			order = append(order, email)
		}
		grouped[email] = append(grouped[email], change)
	}

	dateISO := EpochMSToDayISO(dayStartMS)
	records := make([]AiCodeChangeRecord, 0, len(order))

	for _, email := range order {
		userChanges := grouped[email]
		var totals AiCodeChangeTotals
		models := NewFreqTable()
		extensions := NewFreqTable()
		sources := NewFreqTable()

		for _, change := range userChanges {
			totals.TotalChanges++
			totals.TotalLinesAdded += change.TotalLinesAdded
			totals.TotalLinesDeleted += change.TotalLinesDeleted

			sources.Observe(change.Source)
			switch change.Source {
			case cursorapi.SourceTab:
				totals.TabChanges++
				totals.TabLinesAdded += change.TotalLinesAdded
				totals.TabLinesDeleted += change.TotalLinesDeleted
			case cursorapi.SourceComposer:
				totals.ComposerChanges++
				totals.ComposerLinesAdded += change.TotalLinesAdded
				totals.ComposerLinesDeleted += change.TotalLinesDeleted
			}

			models.Observe(change.Model)
			for _, file := range change.Metadata {
				extensions.Observe(file.FileExtension)
			}
		}

		totals.UniqueFileExtensions = int64(extensions.Len())
		if model, ok := models.Top(); ok {
			totals.MostUsedModel = model
		}

		var tabVsComposer *float64
		if totals.ComposerChanges > 0 {
			ratio := perCount(totals.TabChanges, totals.ComposerChanges)
			tabVsComposer = &ratio
		}

		breakdown := AiCodeChangeBreakdown{
			Changes:            userChanges,
			SourceDistribution: sources.Entries(),
			ModelUsage:         models.Entries(),
			FileExtensions:     extensions.Entries(),
			Productivity: ProductivityMetrics{
				AverageLinesPerChange: perCount(totals.TotalLinesAdded+totals.TotalLinesDeleted, totals.TotalChanges),
				TabVsComposerRatio:    tabVsComposer,
				TabEfficiency:         perCount(totals.TabLinesAdded+totals.TabLinesDeleted, totals.TabChanges),
				ComposerEfficiency:    perCount(totals.ComposerLinesAdded+totals.ComposerLinesDeleted, totals.ComposerChanges),
			},
		}

		records = append(records, AiCodeChangeRecord{
			Identifier:    AiCodeChangeIdentifier(org, email, dateISO),
			Org:           org,
			UserEmail:     email,
			RecordDateISO: dateISO,
			Totals:        totals,
			Breakdown:     breakdown,
		})
	}
	return records
}
