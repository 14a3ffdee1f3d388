package rollup

import "github.com/shopspring/decimal"

type teamAccum struct {
	totals  TeamTotals
	models  *FreqTable
	cents   decimal.Decimal
	members []string
}

// AggregateTeams groups per-user rollups by the supplied email→team mapping
// (case-sensitive exact match). Users without a mapping land in the synthetic
// "unknown" team and their emails are returned for caller-side reporting.
func AggregateTeams(org string, dayStartMS int64, userRecords []UserRecord, emailToTeam map[string]string) ([]TeamRecord, []string) {
	accums := make(map[string]*teamAccum)
	var order []string
	var unmapped []string

	for _, ur := range userRecords {
		team, ok := emailToTeam[ur.Totals.Email]
		if !ok {
			team = unknownKey
			unmapped = append(unmapped, ur.Totals.Email)
		}

		acc, seen := accums[team]
		if !seen {
			acc = &teamAccum{
				totals: TeamTotals{Team: team},
				models: NewFreqTable(),
			}
			accums[team] = acc
			order = append(order, team)
		}

		acc.members = append(acc.members, ur.Identifier)

		t := ur.Totals
		tt := &acc.totals
		if t.IsActive {
			tt.TotalActiveUsers++
		}
		tt.TotalAccepts += t.TotalAccepts
		tt.TotalRejects += t.TotalRejects
		tt.TotalTabsShown += t.TotalTabsShown
		tt.TotalTabsAccepted += t.TotalTabsAccepted
		tt.TotalLinesAdded += t.TotalLinesAdded
		tt.TotalLinesDeleted += t.TotalLinesDeleted
		tt.AcceptedLinesAdded += t.AcceptedLinesAdded
		tt.AcceptedLinesDeleted += t.AcceptedLinesDeleted
		tt.ComposerRequests += t.ComposerRequests
		tt.ChatRequests += t.ChatRequests
		tt.AgentRequests += t.AgentRequests
		tt.SubscriptionIncludedReqs += t.SubscriptionIncludedReqs
		tt.APIKeyReqs += t.APIKeyReqs
		tt.UsageBasedReqs += t.UsageBasedReqs
		tt.BugbotUsages += t.BugbotUsages
		tt.InputTokens += t.InputTokens
		tt.OutputTokens += t.OutputTokens
		tt.CacheWriteTokens += t.CacheWriteTokens
		tt.CacheReadTokens += t.CacheReadTokens
		acc.cents = acc.cents.Add(decimal.NewFromFloat(t.TotalCents))
		// One observation per member.
		acc.models.Observe(t.MostUsedModel)
	}

	dateISO := EpochMSToDayISO(dayStartMS)
	records := make([]TeamRecord, 0, len(order))
	for _, team := range order {
		acc := accums[team]
		if model, ok := acc.models.Top(); ok {
			acc.totals.MostUsedModel = model
		}
		acc.totals.TotalCents = acc.cents.InexactFloat64()
		records = append(records, TeamRecord{
			Identifier:    TeamIdentifier(org, team, dateISO),
			Org:           org,
			Team:          team,
			RecordDateISO: dateISO,
			Totals:        acc.totals,
			Breakdown:     TeamBreakdown{TeamMemberIdentifiers: acc.members},
		})
	}
	return records, unmapped
}
