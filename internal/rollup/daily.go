package rollup

import (
	"github.com/shopspring/decimal"

	"github.com/ncecere/cursor_port_sync/internal/cursorapi"
)

// Rows with no email are bucketed under this literal key.
const unknownKey = "unknown"

type userAccum struct {
	totals UserTotals
	models *FreqTable
	cents  decimal.Decimal
}

// userIndex keeps accumulators addressable by email while preserving
// first-seen order, so repeated runs over the same input produce identical
// record ordering.
type userIndex struct {
	order   []string
	byEmail map[string]*userAccum
}

func newUserIndex() *userIndex {
	return &userIndex{byEmail: make(map[string]*userAccum)}
}

func (idx *userIndex) create(email string, active bool) *userAccum {
	acc := &userAccum{
		totals: UserTotals{Email: email, IsActive: active},
		models: NewFreqTable(),
	}
	idx.byEmail[email] = acc
	idx.order = append(idx.order, email)
	return acc
}

// fromSummary ORs the row's activity flag into an existing accumulator.
func (idx *userIndex) fromSummary(email string, active bool) *userAccum {
	if acc, ok := idx.byEmail[email]; ok {
		acc.totals.IsActive = acc.totals.IsActive || active
		return acc
	}
	return idx.create(email, active)
}

// fromEvent marks a user active only when the event is the first sighting.
// A user whose daily summary says inactive stays inactive regardless of
// billing events.
func (idx *userIndex) fromEvent(email string) *userAccum {
	if acc, ok := idx.byEmail[email]; ok {
		return acc
	}
	return idx.create(email, true)
}

func emailOrUnknown(email string) string {
	if email == "" {
		return unknownKey
	}
	return email
}

// AggregateDaily folds one day of daily usage rows and token-billing events
// into per-user totals and the org rollup. Input order is significant: the
// most-used-model tie-break and all output ordering follow it.
func AggregateDaily(org string, dayStartMS int64, rows []cursorapi.DailyUsageRow, events []cursorapi.UsageEventRow) (OrgRecord, []UserRecord) {
	idx := newUserIndex()

	for _, row := range rows {
		acc := idx.fromSummary(emailOrUnknown(row.Email), row.IsActive)
		t := &acc.totals
		t.TotalAccepts += row.TotalAccepts
		t.TotalRejects += row.TotalRejects
		t.TotalTabsShown += row.TotalTabsShown
		t.TotalTabsAccepted += row.TotalTabsAccepted
		t.TotalLinesAdded += row.TotalLinesAdded
		t.TotalLinesDeleted += row.TotalLinesDeleted
		t.AcceptedLinesAdded += row.AcceptedLinesAdded
		t.AcceptedLinesDeleted += row.AcceptedLinesDeleted
		t.ComposerRequests += row.ComposerRequests
		t.ChatRequests += row.ChatRequests
		t.AgentRequests += row.AgentRequests
		t.SubscriptionIncludedReqs += row.SubscriptionIncludedReqs
		t.APIKeyReqs += row.APIKeyReqs
		t.UsageBasedReqs += row.UsageBasedReqs
		t.BugbotUsages += row.BugbotUsages
		acc.models.Observe(row.MostUsedModel)
	}

	for _, event := range events {
		// A user seen only through billing events counts as active.
		acc := idx.fromEvent(emailOrUnknown(event.UserEmail))
		acc.models.Observe(event.Model)
		if tu := event.TokenUsage; tu != nil {
			t := &acc.totals
			t.InputTokens += tu.InputTokens
			t.OutputTokens += tu.OutputTokens
			t.CacheWriteTokens += tu.CacheWriteTokens
			t.CacheReadTokens += tu.CacheReadTokens
			acc.cents = acc.cents.Add(decimal.NewFromFloat(tu.TotalCents))
		}
	}

	dateISO := EpochMSToDayISO(dayStartMS)

	var (
		orgTotals OrgTotals
		orgModels = NewFreqTable()
		orgCents  decimal.Decimal
	)
	userRecords := make([]UserRecord, 0, len(idx.order))
	users := make([]UserTotals, 0, len(idx.order))

	for _, email := range idx.order {
		acc := idx.byEmail[email]
		if model, ok := acc.models.Top(); ok {
			acc.totals.MostUsedModel = model
		}
		acc.totals.TotalCents = acc.cents.InexactFloat64()

		t := acc.totals
		orgTotals.TotalAccepts += t.TotalAccepts
		orgTotals.TotalRejects += t.TotalRejects
		orgTotals.TotalTabsShown += t.TotalTabsShown
		orgTotals.TotalTabsAccepted += t.TotalTabsAccepted
		orgTotals.TotalLinesAdded += t.TotalLinesAdded
		orgTotals.TotalLinesDeleted += t.TotalLinesDeleted
		orgTotals.AcceptedLinesAdded += t.AcceptedLinesAdded
		orgTotals.AcceptedLinesDeleted += t.AcceptedLinesDeleted
		orgTotals.ComposerRequests += t.ComposerRequests
		orgTotals.ChatRequests += t.ChatRequests
		orgTotals.AgentRequests += t.AgentRequests
		orgTotals.SubscriptionIncludedReqs += t.SubscriptionIncludedReqs
		orgTotals.APIKeyReqs += t.APIKeyReqs
		orgTotals.UsageBasedReqs += t.UsageBasedReqs
		orgTotals.BugbotUsages += t.BugbotUsages
		orgTotals.TotalInputTokens += t.InputTokens
		orgTotals.TotalOutputTokens += t.OutputTokens
		orgTotals.TotalCacheWriteTokens += t.CacheWriteTokens
		orgTotals.TotalCacheReadTokens += t.CacheReadTokens
		orgCents = orgCents.Add(acc.cents)
		if t.IsActive {
			orgTotals.TotalActiveUsers++
		}
		// One observation per user, not per raw row.
		orgModels.Observe(t.MostUsedModel)

		users = append(users, t)
		userRecords = append(userRecords, UserRecord{
			Identifier:    UserIdentifier(org, t.Email, dateISO),
			Org:           org,
			RecordDateISO: dateISO,
			Totals:        t,
		})
	}

	orgTotals.TotalCents = orgCents.InexactFloat64()
	if model, ok := orgModels.Top(); ok {
		orgTotals.MostUsedModel = model
	}

	orgRecord := OrgRecord{
		Identifier:    OrgIdentifier(org, dateISO),
		Org:           org,
		RecordDateISO: dateISO,
		Totals:        orgTotals,
		Breakdown:     OrgBreakdown{Users: users},
	}
	return orgRecord, userRecords
}
