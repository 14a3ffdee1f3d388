package rollup

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ncecere/cursor_port_sync/internal/cursorapi"
)

var testDayMS = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC).UnixMilli()

func TestAggregateDailyAccumulatesPerUser(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{
		{Email: "alice@x.com", IsActive: true, TotalAccepts: 3, TotalLinesAdded: 10},
		{Email: "alice@x.com", IsActive: false, TotalAccepts: 5, TotalLinesAdded: 4},
	}

	_, users := AggregateDaily("acme", testDayMS, rows, nil)

	if len(users) != 1 {
		t.Fatalf("expected 1 user record, got %d", len(users))
	}
	alice := users[0].Totals
	if alice.TotalAccepts != 8 {
		t.Errorf("want total_accepts 8, got %d", alice.TotalAccepts)
	}
	if alice.TotalLinesAdded != 14 {
		t.Errorf("want total_lines_added 14, got %d", alice.TotalLinesAdded)
	}
	if !alice.IsActive {
		t.Errorf("is_active should OR across rows")
	}
	if users[0].Identifier != "cursor:acme:alice@x.com:2025-03-10" {
		t.Errorf("unexpected identifier %s", users[0].Identifier)
	}
}

func TestAggregateDailySumInvariant(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{
		{Email: "alice@x.com", IsActive: true, TotalAccepts: 3, TotalRejects: 1, ComposerRequests: 7},
		{Email: "bob@x.com", IsActive: false, TotalAccepts: 5, TotalRejects: 2, ComposerRequests: 1},
		{Email: "carol@x.com", IsActive: true, TotalAccepts: 2, TotalRejects: 9, ComposerRequests: 4},
	}
	events := []cursorapi.UsageEventRow{
		{UserEmail: "alice@x.com", TokenUsage: &cursorapi.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalCents: 1.25}},
		{UserEmail: "bob@x.com", TokenUsage: &cursorapi.TokenUsage{InputTokens: 30, OutputTokens: 10, TotalCents: 0.75}},
	}

	org, users := AggregateDaily("acme", testDayMS, rows, events)

	var accepts, rejects, composer, input, output int64
	var cents float64
	for _, u := range users {
		accepts += u.Totals.TotalAccepts
		rejects += u.Totals.TotalRejects
		composer += u.Totals.ComposerRequests
		input += u.Totals.InputTokens
		output += u.Totals.OutputTokens
		cents += u.Totals.TotalCents
	}
	if org.Totals.TotalAccepts != accepts {
		t.Errorf("org accepts %d != sum of users %d", org.Totals.TotalAccepts, accepts)
	}
	if org.Totals.TotalRejects != rejects {
		t.Errorf("org rejects %d != sum of users %d", org.Totals.TotalRejects, rejects)
	}
	if org.Totals.ComposerRequests != composer {
		t.Errorf("org composer %d != sum of users %d", org.Totals.ComposerRequests, composer)
	}
	if org.Totals.TotalInputTokens != input || org.Totals.TotalOutputTokens != output {
		t.Errorf("org tokens (%d,%d) != user sums (%d,%d)",
			org.Totals.TotalInputTokens, org.Totals.TotalOutputTokens, input, output)
	}
	if diff := org.Totals.TotalCents - cents; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("org cents %.9f != sum of users %.9f", org.Totals.TotalCents, cents)
	}
}

func TestAggregateDailyActiveUsersCountedOnce(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{
		{Email: "alice@x.com", IsActive: true},
		{Email: "alice@x.com", IsActive: true},
		{Email: "bob@x.com", IsActive: false},
	}
	org, _ := AggregateDaily("acme", testDayMS, rows, nil)
	if org.Totals.TotalActiveUsers != 1 {
		t.Fatalf("expected 1 active user, got %d", org.Totals.TotalActiveUsers)
	}
}

func TestAggregateDailyEventOnlyUserIsActive(t *testing.T) {
	events := []cursorapi.UsageEventRow{
		{UserEmail: "eve@x.com", Model: "claude", TokenUsage: &cursorapi.TokenUsage{InputTokens: 5}},
	}
	org, users := AggregateDaily("acme", testDayMS, nil, events)
	if len(users) != 1 {
		t.Fatalf("expected 1 user record, got %d", len(users))
	}
	if !users[0].Totals.IsActive {
		t.Errorf("event-only user should be active")
	}
	if org.Totals.TotalActiveUsers != 1 {
		t.Errorf("expected 1 active user, got %d", org.Totals.TotalActiveUsers)
	}
}

func TestAggregateDailyEventsDoNotActivateSummaryInactiveUser(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{
		{Email: "alice@x.com", IsActive: false, TotalAccepts: 2},
	}
	events := []cursorapi.UsageEventRow{
		{UserEmail: "alice@x.com", Model: "gpt-4", TokenUsage: &cursorapi.TokenUsage{InputTokens: 10}},
	}
	org, users := AggregateDaily("acme", testDayMS, rows, events)
	// Billing events mark a user active only when they are the first
	// sighting; the summary's inactive flag wins otherwise.
	if users[0].Totals.IsActive {
		t.Errorf("summary-inactive user must stay inactive despite events")
	}
	if org.Totals.TotalActiveUsers != 0 {
		t.Errorf("expected 0 active users, got %d", org.Totals.TotalActiveUsers)
	}
	if users[0].Totals.InputTokens != 10 {
		t.Errorf("event tokens must still accumulate, got %d", users[0].Totals.InputTokens)
	}
}

func TestAggregateDailyTokensRequirePayload(t *testing.T) {
	events := []cursorapi.UsageEventRow{
		{UserEmail: "alice@x.com", Model: "gpt-4"},
		{UserEmail: "alice@x.com", Model: "gpt-4", TokenUsage: &cursorapi.TokenUsage{InputTokens: 10, TotalCents: 0.5}},
	}
	_, users := AggregateDaily("acme", testDayMS, nil, events)
	if got := users[0].Totals.InputTokens; got != 10 {
		t.Fatalf("events without a token payload must not contribute tokens, got %d", got)
	}
	if got := users[0].Totals.TotalCents; got != 0.5 {
		t.Fatalf("unexpected cents %v", got)
	}
}

func TestAggregateDailyMissingEmailBucketsUnknown(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{{IsActive: true, TotalAccepts: 2}}
	_, users := AggregateDaily("acme", testDayMS, rows, nil)
	if users[0].Totals.Email != "unknown" {
		t.Fatalf("expected unknown bucket, got %q", users[0].Totals.Email)
	}
}

func TestAggregateDailyModelTieBreakFirstSeen(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{
		{Email: "alice@x.com", IsActive: true, MostUsedModel: "gpt-4"},
		{Email: "alice@x.com", IsActive: true, MostUsedModel: "gpt-4"},
	}
	events := []cursorapi.UsageEventRow{
		{UserEmail: "alice@x.com", Model: "claude"},
		{UserEmail: "alice@x.com", Model: "claude"},
	}
	_, users := AggregateDaily("acme", testDayMS, rows, events)
	if got := users[0].Totals.MostUsedModel; got != "gpt-4" {
		t.Fatalf("expected first-seen tie-break to pick gpt-4, got %s", got)
	}
}

func TestAggregateDailyOrgModelCountsOncePerUser(t *testing.T) {
	// Three rows of claude for one user count once at org level; two users on
	// gpt-4 outvote them.
	rows := []cursorapi.DailyUsageRow{
		{Email: "alice@x.com", IsActive: true, MostUsedModel: "claude"},
		{Email: "alice@x.com", IsActive: true, MostUsedModel: "claude"},
		{Email: "alice@x.com", IsActive: true, MostUsedModel: "claude"},
		{Email: "bob@x.com", IsActive: true, MostUsedModel: "gpt-4"},
		{Email: "carol@x.com", IsActive: true, MostUsedModel: "gpt-4"},
	}
	org, _ := AggregateDaily("acme", testDayMS, rows, nil)
	if org.Totals.MostUsedModel != "gpt-4" {
		t.Fatalf("expected gpt-4 at org level, got %s", org.Totals.MostUsedModel)
	}
}

func TestAggregateDailyIdempotent(t *testing.T) {
	rows := []cursorapi.DailyUsageRow{
		{Email: "bob@x.com", IsActive: true, TotalAccepts: 1, MostUsedModel: "claude"},
		{Email: "alice@x.com", IsActive: true, TotalAccepts: 2, MostUsedModel: "gpt-4"},
	}
	events := []cursorapi.UsageEventRow{
		{UserEmail: "alice@x.com", Model: "gpt-4", TokenUsage: &cursorapi.TokenUsage{TotalCents: 0.31}},
	}

	org1, users1 := AggregateDaily("acme", testDayMS, rows, events)
	org2, users2 := AggregateDaily("acme", testDayMS, rows, events)

	j1, err := json.Marshal(struct {
		Org   OrgRecord
		Users []UserRecord
	}{org1, users1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	j2, _ := json.Marshal(struct {
		Org   OrgRecord
		Users []UserRecord
	}{org2, users2})
	if string(j1) != string(j2) {
		t.Fatalf("aggregation is not byte-identical across runs")
	}
	// Output order follows input order, not lexicographic order.
	if users1[0].Totals.Email != "bob@x.com" {
		t.Fatalf("expected first-seen ordering, got %s first", users1[0].Totals.Email)
	}
}

func TestAggregateDailyEmptyInputYieldsNoUsers(t *testing.T) {
	org, users := AggregateDaily("acme", testDayMS, nil, nil)
	if len(users) != 0 {
		t.Fatalf("expected no user records, got %d", len(users))
	}
	if len(org.Breakdown.Users) != 0 {
		t.Fatalf("expected empty breakdown")
	}
	if org.Identifier != "cursor:acme:2025-03-10" {
		t.Fatalf("unexpected identifier %s", org.Identifier)
	}
}
