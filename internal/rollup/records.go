package rollup

import "github.com/ncecere/cursor_port_sync/internal/cursorapi"

// UserTotals accumulates one user's daily counters across raw rows.
type UserTotals struct {
	Email                    string  `json:"email"`
	IsActive                 bool    `json:"is_active"`
	TotalAccepts             int64   `json:"total_accepts"`
	TotalRejects             int64   `json:"total_rejects"`
	TotalTabsShown           int64   `json:"total_tabs_shown"`
	TotalTabsAccepted        int64   `json:"total_tabs_accepted"`
	TotalLinesAdded          int64   `json:"total_lines_added"`
	TotalLinesDeleted        int64   `json:"total_lines_deleted"`
	AcceptedLinesAdded       int64   `json:"accepted_lines_added"`
	AcceptedLinesDeleted     int64   `json:"accepted_lines_deleted"`
	ComposerRequests         int64   `json:"composer_requests"`
	ChatRequests             int64   `json:"chat_requests"`
	AgentRequests            int64   `json:"agent_requests"`
	SubscriptionIncludedReqs int64   `json:"subscription_included_reqs"`
	APIKeyReqs               int64   `json:"api_key_reqs"`
	UsageBasedReqs           int64   `json:"usage_based_reqs"`
	BugbotUsages             int64   `json:"bugbot_usages"`
	InputTokens              int64   `json:"input_tokens"`
	OutputTokens             int64   `json:"output_tokens"`
	CacheWriteTokens         int64   `json:"cache_write_tokens"`
	CacheReadTokens          int64   `json:"cache_read_tokens"`
	TotalCents               float64 `json:"total_cents"`
	MostUsedModel            string  `json:"most_used_model,omitempty"`
}

// OrgTotals sums every UserTotals for the day.
type OrgTotals struct {
	TotalAccepts             int64   `json:"total_accepts"`
	TotalRejects             int64   `json:"total_rejects"`
	TotalTabsShown           int64   `json:"total_tabs_shown"`
	TotalTabsAccepted        int64   `json:"total_tabs_accepted"`
	TotalLinesAdded          int64   `json:"total_lines_added"`
	TotalLinesDeleted        int64   `json:"total_lines_deleted"`
	AcceptedLinesAdded       int64   `json:"accepted_lines_added"`
	AcceptedLinesDeleted     int64   `json:"accepted_lines_deleted"`
	ComposerRequests         int64   `json:"composer_requests"`
	ChatRequests             int64   `json:"chat_requests"`
	AgentRequests            int64   `json:"agent_requests"`
	SubscriptionIncludedReqs int64   `json:"subscription_included_reqs"`
	APIKeyReqs               int64   `json:"api_key_reqs"`
	UsageBasedReqs           int64   `json:"usage_based_reqs"`
	BugbotUsages             int64   `json:"bugbot_usages"`
	TotalActiveUsers         int64   `json:"total_active_users"`
	TotalInputTokens         int64   `json:"total_input_tokens"`
	TotalOutputTokens        int64   `json:"total_output_tokens"`
	TotalCacheWriteTokens    int64   `json:"total_cache_write_tokens"`
	TotalCacheReadTokens     int64   `json:"total_cache_read_tokens"`
	TotalCents               float64 `json:"total_cents"`
	MostUsedModel            string  `json:"most_used_model,omitempty"`
}

// TeamTotals sums the UserTotals of a team's members.
type TeamTotals struct {
	Team                     string  `json:"team"`
	TotalAccepts             int64   `json:"total_accepts"`
	TotalRejects             int64   `json:"total_rejects"`
	TotalTabsShown           int64   `json:"total_tabs_shown"`
	TotalTabsAccepted        int64   `json:"total_tabs_accepted"`
	TotalLinesAdded          int64   `json:"total_lines_added"`
	TotalLinesDeleted        int64   `json:"total_lines_deleted"`
	AcceptedLinesAdded       int64   `json:"accepted_lines_added"`
	AcceptedLinesDeleted     int64   `json:"accepted_lines_deleted"`
	ComposerRequests         int64   `json:"composer_requests"`
	ChatRequests             int64   `json:"chat_requests"`
	AgentRequests            int64   `json:"agent_requests"`
	SubscriptionIncludedReqs int64   `json:"subscription_included_reqs"`
	APIKeyReqs               int64   `json:"api_key_reqs"`
	UsageBasedReqs           int64   `json:"usage_based_reqs"`
	BugbotUsages             int64   `json:"bugbot_usages"`
	InputTokens              int64   `json:"input_tokens"`
	OutputTokens             int64   `json:"output_tokens"`
	CacheWriteTokens         int64   `json:"cache_write_tokens"`
	CacheReadTokens          int64   `json:"cache_read_tokens"`
	TotalCents               float64 `json:"total_cents"`
	MostUsedModel            string  `json:"most_used_model,omitempty"`
	TotalActiveUsers         int64   `json:"total_active_users"`
}

// AiCommitTotals accumulates one user's AI-attributed commits.
type AiCommitTotals struct {
	TotalCommits         int64  `json:"total_commits"`
	TotalLinesAdded      int64  `json:"total_lines_added"`
	TotalLinesDeleted    int64  `json:"total_lines_deleted"`
	TabLinesAdded        int64  `json:"tab_lines_added"`
	TabLinesDeleted      int64  `json:"tab_lines_deleted"`
	ComposerLinesAdded   int64  `json:"composer_lines_added"`
	ComposerLinesDeleted int64  `json:"composer_lines_deleted"`
	NonAiLinesAdded      int64  `json:"non_ai_lines_added"`
	NonAiLinesDeleted    int64  `json:"non_ai_lines_deleted"`
	PrimaryBranchCommits int64  `json:"primary_branch_commits"`
	TotalUniqueRepos     int64  `json:"total_unique_repos"`
	MostActiveRepo       string `json:"most_active_repo,omitempty"`
}

// AiCodeChangeTotals accumulates one user's AI-assisted edit events.
type AiCodeChangeTotals struct {
	TotalChanges         int64  `json:"total_changes"`
	TotalLinesAdded      int64  `json:"total_lines_added"`
	TotalLinesDeleted    int64  `json:"total_lines_deleted"`
	TabChanges           int64  `json:"tab_changes"`
	TabLinesAdded        int64  `json:"tab_lines_added"`
	TabLinesDeleted      int64  `json:"tab_lines_deleted"`
	ComposerChanges      int64  `json:"composer_changes"`
	ComposerLinesAdded   int64  `json:"composer_lines_added"`
	ComposerLinesDeleted int64  `json:"composer_lines_deleted"`
	UniqueFileExtensions int64  `json:"unique_file_extensions"`
	MostUsedModel        string `json:"most_used_model,omitempty"`
}

// OrgBreakdown carries the full per-user totals list for drill-down.
type OrgBreakdown struct {
	Users []UserTotals `json:"users"`
}

// UserBreakdown is reserved for future per-user drill-down detail.
type UserBreakdown struct{}

// TeamBreakdown lists member record identifiers in aggregation order so the
// export boundary can build relations.
type TeamBreakdown struct {
	TeamMemberIdentifiers []string `json:"team_member_identifiers"`
}

// AiContributionBreakdown holds the share of line churn per origin, in
// percent rounded to two decimals.
type AiContributionBreakdown struct {
	TabPercentage      float64 `json:"tab_percentage"`
	ComposerPercentage float64 `json:"composer_percentage"`
	NonAiPercentage    float64 `json:"non_ai_percentage"`
}

// AiCommitBreakdown carries the constituent commits plus derived detail.
type AiCommitBreakdown struct {
	Commits        []cursorapi.AiCommitRow `json:"commits"`
	Repositories   []FreqEntry             `json:"repositories"`
	AiContribution AiContributionBreakdown `json:"ai_contribution_breakdown"`
}

// ProductivityMetrics are derived ratios for AI code changes. The
// tab-vs-composer ratio is nil when the user has no composer changes.
type ProductivityMetrics struct {
	AverageLinesPerChange float64  `json:"average_lines_per_change"`
	TabVsComposerRatio    *float64 `json:"tab_vs_composer_ratio"`
	TabEfficiency         float64  `json:"tab_efficiency"`
	ComposerEfficiency    float64  `json:"composer_efficiency"`
}

// AiCodeChangeBreakdown carries the constituent changes plus distributions.
type AiCodeChangeBreakdown struct {
	Changes            []cursorapi.AiCodeChangeRow `json:"changes"`
	SourceDistribution []FreqEntry                 `json:"source_distribution"`
	ModelUsage         []FreqEntry                 `json:"model_usage"`
	FileExtensions     []FreqEntry                 `json:"file_extensions"`
	Productivity       ProductivityMetrics         `json:"productivity_metrics"`
}

// OrgRecord is the org-level rollup for one day.
type OrgRecord struct {
	Identifier    string       `json:"identifier"`
	Org           string       `json:"org"`
	RecordDateISO string       `json:"record_date_iso"`
	Totals        OrgTotals    `json:"totals"`
	Breakdown     OrgBreakdown `json:"breakdown"`
}

// UserRecord is the per-user rollup for one day.
type UserRecord struct {
	Identifier    string        `json:"identifier"`
	Org           string        `json:"org"`
	RecordDateISO string        `json:"record_date_iso"`
	Totals        UserTotals    `json:"totals"`
	Breakdown     UserBreakdown `json:"breakdown"`
}

// TeamRecord is the per-team rollup for one day.
type TeamRecord struct {
	Identifier    string        `json:"identifier"`
	Org           string        `json:"org"`
	Team          string        `json:"team"`
	RecordDateISO string        `json:"record_date_iso"`
	Totals        TeamTotals    `json:"totals"`
	Breakdown     TeamBreakdown `json:"breakdown"`
}

// AiCommitRecord is the per-user AI commit rollup for one day window.
type AiCommitRecord struct {
	Identifier    string            `json:"identifier"`
	Org           string            `json:"org"`
	UserEmail     string            `json:"user_email"`
	RecordDateISO string            `json:"record_date_iso"`
	Totals        AiCommitTotals    `json:"totals"`
	Breakdown     AiCommitBreakdown `json:"breakdown"`
}

// AiCodeChangeRecord is the per-user AI code-change rollup for one day window.
type AiCodeChangeRecord struct {
	Identifier    string                `json:"identifier"`
	Org           string                `json:"org"`
	UserEmail     string                `json:"user_email"`
	RecordDateISO string                `json:"record_date_iso"`
	Totals        AiCodeChangeTotals    `json:"totals"`
	Breakdown     AiCodeChangeBreakdown `json:"breakdown"`
}
