package export

import "github.com/ncecere/cursor_port_sync/internal/rollup"

// Port blueprints targeted by the sync.
const (
	BlueprintOrgUsage     = "cursor_usage_record"
	BlueprintUserUsage    = "cursor_user_usage_record"
	BlueprintTeamUsage    = "cursor_team_usage_record"
	BlueprintAiCommit     = "cursor_ai_commit_record"
	BlueprintAiCodeChange = "cursor_ai_change_record"
)

// Entity is one catalog entity in a bulk upsert payload.
type Entity struct {
	Identifier string         `json:"identifier"`
	Title      string         `json:"title"`
	Blueprint  string         `json:"blueprint"`
	Properties map[string]any `json:"properties"`
}

// Batch bundles one day's rollup records for export.
type Batch struct {
	Org           *rollup.OrgRecord
	Users         []rollup.UserRecord
	Teams         []rollup.TeamRecord
	AiCommits     []rollup.AiCommitRecord
	AiCodeChanges []rollup.AiCodeChangeRecord
}

// Len reports the number of entities the batch will produce.
func (b Batch) Len() int {
	n := len(b.Users) + len(b.Teams) + len(b.AiCommits) + len(b.AiCodeChanges)
	if b.Org != nil {
		n++
	}
	return n
}

// Entities flattens the batch into bulk-upsert entities, org first, then
// users, teams and AI metrics in record order.
func (b Batch) Entities() []Entity {
	entities := make([]Entity, 0, b.Len())
	if b.Org != nil {
		entities = append(entities, orgEntity(*b.Org))
	}
	for _, ur := range b.Users {
		entities = append(entities, userEntity(ur))
	}
	for _, tr := range b.Teams {
		entities = append(entities, teamEntity(tr))
	}
	for _, cr := range b.AiCommits {
		entities = append(entities, aiCommitEntity(cr))
	}
	for _, chr := range b.AiCodeChanges {
		entities = append(entities, aiCodeChangeEntity(chr))
	}
	return entities
}

func orgEntity(rec rollup.OrgRecord) Entity {
	t := rec.Totals
	return Entity{
		Identifier: rec.Identifier,
		Title:      rec.Identifier,
		Blueprint:  BlueprintOrgUsage,
		Properties: map[string]any{
			"record_date":                rec.RecordDateISO,
			"org":                        rec.Org,
			"total_accepts":              t.TotalAccepts,
			"total_rejects":              t.TotalRejects,
			"total_tabs_shown":           t.TotalTabsShown,
			"total_tabs_accepted":        t.TotalTabsAccepted,
			"total_lines_added":          t.TotalLinesAdded,
			"total_lines_deleted":        t.TotalLinesDeleted,
			"accepted_lines_added":       t.AcceptedLinesAdded,
			"accepted_lines_deleted":     t.AcceptedLinesDeleted,
			"composer_requests":          t.ComposerRequests,
			"chat_requests":              t.ChatRequests,
			"agent_requests":             t.AgentRequests,
			"subscription_included_reqs": t.SubscriptionIncludedReqs,
			"api_key_reqs":               t.APIKeyReqs,
			"usage_based_reqs":           t.UsageBasedReqs,
			"bugbot_usages":              t.BugbotUsages,
			"most_used_model":            t.MostUsedModel,
			"total_active_users":         t.TotalActiveUsers,
			"total_input_tokens":         t.TotalInputTokens,
			"total_output_tokens":        t.TotalOutputTokens,
			"total_cache_write_tokens":   t.TotalCacheWriteTokens,
			"total_cache_read_tokens":    t.TotalCacheReadTokens,
			"total_cents":                t.TotalCents,
			"breakdown":                  rec.Breakdown,
		},
	}
}

func userEntity(rec rollup.UserRecord) Entity {
	t := rec.Totals
	return Entity{
		Identifier: rec.Identifier,
		Title:      rec.Identifier,
		Blueprint:  BlueprintUserUsage,
		Properties: map[string]any{
			"record_date":                rec.RecordDateISO,
			"org":                        rec.Org,
			"email":                      t.Email,
			"is_active":                  t.IsActive,
			"total_accepts":              t.TotalAccepts,
			"total_rejects":              t.TotalRejects,
			"total_tabs_shown":           t.TotalTabsShown,
			"total_tabs_accepted":        t.TotalTabsAccepted,
			"total_lines_added":          t.TotalLinesAdded,
			"total_lines_deleted":        t.TotalLinesDeleted,
			"accepted_lines_added":       t.AcceptedLinesAdded,
			"accepted_lines_deleted":     t.AcceptedLinesDeleted,
			"composer_requests":          t.ComposerRequests,
			"chat_requests":              t.ChatRequests,
			"agent_requests":             t.AgentRequests,
			"subscription_included_reqs": t.SubscriptionIncludedReqs,
			"api_key_reqs":               t.APIKeyReqs,
			"usage_based_reqs":           t.UsageBasedReqs,
			"bugbot_usages":              t.BugbotUsages,
			"most_used_model":            t.MostUsedModel,
			"input_tokens":               t.InputTokens,
			"output_tokens":              t.OutputTokens,
			"cache_write_tokens":         t.CacheWriteTokens,
			"cache_read_tokens":          t.CacheReadTokens,
			"total_cents":                t.TotalCents,
		},
	}
}

func teamEntity(rec rollup.TeamRecord) Entity {
	t := rec.Totals
	return Entity{
		Identifier: rec.Identifier,
		Title:      rec.Identifier,
		Blueprint:  BlueprintTeamUsage,
		Properties: map[string]any{
			"record_date":                rec.RecordDateISO,
			"org":                        rec.Org,
			"team":                       rec.Team,
			"total_accepts":              t.TotalAccepts,
			"total_rejects":              t.TotalRejects,
			"total_tabs_shown":           t.TotalTabsShown,
			"total_tabs_accepted":        t.TotalTabsAccepted,
			"total_lines_added":          t.TotalLinesAdded,
			"total_lines_deleted":        t.TotalLinesDeleted,
			"accepted_lines_added":       t.AcceptedLinesAdded,
			"accepted_lines_deleted":     t.AcceptedLinesDeleted,
			"composer_requests":          t.ComposerRequests,
			"chat_requests":              t.ChatRequests,
			"agent_requests":             t.AgentRequests,
			"subscription_included_reqs": t.SubscriptionIncludedReqs,
			"api_key_reqs":               t.APIKeyReqs,
			"usage_based_reqs":           t.UsageBasedReqs,
			"bugbot_usages":              t.BugbotUsages,
			"most_used_model":            t.MostUsedModel,
			"total_active_users":         t.TotalActiveUsers,
			"input_tokens":               t.InputTokens,
			"output_tokens":              t.OutputTokens,
			"cache_write_tokens":         t.CacheWriteTokens,
			"cache_read_tokens":          t.CacheReadTokens,
			"total_cents":                t.TotalCents,
			"breakdown":                  rec.Breakdown,
		},
	}
}

func aiCommitEntity(rec rollup.AiCommitRecord) Entity {
	t := rec.Totals
	return Entity{
		Identifier: rec.Identifier,
		Title:      rec.Identifier,
		Blueprint:  BlueprintAiCommit,
		Properties: map[string]any{
			"record_date":            rec.RecordDateISO,
			"org":                    rec.Org,
			"user_email":             rec.UserEmail,
			"total_commits":          t.TotalCommits,
			"total_lines_added":      t.TotalLinesAdded,
			"total_lines_deleted":    t.TotalLinesDeleted,
			"tab_lines_added":        t.TabLinesAdded,
			"tab_lines_deleted":      t.TabLinesDeleted,
			"composer_lines_added":   t.ComposerLinesAdded,
			"composer_lines_deleted": t.ComposerLinesDeleted,
			"non_ai_lines_added":     t.NonAiLinesAdded,
			"non_ai_lines_deleted":   t.NonAiLinesDeleted,
			"primary_branch_commits": t.PrimaryBranchCommits,
			"total_unique_repos":     t.TotalUniqueRepos,
			"most_active_repo":       t.MostActiveRepo,
			"breakdown":              rec.Breakdown,
		},
	}
}

func aiCodeChangeEntity(rec rollup.AiCodeChangeRecord) Entity {
	t := rec.Totals
	return Entity{
		Identifier: rec.Identifier,
		Title:      rec.Identifier,
		Blueprint:  BlueprintAiCodeChange,
		Properties: map[string]any{
			"record_date":            rec.RecordDateISO,
			"org":                    rec.Org,
			"user_email":             rec.UserEmail,
			"total_changes":          t.TotalChanges,
			"total_lines_added":      t.TotalLinesAdded,
			"total_lines_deleted":    t.TotalLinesDeleted,
			"tab_changes":            t.TabChanges,
			"tab_lines_added":        t.TabLinesAdded,
			"tab_lines_deleted":      t.TabLinesDeleted,
			"composer_changes":       t.ComposerChanges,
			"composer_lines_added":   t.ComposerLinesAdded,
			"composer_lines_deleted": t.ComposerLinesDeleted,
			"unique_file_extensions": t.UniqueFileExtensions,
			"most_used_model":        t.MostUsedModel,
			"breakdown":              rec.Breakdown,
		},
	}
}
