package rollup

import (
	"fmt"
	"time"
)

// Identifier namespaces per record kind.
const (
	nsUsage         = "cursor"
	nsAiCommits     = "cursor-ai-commits"
	nsAiCodeChanges = "cursor-ai-changes"
)

// EpochMSToDayISO converts a day-granularity epoch timestamp into the
// canonical UTC record date string, e.g. "2025-03-10T00:00:00Z". Every
// identifier and record timestamp derives from this single normalization.
func EpochMSToDayISO(epochMS int64) string {
	day := time.UnixMilli(epochMS).UTC()
	return day.Format(time.DateOnly) + "T00:00:00Z"
}

// dayKey extracts the YYYY-MM-DD identifier component from a record date.
func dayKey(dateISO string) string {
	return dateISO[:10]
}

// OrgIdentifier returns "cursor:<org>:<YYYY-MM-DD>".
func OrgIdentifier(org, dateISO string) string {
	return fmt.Sprintf("%s:%s:%s", nsUsage, org, dayKey(dateISO))
}

// UserIdentifier returns "cursor:<org>:<email>:<YYYY-MM-DD>".
func UserIdentifier(org, email, dateISO string) string {
	return fmt.Sprintf("%s:%s:%s:%s", nsUsage, org, email, dayKey(dateISO))
}

// TeamIdentifier returns "cursor:<org>:<team>:<YYYY-MM-DD>".
func TeamIdentifier(org, team, dateISO string) string {
	return fmt.Sprintf("%s:%s:%s:%s", nsUsage, org, team, dayKey(dateISO))
}

// AiCommitIdentifier returns "cursor-ai-commits:<org>:<email>:<YYYY-MM-DD>".
func AiCommitIdentifier(org, email, dateISO string) string {
	return fmt.Sprintf("%s:%s:%s:%s", nsAiCommits, org, email, dayKey(dateISO))
}

// AiCodeChangeIdentifier returns "cursor-ai-changes:<org>:<email>:<YYYY-MM-DD>".
func AiCodeChangeIdentifier(org, email, dateISO string) string {
	return fmt.Sprintf("%s:%s:%s:%s", nsAiCodeChanges, org, email, dayKey(dateISO))
}
