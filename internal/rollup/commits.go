package rollup

import "github.com/ncecere/cursor_port_sync/internal/cursorapi"

// AggregateAiCommits groups AI-attributed commits by user email and returns
// one rollup record per user, in first-seen user order.
func AggregateAiCommits(org string, dayStartMS int64, commits []cursorapi.AiCommitRow) []AiCommitRecord {
	grouped := make(map[string][]cursorapi.AiCommitRow)
	var order []string
	for _, commit := range commits {
		email := emailOrUnknown(commit.UserEmail)
		if _, seen := grouped[email]; !seen {
			order = append(order, email)
		}
		grouped[email] = append(grouped[email], commit)
	}

	dateISO := EpochMSToDayISO(dayStartMS)
	records := make([]AiCommitRecord, 0, len(order))

	for _, email := range order {
		userCommits := grouped[email]
		var totals AiCommitTotals
		repos := NewFreqTable()

		for _, commit := range userCommits {
			totals.TotalCommits++
			totals.TotalLinesAdded += commit.TotalLinesAdded
			totals.TotalLinesDeleted += commit.TotalLinesDeleted
			totals.TabLinesAdded += commit.TabLinesAdded
			totals.TabLinesDeleted += commit.TabLinesDeleted
			totals.ComposerLinesAdded += commit.ComposerLinesAdded
			totals.ComposerLinesDeleted += commit.ComposerLinesDeleted
			totals.NonAiLinesAdded += commit.NonAiLinesAdded
			totals.NonAiLinesDeleted += commit.NonAiLinesDeleted
			if commit.IsPrimaryBranch {
				totals.PrimaryBranchCommits++
			}
			repos.Observe(commit.RepoName)
		}

		totals.TotalUniqueRepos = int64(repos.Len())
		if repo, ok := repos.Top(); ok {
			totals.MostActiveRepo = repo
		}

		breakdown := AiCommitBreakdown{
			Commits:      userCommits,
			Repositories: repos.Entries(),
			AiContribution: AiContributionBreakdown{
				TabPercentage:      churnShare(totals.TabLinesAdded, totals.TabLinesDeleted, totals.TotalLinesAdded, totals.TotalLinesDeleted),
				ComposerPercentage: churnShare(totals.ComposerLinesAdded, totals.ComposerLinesDeleted, totals.TotalLinesAdded, totals.TotalLinesDeleted),
				NonAiPercentage:    churnShare(totals.NonAiLinesAdded, totals.NonAiLinesDeleted, totals.TotalLinesAdded, totals.TotalLinesDeleted),
			},
		}

		records = append(records, AiCommitRecord{
			Identifier:    AiCommitIdentifier(org, email, dateISO),
			Org:           org,
			UserEmail:     email,
			RecordDateISO: dateISO,
			Totals:        totals,
			Breakdown:     breakdown,
		})
	}
	return records
}
