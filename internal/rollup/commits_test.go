package rollup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/cursor_port_sync/internal/cursorapi"
)

func TestAggregateAiCommitsTotalsAndRepos(t *testing.T) {
	commits := []cursorapi.AiCommitRow{
		{UserEmail: "alice@x.com", RepoName: "api", IsPrimaryBranch: true, TotalLinesAdded: 100, TotalLinesDeleted: 20, TabLinesAdded: 40, TabLinesDeleted: 10, ComposerLinesAdded: 30, ComposerLinesDeleted: 5, NonAiLinesAdded: 30, NonAiLinesDeleted: 5},
		{UserEmail: "alice@x.com", RepoName: "web", TotalLinesAdded: 50, TotalLinesDeleted: 10},
		{UserEmail: "alice@x.com", RepoName: "api", IsPrimaryBranch: true, TotalLinesAdded: 10},
	}

	records := AggregateAiCommits("acme", testDayMS, commits)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "cursor-ai-commits:acme:alice@x.com:2025-03-10", rec.Identifier)
	require.EqualValues(t, 3, rec.Totals.TotalCommits)
	require.EqualValues(t, 160, rec.Totals.TotalLinesAdded)
	require.EqualValues(t, 30, rec.Totals.TotalLinesDeleted)
	require.EqualValues(t, 2, rec.Totals.PrimaryBranchCommits)
	require.EqualValues(t, 2, rec.Totals.TotalUniqueRepos)
	require.Equal(t, "api", rec.Totals.MostActiveRepo)
	require.Equal(t, []FreqEntry{{Key: "api", Count: 2}, {Key: "web", Count: 1}}, rec.Breakdown.Repositories)

	// (40+10)/(160+30)*100 = 26.32 rounded to 2 decimals.
	require.InDelta(t, 26.32, rec.Breakdown.AiContribution.TabPercentage, 1e-9)
	require.InDelta(t, 18.42, rec.Breakdown.AiContribution.ComposerPercentage, 1e-9)
	require.InDelta(t, 18.42, rec.Breakdown.AiContribution.NonAiPercentage, 1e-9)
}

func TestAggregateAiCommitsZeroChurnYieldsZeroPercent(t *testing.T) {
	commits := []cursorapi.AiCommitRow{{UserEmail: "alice@x.com", RepoName: "api"}}
	records := AggregateAiCommits("acme", testDayMS, commits)
	require.Len(t, records, 1)
	require.Zero(t, records[0].Breakdown.AiContribution.TabPercentage)
	require.Zero(t, records[0].Breakdown.AiContribution.ComposerPercentage)
	require.Zero(t, records[0].Breakdown.AiContribution.NonAiPercentage)
}

func TestAggregateAiCommitsMissingEmailAndRepo(t *testing.T) {
	commits := []cursorapi.AiCommitRow{{TotalLinesAdded: 5}}
	records := AggregateAiCommits("acme", testDayMS, commits)
	require.Len(t, records, 1)
	require.Equal(t, "unknown", records[0].UserEmail)
	require.Zero(t, records[0].Totals.TotalUniqueRepos)
	require.Empty(t, records[0].Totals.MostActiveRepo)
}

func TestAggregateAiCommitsRepoTieBreakFirstSeen(t *testing.T) {
	commits := []cursorapi.AiCommitRow{
		{UserEmail: "alice@x.com", RepoName: "web"},
		{UserEmail: "alice@x.com", RepoName: "api"},
		{UserEmail: "alice@x.com", RepoName: "api"},
		{UserEmail: "alice@x.com", RepoName: "web"},
	}
	records := AggregateAiCommits("acme", testDayMS, commits)
	require.Equal(t, "web", records[0].Totals.MostActiveRepo)
}

func TestAggregateAiCommitsGroupsPerUserInInputOrder(t *testing.T) {
	commits := []cursorapi.AiCommitRow{
		{UserEmail: "bob@x.com", RepoName: "api"},
		{UserEmail: "alice@x.com", RepoName: "web"},
		{UserEmail: "bob@x.com", RepoName: "api"},
	}
	records := AggregateAiCommits("acme", testDayMS, commits)
	require.Len(t, records, 2)
	require.Equal(t, "bob@x.com", records[0].UserEmail)
	require.EqualValues(t, 2, records[0].Totals.TotalCommits)
	require.Equal(t, "alice@x.com", records[1].UserEmail)
	require.Len(t, records[0].Breakdown.Commits, 2)
}
