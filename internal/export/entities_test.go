package export

import (
	"testing"

	"github.com/ncecere/cursor_port_sync/internal/rollup"
)

func TestBatchEntitiesOrderAndBlueprints(t *testing.T) {
	batch := Batch{
		Org: &rollup.OrgRecord{Identifier: "cursor:acme:2025-03-10", Org: "acme"},
		Users: []rollup.UserRecord{
			{Identifier: "cursor:acme:alice@x.com:2025-03-10"},
			{Identifier: "cursor:acme:bob@x.com:2025-03-10"},
		},
		Teams: []rollup.TeamRecord{
			{Identifier: "cursor:acme:platform:2025-03-10", Team: "platform"},
		},
		AiCommits: []rollup.AiCommitRecord{
			{Identifier: "cursor-ai-commits:acme:alice@x.com:2025-03-10"},
		},
		AiCodeChanges: []rollup.AiCodeChangeRecord{
			{Identifier: "cursor-ai-changes:acme:alice@x.com:2025-03-10"},
		},
	}

	entities := batch.Entities()
	if len(entities) != batch.Len() || len(entities) != 6 {
		t.Fatalf("expected 6 entities, got %d (Len=%d)", len(entities), batch.Len())
	}

	wantBlueprints := []string{
		BlueprintOrgUsage,
		BlueprintUserUsage,
		BlueprintUserUsage,
		BlueprintTeamUsage,
		BlueprintAiCommit,
		BlueprintAiCodeChange,
	}
	for i, want := range wantBlueprints {
		if entities[i].Blueprint != want {
			t.Errorf("entity %d: want blueprint %s, got %s", i, want, entities[i].Blueprint)
		}
	}
	if entities[0].Identifier != "cursor:acme:2025-03-10" {
		t.Errorf("org record must come first, got %s", entities[0].Identifier)
	}
}

func TestOrgEntityCarriesBreakdown(t *testing.T) {
	rec := rollup.OrgRecord{
		Identifier:    "cursor:acme:2025-03-10",
		Org:           "acme",
		RecordDateISO: "2025-03-10T00:00:00Z",
		Totals:        rollup.OrgTotals{TotalAccepts: 8, MostUsedModel: "gpt-4"},
	}
	ent := orgEntity(rec)
	if ent.Title != rec.Identifier {
		t.Errorf("title defaults to the identifier, got %s", ent.Title)
	}
	if ent.Properties["total_accepts"] != int64(8) {
		t.Errorf("unexpected total_accepts %v", ent.Properties["total_accepts"])
	}
	if _, ok := ent.Properties["breakdown"]; !ok {
		t.Errorf("org entities must include the breakdown")
	}
}

func TestUserEntityOmitsBreakdown(t *testing.T) {
	ent := userEntity(rollup.UserRecord{Identifier: "cursor:acme:alice@x.com:2025-03-10"})
	if _, ok := ent.Properties["breakdown"]; ok {
		t.Errorf("user entities carry no breakdown")
	}
	if _, ok := ent.Properties["email"]; !ok {
		t.Errorf("user entities carry the email property")
	}
}
