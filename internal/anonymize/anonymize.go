// Package anonymize replaces user emails in rollup records with SHA-256
// digests before export. Record identifiers are left untouched so records
// stay stable across anonymized and plain runs.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ncecere/cursor_port_sync/internal/rollup"
)

// HashEmail returns the lowercase hex SHA-256 digest of an email. The
// synthetic "unknown" bucket passes through unchanged so the records stay
// interpretable.
func HashEmail(email string) string {
	if email == "" || email == "unknown" {
		return email
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// UserRecords hashes the email on each user record in place.
func UserRecords(records []rollup.UserRecord) {
	for i := range records {
		records[i].Totals.Email = HashEmail(records[i].Totals.Email)
	}
}

// OrgRecord hashes the emails inside the org breakdown in place.
func OrgRecord(rec *rollup.OrgRecord) {
	if rec == nil {
		return
	}
	for i := range rec.Breakdown.Users {
		rec.Breakdown.Users[i].Email = HashEmail(rec.Breakdown.Users[i].Email)
	}
}

// AiCommitRecords hashes the user email on each AI commit record and on the
// raw commits in its breakdown, in place.
func AiCommitRecords(records []rollup.AiCommitRecord) {
	for i := range records {
		records[i].UserEmail = HashEmail(records[i].UserEmail)
		for j := range records[i].Breakdown.Commits {
			records[i].Breakdown.Commits[j].UserEmail = HashEmail(records[i].Breakdown.Commits[j].UserEmail)
		}
	}
}

// AiCodeChangeRecords hashes the user email on each AI code-change record
// and on the raw changes in its breakdown, in place.
func AiCodeChangeRecords(records []rollup.AiCodeChangeRecord) {
	for i := range records {
		records[i].UserEmail = HashEmail(records[i].UserEmail)
		for j := range records[i].Breakdown.Changes {
			records[i].Breakdown.Changes[j].UserEmail = HashEmail(records[i].Breakdown.Changes[j].UserEmail)
		}
	}
}
