package types

import (
	"fmt"
	"strings"
)

// Column names of the grant_bodies table.
const (
	ColCredsID      = "creds_id"
	ColTriggerID    = "trigger_id"
	ColTriggerType  = "trigger_type"
	ColCreds        = "creds"
	ColBlindedCreds = "blinded_creds"
	ColSignedCreds  = "signed_creds"
	ColPublicKey    = "public_key"
	ColBatchProof   = "batch_proof"
	ColStatus       = "status"
)

// Column names of the grant_spend_statuses table. ColCredsID is shared.
const (
	ColTokenID    = "token_id"
	ColRedeemedAt = "redeemed_at"
	ColRedeemType = "redeem_type"
)

// GrantBodyColumns lists the grant_bodies columns read by a backup and
// written by a restore.
var GrantBodyColumns = []string{
	ColCredsID,
	ColTriggerID,
	ColTriggerType,
	ColCreds,
	ColBlindedCreds,
	ColSignedCreds,
	ColPublicKey,
	ColBatchProof,
	ColStatus,
}

// GrantSpendStatusColumns lists the grant_spend_statuses columns read by a
// backup and written by a restore.
var GrantSpendStatusColumns = []string{
	ColTokenID,
	ColCredsID,
	ColRedeemedAt,
	ColRedeemType,
}

// GrantBody is one batch of reward credentials. Bodies granted together share
// a TriggerID. The credential fields are opaque to the engine.
//
// CredsID is the primary key and is never NULL. Every other field is nil when
// the stored column is NULL, so a backup and restore writes NULL back.
type GrantBody struct {
	CredsID      string  `json:"creds_id"`
	TriggerID    *string `json:"trigger_id"`
	TriggerType  *int64  `json:"trigger_type"`
	Creds        *string `json:"creds"`
	BlindedCreds *string `json:"blinded_creds"`
	SignedCreds  *string `json:"signed_creds"`
	PublicKey    *string `json:"public_key"`
	BatchProof   *string `json:"batch_proof"`
	Status       *int64  `json:"status"`
}

// Values returns the field values in GrantBodyColumns order. Nil fields are
// returned as untyped nil so they bind as NULL.
func (b GrantBody) Values() []any {
	return []any{
		b.CredsID,
		nullable(b.TriggerID),
		nullable(b.TriggerType),
		nullable(b.Creds),
		nullable(b.BlindedCreds),
		nullable(b.SignedCreds),
		nullable(b.PublicKey),
		nullable(b.BatchProof),
		nullable(b.Status),
	}
}

// GrantSpendStatus records whether a token has been redeemed. CredsID links
// the token back to the GrantBody that issued it. TokenID is the primary key
// and is never NULL; nil fields are stored NULL.
type GrantSpendStatus struct {
	TokenID    string  `json:"token_id"`
	CredsID    *string `json:"creds_id"`
	RedeemedAt *int64  `json:"redeemed_at"` // Unix seconds; nil or zero when unspent.
	RedeemType *int64  `json:"redeem_type"`
}

// Values returns the field values in GrantSpendStatusColumns order.
func (s GrantSpendStatus) Values() []any {
	return []any{
		s.TokenID,
		nullable(s.CredsID),
		nullable(s.RedeemedAt),
		nullable(s.RedeemType),
	}
}

// Spent reports whether the token has been redeemed.
func (s GrantSpendStatus) Spent() bool {
	return s.RedeemedAt != nil && *s.RedeemedAt != 0
}

// Ptr returns a pointer to v. It fills the nullable record fields.
func Ptr[T any](v T) *T {
	return &v
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// InsertSQL builds a named-column INSERT with one positional placeholder per
// column. Columns left out take their defaults, so the statement survives
// columns added by a schema change.
func InsertSQL(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
}
