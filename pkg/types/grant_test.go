package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantBodyValuesFollowColumns(t *testing.T) {
	b := GrantBody{
		CredsID:      "c1",
		TriggerID:    Ptr("t1"),
		TriggerType:  Ptr(int64(2)),
		Creds:        Ptr("creds"),
		BlindedCreds: Ptr("blinded"),
		SignedCreds:  Ptr("signed"),
		PublicKey:    Ptr("pk"),
		BatchProof:   Ptr("proof"),
		Status:       Ptr(int64(1)),
	}
	vals := b.Values()
	require.Len(t, vals, len(GrantBodyColumns))
	assert.Equal(t, "c1", vals[0])
	assert.Equal(t, "t1", vals[1])
	assert.Equal(t, int64(2), vals[2])
	assert.Equal(t, int64(1), vals[len(vals)-1])
}

func TestNilFieldsBindAsNull(t *testing.T) {
	vals := GrantBody{CredsID: "c1", Creds: Ptr("")}.Values()
	assert.Equal(t, "c1", vals[0])
	assert.Nil(t, vals[1])
	assert.Nil(t, vals[2])
	// Empty text is a value, not NULL.
	assert.Equal(t, "", vals[3])

	svals := GrantSpendStatus{TokenID: "tok", RedeemedAt: Ptr(int64(0))}.Values()
	assert.Equal(t, []any{"tok", nil, int64(0), nil}, svals)
}

func TestGrantSpendStatus(t *testing.T) {
	s := GrantSpendStatus{TokenID: "tok", CredsID: Ptr("c1")}
	require.Len(t, s.Values(), len(GrantSpendStatusColumns))
	assert.False(t, s.Spent())

	s.RedeemedAt = Ptr(int64(0))
	assert.False(t, s.Spent())

	s.RedeemedAt = Ptr(int64(1700000000))
	assert.True(t, s.Spent())
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO grant_spend_statuses (token_id, creds_id, redeemed_at, redeem_type) VALUES (?, ?, ?, ?)",
		InsertSQL(GrantSpendStatusesTable, GrantSpendStatusColumns))
}

func TestRawRowGet(t *testing.T) {
	row := RawRow{
		Columns: []string{"a", "b"},
		Values:  []any{"x", nil},
	}

	v, ok := row.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = row.Get("b")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = row.Get("c")
	assert.False(t, ok)
}

func TestTransactionBuilders(t *testing.T) {
	var tx Transaction
	tx.Execute("DROP INDEX IF EXISTS i")
	tx.Read("SELECT 1 WHERE ? = ?", 1, 1)

	require.Equal(t, 2, tx.Len())
	assert.Equal(t, StatementExecute, tx.Statements[0].Kind)
	assert.Equal(t, StatementRead, tx.Statements[1].Kind)
	assert.Equal(t, []any{1, 1}, tx.Statements[1].Args)
	assert.Equal(t, "read", StatementRead.String())
}

func TestIsStandardTable(t *testing.T) {
	assert.True(t, IsStandardTable(GrantBodiesTable))
	assert.True(t, IsStandardTable(GrantSpendStatusesTable))
	assert.False(t, IsStandardTable("unblinded_tokens"))
}
