package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

func TestDecodeBodyByColumnName(t *testing.T) {
	// Columns deliberately out of table order.
	row := types.RawRow{
		Columns: []string{"status", "trigger_id", "creds_id", "trigger_type", "creds", "blinded_creds", "signed_creds", "public_key", "batch_proof", "extra"},
		Values:  []any{int64(1), "t1", []byte("c1"), int64(2), "creds", nil, "signed", "pk", "proof", "ignored"},
	}

	b, err := decodeBody(row)
	require.NoError(t, err)
	assert.Equal(t, types.GrantBody{
		CredsID:     "c1",
		TriggerID:   types.Ptr("t1"),
		TriggerType: types.Ptr(int64(2)),
		Creds:       types.Ptr("creds"),
		SignedCreds: types.Ptr("signed"),
		PublicKey:   types.Ptr("pk"),
		BatchProof:  types.Ptr("proof"),
		Status:      types.Ptr(int64(1)),
	}, b)
	assert.Nil(t, b.BlindedCreds)
}

func TestDecodeKeepsNullDistinctFromZero(t *testing.T) {
	row := types.RawRow{
		Columns: types.GrantSpendStatusColumns,
		Values:  []any{"tok1", "", nil, int64(0)},
	}
	s, err := decodeSpendStatus(row)
	require.NoError(t, err)
	require.NotNil(t, s.CredsID)
	assert.Equal(t, "", *s.CredsID)
	assert.Nil(t, s.RedeemedAt)
	require.NotNil(t, s.RedeemType)
	assert.Equal(t, int64(0), *s.RedeemType)
	assert.Equal(t, row.Values, s.Values())
}

func TestDecodeRejectsNullKey(t *testing.T) {
	body := nullRow(types.GrantBodyColumns)
	body.Values[1] = "t1"
	_, err := decodeBody(body)
	require.ErrorIs(t, err, types.ErrDecode)
	assert.Contains(t, err.Error(), `"creds_id"`)

	status := types.RawRow{Columns: types.GrantSpendStatusColumns, Values: []any{nil, "c1", nil, nil}}
	_, err = decodeSpendStatus(status)
	require.ErrorIs(t, err, types.ErrDecode)
	assert.Contains(t, err.Error(), `"token_id"`)
}

func TestDecodeBodyErrors(t *testing.T) {
	tests := []struct {
		name string
		row  types.RawRow
	}{
		{
			name: "missing column",
			row:  types.RawRow{Columns: []string{"creds_id", "trigger_id"}, Values: []any{"c1", "t1"}},
		},
		{
			name: "text column holds integer",
			row: func() types.RawRow {
				r := bodyRow(types.GrantBody{CredsID: "c1"})
				r.Values = append([]any(nil), r.Values...)
				r.Values[1] = int64(5)
				return r
			}(),
		},
		{
			name: "integer column holds text",
			row: func() types.RawRow {
				r := bodyRow(types.GrantBody{CredsID: "c1"})
				r.Values = append([]any(nil), r.Values...)
				r.Values[2] = "two"
				return r
			}(),
		},
		{
			name: "integer column holds fraction",
			row: func() types.RawRow {
				r := bodyRow(types.GrantBody{CredsID: "c1"})
				r.Values = append([]any(nil), r.Values...)
				r.Values[8] = 1.5
				return r
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeBody(tt.row)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrDecode)
		})
	}
}

func TestDecodeSpendStatus(t *testing.T) {
	row := types.RawRow{
		Columns: types.GrantSpendStatusColumns,
		Values:  []any{"tok1", "c1", float64(1700000000), nil},
	}
	s, err := decodeSpendStatus(row)
	require.NoError(t, err)
	assert.Equal(t, types.GrantSpendStatus{
		TokenID:    "tok1",
		CredsID:    types.Ptr("c1"),
		RedeemedAt: types.Ptr(int64(1700000000)),
	}, s)

	_, err = decodeSpendStatus(types.RawRow{Columns: []string{"token_id"}, Values: []any{"tok1"}})
	assert.ErrorIs(t, err, types.ErrDecode)
}
