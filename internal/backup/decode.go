package backup

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// rowDecoder reads named columns out of a RawRow into typed fields. The
// first failure sticks; later reads are no-ops.
type rowDecoder struct {
	row types.RawRow
	err error
}

func (d *rowDecoder) lookup(col string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	v, ok := d.row.Get(col)
	if !ok {
		d.err = fmt.Errorf("%w: missing column %q", types.ErrDecode, col)
		return nil, false
	}
	return v, true
}

// key reads a primary key column. NULL is rejected: two NULL keys would
// collapse to the same value and the restore could not reinsert them.
func (d *rowDecoder) key(col string, dst *string) {
	v, ok := d.lookup(col)
	if !ok {
		return
	}
	if v == nil {
		d.err = fmt.Errorf("%w: key column %q is NULL", types.ErrDecode, col)
		return
	}
	d.err = textValue(col, v, dst)
}

// text reads a nullable text column; NULL leaves *dst nil.
func (d *rowDecoder) text(col string, dst **string) {
	v, ok := d.lookup(col)
	if !ok || v == nil {
		return
	}
	var x string
	if d.err = textValue(col, v, &x); d.err == nil {
		*dst = &x
	}
}

// integer reads a nullable integer column; NULL leaves *dst nil.
func (d *rowDecoder) integer(col string, dst **int64) {
	v, ok := d.lookup(col)
	if !ok || v == nil {
		return
	}
	var x int64
	if d.err = integerValue(col, v, &x); d.err == nil {
		*dst = &x
	}
}

func textValue(col string, v any, dst *string) error {
	switch x := v.(type) {
	case string:
		*dst = x
	case []byte:
		*dst = string(x)
	default:
		return fmt.Errorf("%w: column %q: want text, got %T", types.ErrDecode, col, v)
	}
	return nil
}

func integerValue(col string, v any, dst *int64) error {
	switch x := v.(type) {
	case int64:
		*dst = x
	case int:
		*dst = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return fmt.Errorf("%w: column %q: %v is not an integer", types.ErrDecode, col, x)
		}
		*dst = int64(x)
	default:
		return fmt.Errorf("%w: column %q: want integer, got %T", types.ErrDecode, col, v)
	}
	return nil
}

// decodeBody maps a grant_bodies row onto a GrantBody by column name.
func decodeBody(row types.RawRow) (types.GrantBody, error) {
	var b types.GrantBody
	d := rowDecoder{row: row}
	d.key(types.ColCredsID, &b.CredsID)
	d.text(types.ColTriggerID, &b.TriggerID)
	d.integer(types.ColTriggerType, &b.TriggerType)
	d.text(types.ColCreds, &b.Creds)
	d.text(types.ColBlindedCreds, &b.BlindedCreds)
	d.text(types.ColSignedCreds, &b.SignedCreds)
	d.text(types.ColPublicKey, &b.PublicKey)
	d.text(types.ColBatchProof, &b.BatchProof)
	d.integer(types.ColStatus, &b.Status)
	if d.err != nil {
		return types.GrantBody{}, d.err
	}
	return b, nil
}

// decodeSpendStatus maps a grant_spend_statuses row onto a GrantSpendStatus
// by column name.
func decodeSpendStatus(row types.RawRow) (types.GrantSpendStatus, error) {
	var s types.GrantSpendStatus
	d := rowDecoder{row: row}
	d.key(types.ColTokenID, &s.TokenID)
	d.text(types.ColCredsID, &s.CredsID)
	d.integer(types.ColRedeemedAt, &s.RedeemedAt)
	d.integer(types.ColRedeemType, &s.RedeemType)
	if d.err != nil {
		return types.GrantSpendStatus{}, d.err
	}
	return s, nil
}
