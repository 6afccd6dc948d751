package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

func TestIsAllAbsent(t *testing.T) {
	cols := []string{"a", "b", "c"}
	tests := []struct {
		name string
		row  types.RawRow
		want bool
	}{
		{"every column null", types.RawRow{Columns: cols, Values: []any{nil, nil, nil}}, true},
		{"no columns", types.RawRow{}, true},
		{"one text value", types.RawRow{Columns: cols, Values: []any{nil, "x", nil}}, false},
		{"empty string is present", types.RawRow{Columns: cols, Values: []any{nil, "", nil}}, false},
		{"zero is present", types.RawRow{Columns: cols, Values: []any{int64(0), nil, nil}}, false},
		{"empty blob is present", types.RawRow{Columns: cols, Values: []any{nil, nil, []byte{}}}, false},
		{"false is present", types.RawRow{Columns: cols, Values: []any{false, nil, nil}}, false},
		{"all present", types.RawRow{Columns: cols, Values: []any{"a", int64(1), 2.5}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllAbsent(tt.row))
		})
	}
}
