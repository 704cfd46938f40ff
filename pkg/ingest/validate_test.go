package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersFrame() *Frame {
	return frameFromRecords(
		[]string{"id", "name", "email", "age", "join_date"},
		[][]string{
			{"1", "Ann", "ann@example.com", "30", "2024-01-02"},
			{"1", "Ann", "ann@example.com", "30", "2024-01-02"},
			{"2", "", "bob@example.com", "25", "2024-02-03"},
			{"3", "Cid", "cid@example.com", "abc", "2024-03-04"},
			{"4", "Dee", "dee@example.com", "41", "not a date"},
			{"5", "Eve", "eve@example.com", "28", "2024-05-06 10:30:00"},
		},
	)
}

func TestValidateAndClean_Users(t *testing.T) {
	in := usersFrame()
	out, st := NewValidator(DefaultRules()["users"]).ValidateAndClean(in)

	assert.Equal(t, Stats{
		Initial:         6,
		Duplicates:      1,
		MissingRequired: 1,
		InvalidTypes:    2,
		Remaining:       2,
	}, st)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, KindInt, out.Columns[out.Index("age")].Kind)
	assert.Equal(t, KindTime, out.Columns[out.Index("join_date")].Kind)

	first := out.Rows[0]
	assert.Equal(t, int64(1), first[0])
	assert.Equal(t, int64(30), first[3])
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), first[4])
	assert.Equal(t, time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC), out.Rows[1][4])

	require.Equal(t, 6, in.Len(), "input frame must not change")
}

func TestValidateAndClean_MissingColumns(t *testing.T) {
	f := frameFromRecords([]string{"name"}, [][]string{{"a"}, {""}, {"a"}})
	out, st := NewValidator(DefaultRules()["users"]).ValidateAndClean(f)

	assert.ElementsMatch(t, []string{"id", "email"}, st.MissingColumns)
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, 1, st.MissingRequired)
	assert.Equal(t, 1, out.Len())
}

func TestValidateAndClean_NoRequiredColumnPresent(t *testing.T) {
	f := frameFromRecords([]string{"other"}, [][]string{{"x"}, {""}})
	out, st := NewValidator(Rule{Required: []string{"id"}}).ValidateAndClean(f)

	assert.Equal(t, []string{"id"}, st.MissingColumns)
	assert.Equal(t, 0, st.MissingRequired)
	assert.Equal(t, 2, out.Len())
}

func TestValidateAndClean_Nil(t *testing.T) {
	out, st := NewValidator(Rule{}).ValidateAndClean(nil)
	assert.True(t, out.Empty())
	assert.Equal(t, Stats{}, st)
}

func TestRemoveDuplicates_DistinguishesKinds(t *testing.T) {
	f := &Frame{
		Columns: []Column{{"v", KindString}},
		Rows:    [][]any{{"1"}, {int64(1)}, {nil}, {nil}, {"1"}},
	}
	removed := NewValidator(Rule{}).RemoveDuplicates(f)
	assert.Equal(t, 2, removed)
	assert.Equal(t, [][]any{{"1"}, {int64(1)}, {nil}}, f.Rows)
}

func TestRemoveNulls_AllColumns(t *testing.T) {
	f := &Frame{
		Columns: []Column{{"a", KindInt}, {"b", KindInt}},
		Rows:    [][]any{{int64(1), nil}, {int64(2), int64(3)}},
	}
	assert.Equal(t, 1, NewValidator(Rule{}).RemoveNulls(f, nil))
	assert.Equal(t, [][]any{{int64(2), int64(3)}}, f.Rows)
}

func TestCoerce_NullsInvalidCells(t *testing.T) {
	f := &Frame{
		Columns: []Column{{"price", KindString}, {"stock", KindString}},
		Rows:    [][]any{{"1.25", "3"}, {"free", "3.0"}, {nil, "x"}},
	}
	v := NewValidator(DefaultRules()["products"])
	assert.Equal(t, 2, v.Coerce(f))
	assert.Equal(t, [][]any{{1.25, int64(3)}, {nil, int64(3)}, {nil, nil}}, f.Rows)
	assert.Equal(t, KindFloat, f.Columns[0].Kind)
}
