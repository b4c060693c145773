package table_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/table"
)

func num(f float64) table.Value { return table.Number(f) }

func runsTable(t *testing.T, rows ...[2]float64) *table.Table {
	t.Helper()
	tb := table.MustNew(table.Cols("config_id", "response")...)
	for _, r := range rows {
		resp := table.Number(r[1])
		require.NoError(t, tb.Append(num(r[0]), resp))
	}
	return tb
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind table.Kind
		want string
	}{
		{"", table.KindMissing, "NaN"},
		{"   ", table.KindMissing, "NaN"},
		{"0.25", table.KindNumber, "0.25"},
		{" 3 ", table.KindNumber, "3"},
		{"1e-3", table.KindNumber, "0.001"},
		{"nan", table.KindMissing, "NaN"},
		{"adam", table.KindString, "adam"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := table.Parse(tt.raw)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValueCoerceAndKey(t *testing.T) {
	assert.True(t, table.String("0.5").Coerce().IsNumber())
	assert.True(t, table.String("abc").Coerce().IsMissing())
	assert.True(t, table.Number(1).Equal(table.String("1").Coerce()))
	assert.False(t, table.String("1").Equal(table.Number(1)))
	assert.True(t, table.Missing().Equal(table.Number(math.NaN())))
}

func TestValueMarshalJSON(t *testing.T) {
	data, err := json.Marshal([]table.Value{num(1.5), table.String("x"), table.Missing(), num(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,"x",null,"+Inf"]`, string(data))
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := table.New(table.Col("a"), table.Col("b"), table.Col("a"))
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateColumn(err))

	_, err = table.New(table.Grouped("smac", "a"), table.Grouped("classifier", "a"))
	assert.NoError(t, err)
}

func TestAppendChecksWidth(t *testing.T) {
	tb := table.MustNew(table.Cols("a", "b")...)
	assert.Error(t, tb.Append(num(1)))
	assert.NoError(t, tb.Append(num(1), num(2)))
	assert.Equal(t, 1, tb.Len())
	assert.Equal(t, 2, tb.Width())
	assert.True(t, tb.At(0, "missing").IsMissing())
}

func TestBestPerKey(t *testing.T) {
	tb := runsTable(t,
		[2]float64{1, 0.4},
		[2]float64{2, 0.3},
		[2]float64{1, 0.2},
		[2]float64{3, math.NaN()},
		[2]float64{1, 0.9},
		[2]float64{3, 0.7},
	)
	require.NoError(t, tb.BestPerKey("config_id", "response"))

	got := map[float64]float64{}
	for _, r := range tb.Records() {
		id, _ := r.Float("config_id")
		resp, ok := r.Float("response")
		require.True(t, ok, "a missing response must never win")
		got[id] = resp
	}
	assert.Equal(t, map[float64]float64{1: 0.2, 2: 0.3, 3: 0.7}, got)
}

func TestBestPerKeyIsMinimumOfGroup(t *testing.T) {
	resp := []float64{0.8, 0.1, 0.5, 0.5, 0.3, 0.9, 0.05, 0.6}
	ids := []float64{1, 2, 1, 3, 2, 3, 1, 2}
	tb := table.MustNew(table.Cols("config_id", "response")...)
	want := map[float64]float64{}
	for i := range resp {
		require.NoError(t, tb.Append(num(ids[i]), num(resp[i])))
		if cur, ok := want[ids[i]]; !ok || resp[i] < cur {
			want[ids[i]] = resp[i]
		}
	}
	require.NoError(t, tb.BestPerKey("config_id", "response"))
	assert.Equal(t, len(want), tb.Len())
	for _, r := range tb.Records() {
		id, _ := r.Float("config_id")
		v, _ := r.Float("response")
		assert.Equal(t, want[id], v)
	}
}

func TestSortDescendingIsStable(t *testing.T) {
	tb := table.MustNew(table.Cols("id", "v")...)
	require.NoError(t, tb.Append(num(1), num(0.5)))
	require.NoError(t, tb.Append(num(2), table.Missing()))
	require.NoError(t, tb.Append(num(3), num(0.5)))
	require.NoError(t, tb.Append(num(4), num(0.9)))
	require.NoError(t, tb.SortDescending("v"))

	ids, _ := tb.Column("id")
	assert.Equal(t, []string{"2", "4", "1", "3"}, []string{ids[0].String(), ids[1].String(), ids[2].String(), ids[3].String()})
	assert.Error(t, tb.SortDescending("nope"))
}

func TestFilterOpenInterval(t *testing.T) {
	tb := runsTable(t,
		[2]float64{1, 0},
		[2]float64{2, 1},
		[2]float64{3, 0.5},
		[2]float64{4, math.NaN()},
		[2]float64{5, -0.1},
	)
	kept := tb.Filter(func(r table.Record) bool {
		v, ok := r.Float("response")
		return ok && v > 0 && v < 1
	})
	require.Equal(t, 1, kept.Len())
	assert.Equal(t, "3", kept.At(0, "config_id").String())
	assert.Equal(t, 5, tb.Len())
}

func TestDropColumnsAndSelect(t *testing.T) {
	tb := table.MustNew(table.Cols("a", "b", "c")...)
	require.NoError(t, tb.Append(num(1), num(2), num(3)))

	dropped := tb.DropColumns("b", "absent")
	assert.Equal(t, []string{"a", "c"}, dropped.Keys())
	assert.Equal(t, "3", dropped.At(0, "c").String())

	sel, err := tb.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Keys())

	_, err = tb.Select("x")
	assert.Error(t, err)
}

func TestArgMin(t *testing.T) {
	tb := runsTable(t, [2]float64{1, 0.4}, [2]float64{2, 0.1}, [2]float64{3, 0.1}, [2]float64{4, math.NaN()})
	i, ok := tb.ArgMin("response")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	empty := table.MustNew(table.Col("response"))
	_, ok = empty.ArgMin("response")
	assert.False(t, ok)
}

func TestCoerceNumeric(t *testing.T) {
	tb := table.MustNew(table.Cols("mixed", "numeric", "text")...)
	require.NoError(t, tb.Append(table.String("1"), table.String("2"), table.String("adam")))
	require.NoError(t, tb.Append(table.String("x"), table.Missing(), table.String("sgd")))
	tb.CoerceNumeric()

	assert.True(t, tb.At(0, "numeric").IsNumber())
	assert.True(t, tb.At(1, "numeric").IsMissing())
	assert.True(t, tb.At(0, "mixed").IsString())
	assert.True(t, tb.At(0, "text").IsString())

	require.NoError(t, tb.CoerceColumn("mixed"))
	assert.True(t, tb.At(0, "mixed").IsNumber())
	assert.True(t, tb.At(1, "mixed").IsMissing())
}

func TestInnerJoin(t *testing.T) {
	left := runsTable(t, [2]float64{3, 0.2}, [2]float64{1, 0.5}, [2]float64{9, 0.1})
	right := table.MustNew(table.Cols("config_id", "lr")...)
	require.NoError(t, right.Append(num(1), num(0.01)))
	require.NoError(t, right.Append(num(3), num(0.1)))

	out, err := table.InnerJoin(left, right, "config_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"config_id", "response", "lr"}, out.Keys())
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "3", out.At(0, "config_id").String())
	assert.Equal(t, "0.1", out.At(0, "lr").String())
	assert.Equal(t, "1", out.At(1, "config_id").String())

	clash := table.MustNew(table.Cols("config_id", "response")...)
	_, err = table.InnerJoin(left, clash, "config_id")
	assert.True(t, errors.IsDuplicateColumn(err))
}

func TestConcat(t *testing.T) {
	a := table.MustNew(table.Cols("x", "y")...)
	require.NoError(t, a.Append(num(1), num(2)))
	b := table.MustNew(table.Cols("y", "z")...)
	require.NoError(t, b.Append(num(3), num(4)))
	require.NoError(t, b.Append(num(5), num(6)))

	label := table.Col("run")
	out, err := table.Concat([]*table.Table{a, b}, &label, []string{"runs_1", "runs_2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "x", "y", "z"}, out.Keys())
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "runs_1", out.At(0, "run").String())
	assert.True(t, out.At(0, "z").IsMissing())
	assert.Equal(t, "runs_2", out.At(2, "run").String())
	assert.True(t, out.At(2, "x").IsMissing())
	assert.Equal(t, "6", out.At(2, "z").String())

	_, err = table.Concat([]*table.Table{a}, &label, nil)
	assert.Error(t, err)

	withRun := table.MustNew(table.Col("run"))
	_, err = table.Concat([]*table.Table{withRun}, &label, []string{"r"})
	assert.True(t, errors.IsDuplicateColumn(err))
}

func TestColumnarRoundTrip(t *testing.T) {
	tb := table.MustNew(table.Grouped("smac", "cpu_time"), table.Grouped("classifier", "lr"), table.Grouped("classifier", "solver"))
	require.NoError(t, tb.Append(num(1.5), table.Missing(), table.String("adam")))
	require.NoError(t, tb.Append(num(2), num(0.01), table.Missing()))

	back, err := table.FromColumnar(tb.ToColumnar())
	require.NoError(t, err)
	assert.Equal(t, tb.Columns(), back.Columns())
	assert.Equal(t, tb.StringRows(), back.StringRows())
	assert.True(t, back.At(0, "classifier/lr").IsMissing())
	assert.True(t, back.At(1, "classifier/solver").IsMissing())

	bad := tb.ToColumnar()
	bad.Columns[0].Kinds = bad.Columns[0].Kinds[:1]
	_, err = table.FromColumnar(bad)
	assert.Error(t, err)
}

func TestRecordMarshalJSONKeepsOrder(t *testing.T) {
	tb := table.MustNew(table.Cols("z", "a")...)
	require.NoError(t, tb.Append(num(1), table.String("b")))
	data, err := json.Marshal(tb.Record(0))
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"b"}`, string(data))
}
