package factory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
)

func TestDefault_EmbeddedReference(t *testing.T) {
	ref, err := factory.Default()
	require.NoError(t, err)

	assert.Equal(t, "202001", ref.Start.YYYYMM())
	assert.Equal(t, arrear.PromotionTarget{GradePay: 7600, Step: 0}, ref.Promotion)
	assert.Equal(t, []generic.GradePay{6600, 7600}, ref.Matrix.Tracks())

	maxStep, err := ref.Matrix.MaxStep(6600)
	require.NoError(t, err)
	assert.Equal(t, 27, maxStep)

	maxStep, err = ref.Matrix.MaxStep(7600)
	require.NoError(t, err)
	assert.Equal(t, 21, maxStep)

	assert.Equal(t, 6, ref.Rates.Len())
	assert.Equal(t, "0.28", ref.Rates.RateAt(generic.MustParseYYYYMM("202602")).String())
}

func TestDefault_ParsedOnce(t *testing.T) {
	a := factory.MustDefault()
	b := factory.MustDefault()
	assert.Same(t, a, b)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	ref, err := factory.Load("")
	require.NoError(t, err)
	assert.Same(t, factory.MustDefault(), ref)
}

func TestLoad_OverrideFile(t *testing.T) {
	// GIVEN: a smaller reference document with a later start month
	doc := `{
		"name": "test",
		"start_month": "202101",
		"promotion": {"grade_pay": 7600, "step": 1},
		"pay_matrix": {
			"6600": [[100, 110], [200, 220]],
			"7600": [[300, 330], [400, 440]]
		},
		"da_history": [
			{"effective": "202101", "rate": "0.5"}
		]
	}`
	path := filepath.Join(t.TempDir(), "reference.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	// WHEN: loaded and used to build an engine
	ref, err := factory.Load(path)
	require.NoError(t, err)

	res, err := ref.NewEngine().Calculate(arrear.RawInput{
		InitialGradePay: 6600,
		InitialBasic:    100,
		IncrementMonth:  1,
		EndMonth:        "202102",
		PromotionMonth:  "202102",
	})
	require.NoError(t, err)

	// THEN: the override's start, rates and promotion target are used
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Jan-2021", res.Records[0].Label)
	assert.Equal(t, "15.00", res.Records[0].Arrear.StringFixed(2)) // (110-100) * 1.5
	assert.Equal(t, generic.GradePay(7600), res.Records[1].GradePay)
	assert.Equal(t, 400, res.Records[1].OldBasic)
	assert.Equal(t, "60.00", res.Records[1].Arrear.StringFixed(2))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := factory.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParse_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{`},
		{name: "bad grade pay key", doc: `{"pay_matrix": {"abc": [[1, 2]]}, "da_history": [{"effective": "202001", "rate": "0.1"}]}`},
		{name: "duplicate old basic", doc: `{"pay_matrix": {"7600": [[1, 2], [1, 3]]}, "da_history": [{"effective": "202001", "rate": "0.1"}]}`},
		{name: "empty da history", doc: `{"pay_matrix": {"7600": [[1, 2]]}, "da_history": []}`},
		{name: "da dates out of order", doc: `{"pay_matrix": {"7600": [[1, 2]]}, "da_history": [{"effective": "202101", "rate": "0.1"}, {"effective": "202001", "rate": "0.2"}]}`},
		{name: "bad da date", doc: `{"pay_matrix": {"7600": [[1, 2]]}, "da_history": [{"effective": "2020-01", "rate": "0.1"}]}`},
		{name: "bad start month", doc: `{"start_month": "2020", "pay_matrix": {"7600": [[1, 2]]}, "da_history": [{"effective": "202001", "rate": "0.1"}]}`},
		{name: "promotion step missing", doc: `{"promotion": {"grade_pay": 7600, "step": 5}, "pay_matrix": {"7600": [[1, 2]]}, "da_history": [{"effective": "202001", "rate": "0.1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidReferenceData)
		})
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	ref := factory.MustDefault()

	data, err := json.Marshal(ref.ToJSON())
	require.NoError(t, err)

	again, err := factory.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ref.Start, again.Start)
	assert.Equal(t, ref.Promotion, again.Promotion)
	assert.Equal(t, ref.Matrix.Tracks(), again.Matrix.Tracks())
	for _, gp := range ref.Matrix.Tracks() {
		assert.Equal(t, ref.Matrix.Entries(gp), again.Matrix.Entries(gp))
	}
	require.Equal(t, ref.Rates.Len(), again.Rates.Len())
	for i, e := range ref.Rates.Entries() {
		assert.True(t, e.Rate.Equal(again.Rates.Entries()[i].Rate))
		assert.Equal(t, e.Effective, again.Rates.Entries()[i].Effective)
	}
}
