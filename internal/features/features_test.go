package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leavers/internal/fetch"
	"leavers/internal/frame"
)

// rawDF builds a small raw survey table. Column values line up by index
// across the maps so tests can hand-compute expectations.
func rawDF(t *testing.T, cols map[string][]int, weight []float64) *frame.DF {
	var built []*frame.Col
	for _, name := range Variables() {
		if name == VarWeight {
			c, e := frame.NewCol(name, weight)
			require.Nil(t, e)
			built = append(built, c)
			continue
		}

		vals, ok := cols[name]
		require.True(t, ok, "missing column %s", name)

		c, e := frame.NewCol(name, vals)
		require.Nil(t, e)
		built = append(built, c)
	}

	n := len(weight)
	yr := make([]int, n)
	for ind := range yr {
		yr[ind] = 2018
	}

	yCol, e := frame.NewCol(fetch.YearColumn, yr)
	require.Nil(t, e)
	built = append(built, yCol)

	df, e := frame.NewDF(built...)
	require.Nil(t, e)

	return df
}

func twoRows(t *testing.T) *frame.DF {
	return rawDF(t, map[string][]int{
		VarStatus:     {1, 7},
		VarClassWkr:   {1, 4},
		VarWeeks:      {52, 30}, // second row fails the weeks gate
		VarEduc:       {39, 43},
		VarRace:       {1, 4},
		VarHispanic:   {2, 1},
		VarSex:        {1, 2},
		VarCitizen:    {1, 5},
		VarDisability: {2, 1},
		VarMarital:    {1, 7},
		VarKids:       {2, 0},
		VarIncome:     {50000, 0},
		VarOccupation: {1, 3},
		VarAge:        {41, 63},
		VarWorkStat:   {2, 3},
	}, []float64{1500.0, 900.0})
}

func anchorDeflator(t *testing.T) *frame.DF {
	yCol, e1 := frame.NewCol(fetch.YearColumn, []int{2017, 2018, 2019})
	require.Nil(t, e1)

	rCol, e2 := frame.NewCol(fetch.RatioColumn, []float64{1.05, 1.02, 1.0})
	require.Nil(t, e2)

	df, e3 := frame.NewDF(yCol, rCol)
	require.Nil(t, e3)

	return df
}

func TestEligible(t *testing.T) {
	df := twoRows(t)

	dfOut, e := Eligible(df)
	require.Nil(t, e)
	require.Equal(t, 1, dfOut.RowCount())

	cls, _ := dfOut.Column(VarClassWkr)
	wks, _ := dfOut.Column(VarWeeks)
	for row := 0; row < dfOut.RowCount(); row++ {
		assert.GreaterOrEqual(t, cls.ElementInt(row), 1)
		assert.LessOrEqual(t, cls.ElementInt(row), 6)
		assert.Greater(t, wks.ElementInt(row), 30)
	}
}

func TestEducationBucket(t *testing.T) {
	// left-inclusive boundaries, total over [30, inf)
	cases := map[int]string{
		30: "dropout",
		38: "dropout",
		39: "highschool",
		40: "somecollege",
		41: "associate",
		42: "associate",
		43: "bachelor",
		44: "master",
		45: "doctorate",
		46: "doctorate",
		99: "doctorate",
	}

	for code, want := range cases {
		assert.Equal(t, want, EducationBucket(code), "code %d", code)
	}

	// exhaustive: every code maps to one of the seven categories
	valid := map[string]bool{
		"dropout": true, "highschool": true, "somecollege": true,
		"associate": true, "bachelor": true, "master": true, "doctorate": true,
	}
	for code := 30; code < 60; code++ {
		assert.True(t, valid[EducationBucket(code)], "code %d", code)
	}
}

func TestCitizenAndClassBuckets(t *testing.T) {
	assert.Equal(t, "native", CitizenBucket(1))
	assert.Equal(t, "native", CitizenBucket(3))
	assert.Equal(t, "naturalized", CitizenBucket(4))
	assert.Equal(t, "noncitizen", CitizenBucket(5))

	assert.Equal(t, "wagesalary", ClassWorkerBucket(1))
	assert.Equal(t, "government", ClassWorkerBucket(2))
	assert.Equal(t, "government", ClassWorkerBucket(4))
	assert.Equal(t, "selfincorp", ClassWorkerBucket(5))
	assert.Equal(t, "selfunincorp", ClassWorkerBucket(6))
}

func TestWithLeaver(t *testing.T) {
	df := rawDF(t, map[string][]int{
		VarStatus:     {1, 2, 3},
		VarClassWkr:   {1, 1, 1},
		VarWeeks:      {52, 52, 52},
		VarEduc:       {39, 39, 39},
		VarRace:       {1, 1, 1},
		VarHispanic:   {2, 2, 2},
		VarSex:        {1, 1, 1},
		VarCitizen:    {1, 1, 1},
		VarDisability: {2, 2, 2},
		VarMarital:    {1, 1, 1},
		VarKids:       {0, 0, 0},
		VarIncome:     {0, 0, 0},
		VarOccupation: {1, 1, 1},
		VarAge:        {40, 40, 40},
		VarWorkStat:   {2, 2, 2},
	}, []float64{1, 1, 1})

	dfOut, e := WithLeaver(df)
	require.Nil(t, e)

	leaver, _ := dfOut.Column(ColLeaver)
	assert.Equal(t, []int{0, 0, 1}, leaver.AsInt())
}

func TestWithLogIncome(t *testing.T) {
	df := rawDF(t, map[string][]int{
		VarStatus:     {1, 1, 1},
		VarClassWkr:   {1, 1, 1},
		VarWeeks:      {52, 52, 52},
		VarEduc:       {39, 39, 39},
		VarRace:       {1, 1, 1},
		VarHispanic:   {2, 2, 2},
		VarSex:        {1, 1, 1},
		VarCitizen:    {1, 1, 1},
		VarDisability: {2, 2, 2},
		VarMarital:    {1, 1, 1},
		VarKids:       {0, 0, 0},
		VarIncome:     {0, -100, 50000}, // zero, negative, positive
		VarOccupation: {1, 1, 1},
		VarAge:        {40, 40, 40},
		VarWorkStat:   {2, 2, 2},
	}, []float64{1, 1, 1})

	dfOut, e := WithLogIncome(df, anchorDeflator(t))
	require.Nil(t, e)

	loginc, _ := dfOut.Column(ColLogInc)
	x := loginc.AsFloat()

	// non-positive deflated income is exactly 0 by convention
	assert.Equal(t, 0.0, x[0])
	assert.Equal(t, 0.0, x[1])
	assert.InDelta(t, math.Log(50000.0*1.02), x[2], 1e-12)

	// the join key survives, the ratio column does not
	assert.True(t, dfOut.HasColumn(fetch.YearColumn))
	assert.False(t, dfOut.HasColumn(fetch.RatioColumn))
}

func TestWithLogIncome_MissingYear(t *testing.T) {
	df := twoRows(t)

	yCol, _ := frame.NewCol(fetch.YearColumn, []int{2017})
	rCol, _ := frame.NewCol(fetch.RatioColumn, []float64{1.0})
	defl, e := frame.NewDF(yCol, rCol)
	require.Nil(t, e)

	_, e = WithLogIncome(df, defl)
	assert.NotNil(t, e)
}

func TestDerive(t *testing.T) {
	df, e := Eligible(twoRows(t))
	require.Nil(t, e)

	dfOut, e := Derive(df, anchorDeflator(t))
	require.Nil(t, e)
	require.Equal(t, 1, dfOut.RowCount())

	for _, name := range []string{
		ColEduc, ColRace, ColHispanic, ColMale, ColCitizen, ColClassWkr,
		ColParttime, ColDisabled, ColMarried, ColKids, ColOcc, ColLogInc, ColLeaver,
	} {
		assert.True(t, dfOut.HasColumn(name), name)
	}

	educ, _ := dfOut.Column(ColEduc)
	assert.Equal(t, "highschool", educ.ElementString(0))

	married, _ := dfOut.Column(ColMarried)
	assert.Equal(t, 1, married.ElementInt(0))

	kids, _ := dfOut.Column(ColKids)
	assert.Equal(t, 1, kids.ElementInt(0))

	leaver, _ := dfOut.Column(ColLeaver)
	assert.Equal(t, 0, leaver.ElementInt(0))

	loginc, _ := dfOut.Column(ColLogInc)
	assert.InDelta(t, math.Log(50000.0*1.02), loginc.ElementFloat(0), 1e-12)
}
