package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leavers/internal/config"
	"leavers/internal/features"
	"leavers/internal/fetch"
	"leavers/internal/frame"
	"leavers/internal/store"
)

// surveyPayload builds an array-of-arrays payload with nRows synthetic
// respondents covering several categories per categorical.
func surveyPayload(nRows int) string {
	vars := features.Variables()

	value := func(name string, i int) string {
		switch name {
		case features.VarStatus:
			if i%5 == 0 {
				return "7"
			}
			return "1"
		case features.VarClassWkr:
			return fmt.Sprintf("%d", 1+i%6)
		case features.VarWeeks:
			return "52"
		case features.VarEduc:
			return fmt.Sprintf("%d", 35+i%12)
		case features.VarRace:
			return fmt.Sprintf("%d", 1+i%4)
		case features.VarHispanic, features.VarSex, features.VarDisability:
			return fmt.Sprintf("%d", 1+i%2)
		case features.VarCitizen:
			return fmt.Sprintf("%d", 1+i%5)
		case features.VarMarital:
			return fmt.Sprintf("%d", 1+i%7)
		case features.VarKids:
			return fmt.Sprintf("%d", i%3)
		case features.VarIncome:
			return fmt.Sprintf("%d", 10000+100*i)
		case features.VarOccupation:
			return fmt.Sprintf("%d", 1+i%10)
		case features.VarAge:
			return fmt.Sprintf("%d", 25+i%40)
		case features.VarWorkStat:
			return fmt.Sprintf("%d", 2+i%2)
		case features.VarWeight:
			return fmt.Sprintf("%.2f", 1000.0+float64(i))
		default:
			return "0"
		}
	}

	var rows []string
	rows = append(rows, `["`+strings.Join(vars, `","`)+`"]`)
	for i := 0; i < nRows; i++ {
		var vals []string
		for _, name := range vars {
			vals = append(vals, `"`+value(name, i)+`"`)
		}

		rows = append(rows, "["+strings.Join(vals, ",")+"]")
	}

	return "[" + strings.Join(rows, ",") + "]"
}

func derivedTable(t *testing.T, nRows int) *frame.DF {
	raw, e := fetch.ParseSurvey([]byte(surveyPayload(nRows)), 2018, features.Variables(), features.VarWeight)
	require.Nil(t, e)

	yCol, _ := frame.NewCol(fetch.YearColumn, []int{2018})
	rCol, _ := frame.NewCol(fetch.RatioColumn, []float64{1.02})
	defl, e := frame.NewDF(yCol, rCol)
	require.Nil(t, e)

	eligible, e := features.Eligible(raw)
	require.Nil(t, e)

	derived, e := features.Derive(eligible, defl)
	require.Nil(t, e)

	return derived
}

func TestEncode(t *testing.T) {
	derived := derivedTable(t, 60)

	encoded, e := Encode(derived)
	require.Nil(t, e)

	// raw codes are gone, weight and label survive
	assert.False(t, encoded.HasColumn(features.VarEduc))
	assert.False(t, encoded.HasColumn(features.VarStatus))
	assert.True(t, encoded.HasColumn(features.VarWeight))
	assert.True(t, encoded.HasColumn(features.ColLeaver))

	// categoricals are replaced by k-1 indicators: 4 race categories in
	// the synthetic data -> 3 columns, reference dropped
	assert.False(t, encoded.HasColumn(features.ColRace))
	raceCols := 0
	for _, name := range encoded.ColumnNames() {
		if strings.HasPrefix(name, features.ColRace) {
			raceCols++

			c, _ := encoded.Column(name)
			assert.Equal(t, frame.DTint, c.VectorType())
		}
	}
	assert.Equal(t, 3, raceCols)

	// single-year table: the year categorical collapses to no columns
	for _, name := range encoded.ColumnNames() {
		assert.False(t, strings.HasPrefix(name, "yr"), name)
	}
}

func TestPrepare(t *testing.T) {
	derived := derivedTable(t, 80)

	encoded, e := Encode(derived)
	require.Nil(t, e)

	ms1, e := Prepare(encoded, 50, 19, 0.2)
	require.Nil(t, e)
	assert.Equal(t, 50, ms1.Sample.RowCount())
	assert.Equal(t, 40, ms1.Train.RowCount())
	assert.Equal(t, 10, ms1.Test.RowCount())

	// identical seed, identical membership
	ms2, e := Prepare(encoded, 50, 19, 0.2)
	require.Nil(t, e)

	w1, _ := ms1.Train.Column(features.VarWeight)
	w2, _ := ms2.Train.Column(features.VarWeight)
	assert.Equal(t, w1.AsFloat(), w2.AsFloat())

	// continuous columns are scaled on the sample
	age, _ := ms1.Sample.Column(features.VarAge)
	mean := 0.0
	for _, v := range age.AsFloat() {
		mean += v
	}
	assert.InDelta(t, 0.0, mean/float64(age.Len()), 1e-9)

	// oversized sample is an error, not a clamp
	_, e = Prepare(encoded, encoded.RowCount()+1, 19, 0.2)
	assert.NotNil(t, e)
}

func TestRunner_Run(t *testing.T) {
	surveySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(surveyPayload(60)))
	}))
	defer surveySrv.Close()

	priceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[{"data":[
			{"year":"2016","period":"M12","value":"100.0"},
			{"year":"2017","period":"M12","value":"102.0"},
			{"year":"2018","period":"M12","value":"104.0"},
			{"year":"2019","period":"M12","value":"106.0"}]}]}}`))
	}))
	defer priceSrv.Close()

	cfg := config.Defaults()
	cfg.StartYear = 2018
	cfg.EndYear = 2019
	cfg.AnchorYear = 2018
	cfg.SampleSize = 80
	cfg.Seed = 1
	cfg.TestFraction = 0.25
	cfg.Trees = 20
	cfg.SurveyURL = surveySrv.URL
	cfg.PriceURL = priceSrv.URL

	cache, e := store.OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.Nil(t, e)
	defer func() { _ = cache.Close() }()

	r := &Runner{
		Cfg:    cfg,
		Survey: fetch.NewSurveyClient(cfg.SurveyURL, "testkey"),
		Price:  fetch.NewPriceClient(cfg.PriceURL),
		Cache:  cache,
	}

	summary, encoded, e := r.Run(context.Background())
	require.Nil(t, e)

	assert.Equal(t, 120, summary.RawRows)
	assert.Equal(t, 120, summary.EligibleRows)
	assert.Equal(t, 80, summary.SampleRows)
	assert.Equal(t, 60, summary.TrainRows)
	assert.Equal(t, 20, summary.TestRows)
	assert.InDelta(t, 0.2, summary.LeaverShare, 0.1)

	require.NotNil(t, summary.PCA)
	assert.InDelta(t, 1.0, summary.PCA.CumVar[len(summary.PCA.CumVar)-1], 1e-9)
	require.NotNil(t, summary.Confusion)
	assert.NotEmpty(t, summary.Forest)

	assert.True(t, encoded.HasColumn(features.ColLeaver))

	// both years went through the cache
	years, e := cache.Years()
	require.Nil(t, e)
	assert.Equal(t, []int{2018, 2019}, years)
}
