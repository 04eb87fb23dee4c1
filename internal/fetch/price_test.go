package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(year, period, value string) Observation {
	return Observation{Year: year, Period: period, Value: value}
}

func TestBuildDeflator(t *testing.T) {
	series := []Observation{
		obs("2017", "M12", "100.0"),
		obs("2017", "M06", "99.0"), // not year-end, ignored
		obs("2018", "M12", "102.0"),
		obs("2019", "M12", "104.04"),
	}

	df, e := BuildDeflator(series, 2019)
	require.Nil(t, e)

	yr, _ := df.Column(YearColumn)
	ratio, _ := df.Column(RatioColumn)
	infl, _ := df.Column(InflationColumn)

	// year labels are shifted forward by one
	assert.Equal(t, []int{2018, 2019, 2020}, yr.AsInt())

	// the anchor year's own ratio is exactly 1.0; it lives at the shifted
	// label 2020, so survey year 2020 income joins the 2019 price level
	assert.Equal(t, 1.0, ratio.AsFloat()[2])
	assert.InDelta(t, 104.04/100.0, ratio.AsFloat()[0], 1e-12)
	assert.InDelta(t, 104.04/102.0, ratio.AsFloat()[1], 1e-12)

	assert.Equal(t, 0.0, infl.AsFloat()[0])
	assert.InDelta(t, 1.02, infl.AsFloat()[1], 1e-12)
}

func TestBuildDeflator_MissingAnchor(t *testing.T) {
	series := []Observation{
		obs("2017", "M12", "100.0"),
		obs("2018", "M12", "102.0"),
	}

	_, e := BuildDeflator(series, 2019)
	assert.NotNil(t, e)
	assert.Contains(t, e.Error(), "anchor year")
}

func TestBuildDeflator_GapInSeries(t *testing.T) {
	series := []Observation{
		obs("2017", "M12", "100.0"),
		obs("2019", "M12", "104.0"),
	}

	_, e := BuildDeflator(series, 2019)
	assert.NotNil(t, e)
	assert.Contains(t, e.Error(), "missing year")
}

func TestBuildDeflator_Empty(t *testing.T) {
	_, e := BuildDeflator([]Observation{obs("2017", "M06", "99.0")}, 2017)
	assert.ErrorIs(t, e, ErrEmpty)
}

func TestPriceClient_Series(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req priceRequest
		require.Nil(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"CUUR0000SA0"}, req.SeriesID)
		assert.Equal(t, "2010", req.StartYear)
		assert.Equal(t, "2019", req.EndYear)

		_, _ = w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[{"data":[
			{"year":"2019","period":"M12","value":"104.04"},
			{"year":"2018","period":"M12","value":"102.0"}]}]}}`))
	}))
	defer srv.Close()

	cl := NewPriceClient(srv.URL)

	data, e := cl.Series(context.Background(), "CUUR0000SA0", 2010, 2019)
	require.Nil(t, e)
	assert.Len(t, data, 2)
	assert.Equal(t, "M12", data[0].Period)
}

func TestPriceClient_EmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[]}}`))
	}))
	defer srv.Close()

	cl := NewPriceClient(srv.URL)

	_, e := cl.Series(context.Background(), "CUUR0000SA0", 2010, 2019)
	assert.ErrorIs(t, e, ErrEmpty)
}
