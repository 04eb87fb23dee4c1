package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"leavers/internal/frame"
)

// Deflator table column names.
const (
	RatioColumn     = "ratio"
	InflationColumn = "inflation"
)

// yearEndPeriod marks the December observation of a monthly series.
const yearEndPeriod = "M12"

// PriceClient fetches a cost-of-living index series with a single POST.
type PriceClient struct {
	baseURL string

	httpClient *http.Client
}

func NewPriceClient(baseURL string) *PriceClient {
	return &PriceClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Minute},
	}
}

// Observation is one raw series data point.
type Observation struct {
	Year   string `json:"year"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

type priceRequest struct {
	SeriesID  []string `json:"seriesid"`
	StartYear string   `json:"startyear"`
	EndYear   string   `json:"endyear"`
}

type priceResponse struct {
	Status  string `json:"status"`
	Results struct {
		Series []struct {
			Data []Observation `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Series fetches the raw observations for one series id over [start, end].
func (c *PriceClient) Series(ctx context.Context, seriesID string, start, end int) ([]Observation, error) {
	body, e := json.Marshal(priceRequest{
		SeriesID:  []string{seriesID},
		StartYear: strconv.Itoa(start),
		EndYear:   strconv.Itoa(end),
	})
	if e != nil {
		return nil, e
	}

	req, e := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if e != nil {
		return nil, e
	}

	req.Header.Set("Content-Type", "application/json")

	resp, e := c.httpClient.Do(req)
	if e != nil {
		return nil, fmt.Errorf("%w: price series %s: %v", ErrNetwork, seriesID, e)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: price series %s: status %d", ErrNetwork, seriesID, resp.StatusCode)
	}

	var pr priceResponse
	if e = json.NewDecoder(resp.Body).Decode(&pr); e != nil {
		return nil, fmt.Errorf("%w: price series %s: %v", ErrMalformed, seriesID, e)
	}

	if len(pr.Results.Series) == 0 {
		return nil, fmt.Errorf("%w: price series %s: no series in response", ErrEmpty, seriesID)
	}

	if len(pr.Results.Series[0].Data) == 0 {
		return nil, fmt.Errorf("%w: price series %s: no observations", ErrEmpty, seriesID)
	}

	return pr.Results.Series[0].Data, nil
}

// BuildDeflator reduces raw observations to a year-keyed lookup table with
// a price-level ratio relative to anchorYear and a year-over-year inflation
// ratio. Only year-end observations are used. After the ratios are
// computed, every year label is shifted forward by one: income reported in
// survey year Y refers to calendar year Y-1, so the survey row for year Y
// joins against the ratio computed for Y-1.
//
// A missing year inside the observed range, or a missing anchor year, is
// fatal.
func BuildDeflator(obs []Observation, anchorYear int) (*frame.DF, error) {
	level := make(map[int]float64)
	minYear, maxYear := 0, 0
	for _, o := range obs {
		if o.Period != yearEndPeriod {
			continue
		}

		yr, e := strconv.Atoi(o.Year)
		if e != nil {
			return nil, fmt.Errorf("%w: bad year %q in price series", ErrMalformed, o.Year)
		}

		val, e := strconv.ParseFloat(o.Value, 64)
		if e != nil {
			return nil, fmt.Errorf("%w: bad value %q in price series", ErrMalformed, o.Value)
		}

		if val <= 0.0 {
			return nil, fmt.Errorf("%w: non-positive index value for year %d", ErrMalformed, yr)
		}

		level[yr] = val
		if minYear == 0 || yr < minYear {
			minYear = yr
		}

		if yr > maxYear {
			maxYear = yr
		}
	}

	if len(level) == 0 {
		return nil, fmt.Errorf("%w: no year-end observations in price series", ErrEmpty)
	}

	anchor, ok := level[anchorYear]
	if !ok {
		return nil, fmt.Errorf("anchor year %d absent from price series", anchorYear)
	}

	var (
		years     []int
		ratios    []float64
		inflation []float64
	)
	for yr := minYear; yr <= maxYear; yr++ {
		val, ok := level[yr]
		if !ok {
			return nil, fmt.Errorf("price series missing year %d", yr)
		}

		// shift: the ratio for calendar year yr serves survey year yr+1
		years = append(years, yr+1)
		ratios = append(ratios, anchor/val)

		infl := 0.0
		if prior, ok := level[yr-1]; ok {
			infl = val / prior
		}

		inflation = append(inflation, infl)
	}

	yCol, e := frame.NewCol(YearColumn, years)
	if e != nil {
		return nil, e
	}

	rCol, e := frame.NewCol(RatioColumn, ratios)
	if e != nil {
		return nil, e
	}

	iCol, e := frame.NewCol(InflationColumn, inflation)
	if e != nil {
		return nil, e
	}

	return frame.NewDF(yCol, rCol, iCol)
}
