package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leavers/internal/frame"
)

// YearColumn is the name of the column added to every fetched table to
// record which survey year its rows came from.
const YearColumn = "year"

// SurveyClient fetches one year of survey microdata per call. The endpoint
// returns a JSON array of arrays with the header row first; every value
// arrives as a string.
type SurveyClient struct {
	baseURL string
	key     string

	httpClient *http.Client
}

func NewSurveyClient(baseURL, key string) *SurveyClient {
	return &SurveyClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// YearRaw performs the HTTP call for one year and returns the raw payload.
// The raw form is what the local cache stores.
func (c *SurveyClient) YearRaw(ctx context.Context, year int, variables []string) ([]byte, error) {
	if c.key == "" {
		return nil, fmt.Errorf("%w: survey api key is empty", ErrNoCredential)
	}

	if len(variables) == 0 {
		return nil, fmt.Errorf("no variables requested")
	}

	query := url.Values{}
	query.Set("get", strings.Join(variables, ","))
	query.Set("key", c.key)
	u := fmt.Sprintf("%s/%d/cps/asec/mar?%s", c.baseURL, year, query.Encode())

	req, e := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if e != nil {
		return nil, e
	}

	resp, e := c.httpClient.Do(req)
	if e != nil {
		return nil, fmt.Errorf("%w: survey year %d: %v", ErrNetwork, year, e)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: survey year %d: status %d", ErrNetwork, year, resp.StatusCode)
	}

	payload, e := io.ReadAll(resp.Body)
	if e != nil {
		return nil, fmt.Errorf("%w: survey year %d: %v", ErrNetwork, year, e)
	}

	return payload, nil
}

// Year fetches and parses one survey year.
func (c *SurveyClient) Year(ctx context.Context, year int, variables []string, weightVar string) (*frame.DF, error) {
	var (
		payload []byte
		e       error
	)
	if payload, e = c.YearRaw(ctx, year, variables); e != nil {
		return nil, e
	}

	return ParseSurvey(payload, year, variables, weightVar)
}

// ParseSurvey converts the array-of-arrays payload for one year into a
// table. The header row must carry exactly the requested variables, every
// data row must match the header width, the weight column is typed float
// and every other column int. A year column is appended.
func ParseSurvey(payload []byte, year int, variables []string, weightVar string) (*frame.DF, error) {
	var raw [][]any
	if e := json.Unmarshal(payload, &raw); e != nil {
		return nil, fmt.Errorf("%w: survey year %d: %v", ErrMalformed, year, e)
	}

	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: survey year %d has no data rows", ErrEmpty, year)
	}

	header := make([]string, len(raw[0]))
	for ind, h := range raw[0] {
		s, ok := h.(string)
		if !ok {
			return nil, fmt.Errorf("%w: survey year %d: non-string header", ErrMalformed, year)
		}

		header[ind] = s
	}

	if len(header) != len(variables) {
		return nil, fmt.Errorf("%w: survey year %d: header width %d, requested %d variables",
			ErrMalformed, year, len(header), len(variables))
	}

	want := make(map[string]bool)
	for _, v := range variables {
		want[v] = true
	}

	for _, h := range header {
		if !want[h] {
			return nil, fmt.Errorf("%w: survey year %d: unexpected column %s", ErrMalformed, year, h)
		}
	}

	body := raw[1:]
	nRows := len(body)

	var cols []*frame.Col
	for j, name := range header {
		var (
			col *frame.Col
			e   error
		)
		if name == weightVar {
			x := make([]float64, nRows)
			for i, row := range body {
				if len(row) != len(header) {
					return nil, fmt.Errorf("%w: survey year %d: row %d width %d", ErrMalformed, year, i, len(row))
				}

				var ok bool
				if x[i], ok = toFloat(row[j]); !ok {
					return nil, fmt.Errorf("%w: survey year %d: column %s row %d not numeric", ErrMalformed, year, name, i)
				}
			}

			col, e = frame.NewCol(name, x)
		} else {
			x := make([]int, nRows)
			for i, row := range body {
				if len(row) != len(header) {
					return nil, fmt.Errorf("%w: survey year %d: row %d width %d", ErrMalformed, year, i, len(row))
				}

				var ok bool
				if x[i], ok = toInt(row[j]); !ok {
					return nil, fmt.Errorf("%w: survey year %d: column %s row %d not integral", ErrMalformed, year, name, i)
				}
			}

			col, e = frame.NewCol(name, x)
		}

		if e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	yr := make([]int, nRows)
	for i := range yr {
		yr[i] = year
	}

	yCol, e := frame.NewCol(YearColumn, yr)
	if e != nil {
		return nil, e
	}

	cols = append(cols, yCol)

	return frame.NewDF(cols...)
}

// *********** Conversions ***********

// The api serves values as JSON strings; a lenient decoder also sees
// numbers. Nothing else converts.

func toFloat(x any) (float64, bool) {
	switch v := x.(type) {
	case float64:
		return v, true
	case string:
		if f, e := strconv.ParseFloat(v, 64); e == nil {
			return f, true
		}
	}

	return 0, false
}

func toInt(x any) (int, bool) {
	switch v := x.(type) {
	case float64:
		return int(v), true
	case string:
		if i, e := strconv.ParseInt(v, 10, 64); e == nil {
			return int(i), true
		}
	}

	return 0, false
}
