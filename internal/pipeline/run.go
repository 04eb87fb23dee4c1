package pipeline

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"leavers/internal/config"
	"leavers/internal/features"
	"leavers/internal/fetch"
	"leavers/internal/frame"
	"leavers/internal/model"
	"leavers/internal/report"
	"leavers/internal/store"
)

// Runner wires the clients, the cache and the configuration into the full
// sequence: fetch, filter, derive, encode, sample, fit, report. Everything
// runs synchronously; the first failure aborts.
type Runner struct {
	Cfg    *config.Config
	Survey *fetch.SurveyClient
	Price  *fetch.PriceClient

	// Cache may be nil, in which case every year is fetched.
	Cache *store.Cache
}

// FetchSurvey returns the concatenated microdata for every configured
// year, going through the cache when one is attached.
func (r *Runner) FetchSurvey(ctx context.Context) (*frame.DF, error) {
	vars := features.Variables()

	var df *frame.DF
	for year := r.Cfg.StartYear; year <= r.Cfg.EndYear; year++ {
		payload, e := r.yearPayload(ctx, year, vars)
		if e != nil {
			return nil, e
		}

		dfYear, e := fetch.ParseSurvey(payload, year, vars, features.VarWeight)
		if e != nil {
			return nil, e
		}

		log.WithField("year", year).WithField("rows", dfYear.RowCount()).Info("survey year loaded")

		if df == nil {
			df = dfYear
			continue
		}

		if e = df.AppendRows(dfYear); e != nil {
			return nil, fmt.Errorf("concatenating year %d: %w", year, e)
		}
	}

	return df, nil
}

func (r *Runner) yearPayload(ctx context.Context, year int, vars []string) ([]byte, error) {
	if r.Cache != nil {
		payload, ok, e := r.Cache.Get(year)
		if e != nil {
			return nil, e
		}

		if ok {
			log.WithField("year", year).Debug("cache hit")
			return payload, nil
		}
	}

	payload, e := r.Survey.YearRaw(ctx, year, vars)
	if e != nil {
		return nil, e
	}

	if r.Cache != nil {
		if e = r.Cache.Put(year, payload); e != nil {
			return nil, e
		}
	}

	return payload, nil
}

// Deflator fetches the price series and builds the year-keyed lookup. The
// series starts a year early so the first survey year has a price level to
// join against.
func (r *Runner) Deflator(ctx context.Context) (*frame.DF, error) {
	obs, e := r.Price.Series(ctx, r.Cfg.SeriesID, r.Cfg.StartYear-1, r.Cfg.EndYear)
	if e != nil {
		return nil, e
	}

	return fetch.BuildDeflator(obs, r.Cfg.AnchorYear)
}

// Run executes the whole pipeline and returns the summary along with the
// encoded model table (for the optional export).
func (r *Runner) Run(ctx context.Context) (*report.Summary, *frame.DF, error) {
	raw, e := r.FetchSurvey(ctx)
	if e != nil {
		return nil, nil, e
	}

	deflator, e := r.Deflator(ctx)
	if e != nil {
		return nil, nil, e
	}

	eligible, e := features.Eligible(raw)
	if e != nil {
		return nil, nil, e
	}

	log.WithField("rows", eligible.RowCount()).Info("eligibility filter applied")

	derived, e := features.Derive(eligible, deflator)
	if e != nil {
		return nil, nil, e
	}

	encoded, e := Encode(derived)
	if e != nil {
		return nil, nil, e
	}

	ms, e := Prepare(encoded, r.Cfg.SampleSize, r.Cfg.Seed, r.Cfg.TestFraction)
	if e != nil {
		return nil, nil, e
	}

	log.WithField("train", ms.Train.RowCount()).WithField("test", ms.Test.RowCount()).Info("sample prepared")

	sampleX, e := ms.Sample.Matrix(ms.Features...)
	if e != nil {
		return nil, nil, e
	}

	pca, e := model.PCA(sampleX, ms.Features)
	if e != nil {
		return nil, nil, e
	}

	trainX, trainY, e := ms.XY(ms.Train)
	if e != nil {
		return nil, nil, e
	}

	cl, e := model.TrainForest(trainX, trainY, ms.Features, r.Cfg.Trees)
	if e != nil {
		return nil, nil, e
	}

	testX, testY, e := ms.XY(ms.Test)
	if e != nil {
		return nil, nil, e
	}

	cm, e := model.Confuse(testY, cl.PredictAll(testX))
	if e != nil {
		return nil, nil, e
	}

	summary := &report.Summary{
		RawRows:      raw.RowCount(),
		EligibleRows: eligible.RowCount(),
		SampleRows:   ms.Sample.RowCount(),
		TrainRows:    ms.Train.RowCount(),
		TestRows:     ms.Test.RowCount(),
		LeaverShare:  leaverShare(ms.Sample),
		PCA:          pca,
		Confusion:    cm,
		Forest:       cl.Importance(testX, testY, r.Cfg.Seed),
	}
	summary.Compare()

	return summary, encoded, nil
}

func leaverShare(df *frame.DF) float64 {
	lbl, e := df.Column(features.ColLeaver)
	if e != nil {
		return 0.0
	}

	n := 0
	for _, v := range lbl.AsInt() {
		n += v
	}

	return float64(n) / float64(lbl.Len())
}
