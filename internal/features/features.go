// Package features turns raw survey rows into the derived feature table.
// Every stage takes a table and returns an augmented copy; the only stage
// with an outside input is the income deflation, which needs the price
// lookup built first.
package features

import (
	"fmt"
	"math"

	"leavers/internal/fetch"
	"leavers/internal/frame"
)

// Raw survey variables the pipeline requests.
const (
	VarStatus     = "A_LFSR"   // labor-force status recode
	VarClassWkr   = "A_CLSWKR" // class of worker
	VarWeeks      = "WKSWORK"  // weeks worked last year
	VarEduc       = "A_HGA"    // educational attainment
	VarRace       = "PRDTRACE" // detailed race recode
	VarHispanic   = "PEHSPNON" // hispanic origin
	VarSex        = "A_SEX"    // sex
	VarCitizen    = "PRCITSHP" // citizenship status
	VarDisability = "PRDISFLG" // disability flag
	VarMarital    = "A_MARITL" // marital status
	VarKids       = "FOWNU18"  // own children under 18 in family
	VarIncome     = "PEARNVAL" // total earnings
	VarOccupation = "A_MJOCC"  // major occupation group
	VarAge        = "A_AGE"    // age
	VarWorkStat   = "A_WKSTAT" // full/part-time work status
	VarWeight     = "MARSUPWT" // supplement weight
)

// Variables lists every raw variable, in request order.
func Variables() []string {
	return []string{
		VarStatus, VarClassWkr, VarWeeks, VarEduc, VarRace, VarHispanic,
		VarSex, VarCitizen, VarDisability, VarMarital, VarKids, VarIncome,
		VarOccupation, VarAge, VarWorkStat, VarWeight,
	}
}

// Derived column names.
const (
	ColEduc     = "educ"
	ColRace     = "race"
	ColHispanic = "hispanic"
	ColMale     = "male"
	ColCitizen  = "citizen"
	ColClassWkr = "classwkr"
	ColParttime = "parttime"
	ColDisabled = "disabled"
	ColMarried  = "married"
	ColKids     = "kids"
	ColLogInc   = "loginc"
	ColLeaver   = "leaver"
	ColOcc      = "occ"
)

// Eligibility gate: paid-employment class-of-worker codes and a weeks-worked
// floor. Rows failing it are dropped, not reweighted.
const (
	classWkrMin = 1
	classWkrMax = 6
	minWeeks    = 30
)

// Employed labor-force status codes. Anything else marks a leaver.
const (
	statusEmployed       = 1
	statusEmployedAbsent = 2
)

// Eligible keeps rows whose work-class code is a paid-employment code and
// whose weeks worked exceed minWeeks.
func Eligible(df *frame.DF) (*frame.DF, error) {
	var (
		cls, wks *frame.Col
		e        error
	)
	if cls, e = df.Column(VarClassWkr); e != nil {
		return nil, e
	}

	if wks, e = df.Column(VarWeeks); e != nil {
		return nil, e
	}

	return df.Where(func(row int) bool {
		c := cls.ElementInt(row)

		return c >= classWkrMin && c <= classWkrMax && wks.ElementInt(row) > minWeeks
	}), nil
}

// deriveInt appends an int column computed row-wise from one source column.
func deriveInt(df *frame.DF, src, name string, fn func(code int) int) (*frame.DF, error) {
	var (
		c *frame.Col
		e error
	)
	if c, e = df.Column(src); e != nil {
		return nil, e
	}

	x := make([]int, c.Len())
	for row := 0; row < c.Len(); row++ {
		x[row] = fn(c.ElementInt(row))
	}

	var cNew *frame.Col
	if cNew, e = frame.NewCol(name, x); e != nil {
		return nil, e
	}

	dfOut := df.Copy()
	if e = dfOut.AppendColumn(cNew); e != nil {
		return nil, e
	}

	return dfOut, nil
}

// deriveString appends a string column computed row-wise from one source
// column.
func deriveString(df *frame.DF, src, name string, fn func(code int) string) (*frame.DF, error) {
	var (
		c *frame.Col
		e error
	)
	if c, e = df.Column(src); e != nil {
		return nil, e
	}

	x := make([]string, c.Len())
	for row := 0; row < c.Len(); row++ {
		x[row] = fn(c.ElementInt(row))
	}

	var cNew *frame.Col
	if cNew, e = frame.NewCol(name, x); e != nil {
		return nil, e
	}

	dfOut := df.Copy()
	if e = dfOut.AppendColumn(cNew); e != nil {
		return nil, e
	}

	return dfOut, nil
}

func indicator(b bool) int {
	if b {
		return 1
	}

	return 0
}

// EducationBucket maps an attainment code to one of seven ordered
// categories. Breakpoints are left-inclusive and the mapping is total: any
// code below the high-school boundary is a dropout, anything at or above
// the top boundary a doctorate.
func EducationBucket(code int) string {
	switch {
	case code < 39:
		return "dropout"
	case code < 40:
		return "highschool"
	case code < 41:
		return "somecollege"
	case code < 43:
		return "associate"
	case code < 44:
		return "bachelor"
	case code < 45:
		return "master"
	default:
		return "doctorate"
	}
}

func WithEducation(df *frame.DF) (*frame.DF, error) {
	return deriveString(df, VarEduc, ColEduc, EducationBucket)
}

func RaceBucket(code int) string {
	switch code {
	case 1:
		return "white"
	case 2:
		return "black"
	case 4:
		return "asian"
	default:
		return "other"
	}
}

func WithRace(df *frame.DF) (*frame.DF, error) {
	return deriveString(df, VarRace, ColRace, RaceBucket)
}

func WithHispanic(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarHispanic, ColHispanic, func(code int) int { return indicator(code == 1) })
}

func WithMale(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarSex, ColMale, func(code int) int { return indicator(code == 1) })
}

// CitizenBucket maps citizenship codes with left-inclusive breakpoints:
// codes below 4 are native, 4 is naturalized, 5 and up noncitizen.
func CitizenBucket(code int) string {
	switch {
	case code < 4:
		return "native"
	case code < 5:
		return "naturalized"
	default:
		return "noncitizen"
	}
}

func WithCitizenship(df *frame.DF) (*frame.DF, error) {
	return deriveString(df, VarCitizen, ColCitizen, CitizenBucket)
}

// ClassWorkerBucket maps the paid-employment codes: 1 wage and salary,
// 2 through 4 government, 5 incorporated self-employment, 6 and up
// unincorporated.
func ClassWorkerBucket(code int) string {
	switch {
	case code < 2:
		return "wagesalary"
	case code < 5:
		return "government"
	case code < 6:
		return "selfincorp"
	default:
		return "selfunincorp"
	}
}

func WithClassWorker(df *frame.DF) (*frame.DF, error) {
	return deriveString(df, VarClassWkr, ColClassWkr, ClassWorkerBucket)
}

func WithParttime(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarWorkStat, ColParttime, func(code int) int { return indicator(code == 3) })
}

func WithDisability(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarDisability, ColDisabled, func(code int) int { return indicator(code == 1) })
}

func WithMarried(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarMarital, ColMarried, func(code int) int {
		return indicator(code >= 1 && code <= 3)
	})
}

func WithKids(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarKids, ColKids, func(count int) int { return indicator(count > 0) })
}

func OccupationBucket(code int) string {
	switch code {
	case 1:
		return "management"
	case 2:
		return "professional"
	case 3:
		return "service"
	case 4:
		return "sales"
	case 5:
		return "office"
	case 6:
		return "farming"
	case 7:
		return "construction"
	case 8:
		return "installation"
	case 9:
		return "production"
	case 10:
		return "transportation"
	default:
		return "other"
	}
}

func WithOccupation(df *frame.DF) (*frame.DF, error) {
	return deriveString(df, VarOccupation, ColOcc, OccupationBucket)
}

// WithLogIncome joins the deflator by year, deflates nominal income to
// anchor-year prices and takes the natural log. Non-positive deflated
// income maps to exactly 0, not NaN -- the zero conflates "no income" with
// the reference level and downstream results depend on keeping it that way.
func WithLogIncome(df, deflator *frame.DF) (*frame.DF, error) {
	lookup, e := deflator.KeepColumns(fetch.YearColumn, fetch.RatioColumn)
	if e != nil {
		return nil, e
	}

	dfOut, e := df.Join(lookup, fetch.YearColumn)
	if e != nil {
		return nil, fmt.Errorf("deflating income: %w", e)
	}

	var inc, ratio *frame.Col
	if inc, e = dfOut.Column(VarIncome); e != nil {
		return nil, e
	}

	if ratio, e = dfOut.Column(fetch.RatioColumn); e != nil {
		return nil, e
	}

	x := make([]float64, dfOut.RowCount())
	for row := 0; row < dfOut.RowCount(); row++ {
		deflated := float64(inc.ElementInt(row)) * ratio.ElementFloat(row)
		if deflated > 0.0 {
			x[row] = math.Log(deflated)
		}
	}

	var cNew *frame.Col
	if cNew, e = frame.NewCol(ColLogInc, x); e != nil {
		return nil, e
	}

	if e = dfOut.AppendColumn(cNew); e != nil {
		return nil, e
	}

	if e = dfOut.DropColumns(fetch.RatioColumn); e != nil {
		return nil, e
	}

	return dfOut, nil
}

// WithLeaver derives the outcome label: 1 when the labor-force status is
// neither of the employed codes, 0 otherwise.
func WithLeaver(df *frame.DF) (*frame.DF, error) {
	return deriveInt(df, VarStatus, ColLeaver, func(code int) int {
		return indicator(code != statusEmployed && code != statusEmployedAbsent)
	})
}

// Derive runs the full stage sequence on a filtered table. The deflator
// join comes after the categorical stages only because it needs the price
// table; the stages are otherwise independent.
func Derive(df, deflator *frame.DF) (*frame.DF, error) {
	stages := []func(*frame.DF) (*frame.DF, error){
		WithEducation,
		WithRace,
		WithHispanic,
		WithMale,
		WithCitizenship,
		WithClassWorker,
		WithParttime,
		WithDisability,
		WithMarried,
		WithKids,
		WithOccupation,
	}

	var e error
	for _, stage := range stages {
		if df, e = stage(df); e != nil {
			return nil, e
		}
	}

	if df, e = WithLogIncome(df, deflator); e != nil {
		return nil, e
	}

	return WithLeaver(df)
}
