package portfolio

import (
	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/utils"
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrendSummary holds headline statistics of a trend
type TrendSummary struct {
	Points        int     `json:"points"`
	First         float64 `json:"first"`
	Last          float64 `json:"last"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Mean          float64 `json:"mean"`
	Volatility    float64 `json:"volatility"` // stddev of point-to-point returns, in percent
}

// Summarize computes headline statistics of a trend. An empty trend yields a zero summary.
func Summarize(trend []domain.TrendPoint) TrendSummary {
	if len(trend) == 0 {
		return TrendSummary{}
	}

	values := trendValues(trend)
	first, last := values[0], values[len(values)-1]

	summary := TrendSummary{
		Points: len(values),
		First:  first,
		Last:   last,
		Change: utils.Round2(last - first),
		High:   floats.Max(values),
		Low:    floats.Min(values),
		Mean:   utils.Round2(stat.Mean(values, nil)),
	}
	if first != 0 {
		summary.ChangePercent = utils.Round2((last - first) / first * 100)
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1]*100)
	}
	if len(returns) > 1 {
		summary.Volatility = utils.Round2(stat.StdDev(returns, nil))
	}

	return summary
}

// MovingAverage returns the simple moving average of a trend over period points.
// Points before the first full window are omitted, so the result has
// len(trend)-period+1 points. A period outside [1, len(trend)] yields an empty result.
func MovingAverage(trend []domain.TrendPoint, period int) []domain.TrendPoint {
	out := make([]domain.TrendPoint, 0)
	if period < 1 || period > len(trend) {
		return out
	}

	sma := talib.Sma(trendValues(trend), period)
	for i := period - 1; i < len(trend); i++ {
		out = append(out, domain.TrendPoint{
			Timestamp: trend[i].Timestamp,
			Value:     utils.Round2(sma[i]),
		})
	}
	return out
}

func trendValues(trend []domain.TrendPoint) []float64 {
	values := make([]float64, len(trend))
	for i, p := range trend {
		values[i] = p.Value
	}
	return values
}
