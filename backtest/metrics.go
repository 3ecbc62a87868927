// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backtest

import (
	"fmt"
	"math"
	"strings"

	"github.com/carteira-lab/carteira-api/dataframe"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDays is the assumed number of trading days per year used for
	// annualizing daily statistics
	TradingDays = 252

	// DaysPerYear converts a calendar-day span to years when compounding
	DaysPerYear = 365.25
)

// Metrics is the fixed set of risk/return statistics derived from one
// equity curve / return series pair. All values are fractions, not
// percentages; scaling for display is the caller's concern.
type Metrics struct {
	FinalReturn float64 `json:"final_return"`
	Cagr        float64 `json:"cagr"`
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Cagr computes the compound annual growth rate of the equity curve using a
// 365.25 day year. Returns 0 when the curve spans fewer than 2 distinct
// dates; a zero-length compounding period has no meaningful growth rate.
func Cagr(curve *dataframe.DataFrame) float64 {
	if curve.Len() < 2 || curve.ColCount() == 0 {
		return 0.0
	}

	vals := curve.Vals[0]
	initial := vals[0]
	final := vals[len(vals)-1]

	// whole-day span; a DST transition inside the window otherwise leaves a
	// fractional day because dates are pinned to local midnight
	days := math.Floor(curve.End().Sub(curve.Start()).Hours() / 24)
	if days <= 0 {
		return 0.0
	}

	years := days / DaysPerYear
	return math.Pow(final/initial, 1.0/years) - 1.0
}

// Volatility computes the annualized sample standard deviation of the daily
// return series (multiplied by √252). A series of length 0 or 1 has an
// undefined standard deviation; it is defined here as 0.
func Volatility(returns *dataframe.DataFrame) float64 {
	if returns.Len() < 2 || returns.ColCount() == 0 {
		return 0.0
	}

	return stat.StdDev(returns.Vals[0], nil) * math.Sqrt(TradingDays)
}

// SharpeRatio computes annualized excess return over annualized volatility.
// When volatility is exactly 0 the ratio is reported as 0 rather than ±Inf
// so downstream display code never sees a non-finite value.
func SharpeRatio(returns *dataframe.DataFrame, riskFreeAnnual float64) float64 {
	vol := Volatility(returns)
	if vol == 0 {
		return 0.0
	}

	annualReturn := stat.Mean(returns.Vals[0], nil) * TradingDays
	return (annualReturn - riskFreeAnnual) / vol
}

// MaxDrawdown computes the largest peak-to-trough loss of the equity curve
// as a fraction; always ≤ 0 and exactly 0 for a non-decreasing curve
func MaxDrawdown(curve *dataframe.DataFrame) float64 {
	if curve.Len() == 0 || curve.ColCount() == 0 {
		return 0.0
	}

	vals := curve.Vals[0]
	peak := vals[0]
	maxDrawdown := 0.0
	for _, v := range vals {
		peak = math.Max(peak, v)
		drawdown := (v - peak) / peak
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// Summarize derives the full metrics record from a simulation result. An
// empty result yields a zero-valued record, never an error.
func Summarize(res *Result, riskFreeAnnual float64) *Metrics {
	metrics := &Metrics{}
	if res.Curve.Len() == 0 {
		return metrics
	}

	vals := res.Curve.Vals[0]
	metrics.FinalReturn = vals[len(vals)-1] - 1.0
	metrics.Cagr = Cagr(res.Curve)
	metrics.Volatility = Volatility(res.Returns)
	metrics.SharpeRatio = SharpeRatio(res.Returns, riskFreeAnnual)
	metrics.MaxDrawdown = MaxDrawdown(res.Curve)
	return metrics
}

// Table renders the metrics record as an ASCII table for CLI display
func (metrics *Metrics) Table() string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)

	table.Append([]string{"Final Return", fmt.Sprintf("%.2f%%", metrics.FinalReturn*100)})
	table.Append([]string{"CAGR", fmt.Sprintf("%.2f%%", metrics.Cagr*100)})
	table.Append([]string{"Volatility", fmt.Sprintf("%.2f%%", metrics.Volatility*100)})
	table.Append([]string{"Sharpe Ratio", fmt.Sprintf("%.2f", metrics.SharpeRatio)})
	table.Append([]string{"Max Drawdown", fmt.Sprintf("%.2f%%", metrics.MaxDrawdown*100)})

	table.Render()
	return s.String()
}
