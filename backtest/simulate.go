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
	"sort"
	"time"

	"github.com/carteira-lab/carteira-api/dataframe"
	"github.com/rs/zerolog/log"
)

const (
	// PortfolioColumn is the column name used for the simulated return and
	// equity curve series
	PortfolioColumn = "PORTFOLIO"

	// CdiColumn is the column name of the normalized CDI accrual benchmark
	CdiColumn = "CDI"
)

// Result bundles the two series produced by a simulation: the daily
// portfolio return series and its cumulative equity curve. Both share the
// panel's date index.
type Result struct {
	Returns *dataframe.DataFrame
	Curve   *dataframe.DataFrame
}

// Simulate applies a static signed weight vector to the price panel and
// produces the portfolio daily return series and equity curve. Weights are
// signed: positive for long exposure, negative for short. They are not
// required to sum to 1; magnitude scales exposure directly. A weight whose
// ticker has no panel column contributes 0 for every date. The position is
// never rebalanced over the window.
//
// An empty panel yields an empty Result, not an error, so a caller only
// needs one check to short-circuit the "no data" case.
func Simulate(panel *dataframe.DataFrame, weights map[string]float64) *Result {
	if panel.Len() == 0 || panel.ColCount() == 0 {
		return &Result{
			Returns: emptySeries(),
			Curve:   emptySeries(),
		}
	}

	assetReturns := panel.PctChange()

	// sum in ticker order; float addition is not associative and the result
	// must be bit-for-bit reproducible across runs
	tickers := make([]string, 0, len(weights))
	for ticker := range weights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	portfolio := make([]float64, panel.Len())
	for _, ticker := range tickers {
		colIdx := assetReturns.ColIndex(ticker)
		if colIdx == -1 {
			log.Debug().Str("Ticker", ticker).Msg("weighted ticker not present in panel; contributes zero return")
			continue
		}

		weight := weights[ticker]
		for rowIdx, r := range assetReturns.Vals[colIdx] {
			portfolio[rowIdx] += weight * r
		}
	}

	returns := &dataframe.DataFrame{
		Dates:    assetReturns.Dates,
		ColNames: []string{PortfolioColumn},
		Vals:     [][]float64{portfolio},
	}

	curve := returns.AddScalar(1.0).CumProd()
	return &Result{
		Returns: returns,
		Curve:   curve,
	}
}

func emptySeries() *dataframe.DataFrame {
	return &dataframe.DataFrame{
		Dates:    []time.Time{},
		ColNames: []string{PortfolioColumn},
		Vals:     [][]float64{{}},
	}
}
