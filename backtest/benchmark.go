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

	"github.com/carteira-lab/carteira-api/data"
	"github.com/carteira-lab/carteira-api/dataframe"
)

// NormalizeRateSeries converts a daily accrual rate series (e.g. CDI) into
// a cumulative growth index over the inclusive date window. The series
// restarts at exactly 1.0 on its own first surviving row: no accrual state
// is inherited from before the window, and the first retained day
// contributes no growth, matching the equity curve convention. Subsequent
// days compound by (1 + rate). An empty window yields an empty series.
func NormalizeRateSeries(rates []*data.RateRecord, begin, end time.Time) *dataframe.DataFrame {
	filtered := make([]*data.RateRecord, 0, len(rates))
	for _, record := range rates {
		if record.Date.Before(begin) || record.Date.After(end) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })

	dates := make([]time.Time, len(filtered))
	vals := make([]float64, len(filtered))
	acc := 1.0
	for idx, record := range filtered {
		if idx > 0 {
			acc *= 1.0 + record.Rate
		}
		dates[idx] = record.Date
		vals[idx] = acc
	}

	return &dataframe.DataFrame{
		Dates:    dates,
		ColNames: []string{CdiColumn},
		Vals:     [][]float64{vals},
	}
}

// NormalizePriceSeries converts a raw price index series into a cumulative
// growth index over the inclusive date window: every value is divided by
// the first surviving value, so the series starts at exactly 1.0 regardless
// of any price history before the window. An empty window yields an empty
// series.
func NormalizePriceSeries(prices []*data.PriceRecord, begin, end time.Time) *dataframe.DataFrame {
	filtered := make([]*data.PriceRecord, 0, len(prices))
	for _, record := range prices {
		if record.Date.Before(begin) || record.Date.After(end) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })

	colName := "INDEX"
	if len(filtered) > 0 {
		colName = filtered[0].Ticker
	}

	dates := make([]time.Time, len(filtered))
	vals := make([]float64, len(filtered))
	for idx, record := range filtered {
		dates[idx] = record.Date
		vals[idx] = record.Price
	}

	df := &dataframe.DataFrame{
		Dates:    dates,
		ColNames: []string{colName},
		Vals:     [][]float64{vals},
	}

	return df.Rebase()
}
