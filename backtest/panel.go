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
	"math"
	"sort"
	"time"

	"github.com/carteira-lab/carteira-api/data"
	"github.com/carteira-lab/carteira-api/dataframe"
)

// BuildPanel pivots the long-format price table into a date-indexed
// dataframe with one column per requested ticker, restricted to the
// inclusive date range. Requested tickers with no rows in the table are
// silently dropped. Rows where every surviving column is missing are
// removed; rows with at least one quote are kept with the other cells NaN.
// If nothing survives filtering an empty dataframe is returned, never an
// error; downstream consumers treat an empty panel as "no data for request".
func BuildPanel(records []*data.PriceRecord, tickers []string, begin, end time.Time) *dataframe.DataFrame {
	requested := make(map[string]bool, len(tickers))
	for _, ticker := range tickers {
		requested[ticker] = true
	}

	// filter rows to the requested tickers and date window
	filtered := make([]*data.PriceRecord, 0, len(records))
	surviving := make(map[string]bool, len(tickers))
	dateSet := make(map[time.Time]bool, len(records))
	for _, record := range records {
		if !requested[record.Ticker] {
			continue
		}
		if record.Date.Before(begin) || record.Date.After(end) {
			continue
		}

		filtered = append(filtered, record)
		surviving[record.Ticker] = true
		dateSet[record.Date] = true
	}

	if len(filtered) == 0 {
		return &dataframe.DataFrame{
			Dates:    []time.Time{},
			ColNames: []string{},
			Vals:     [][]float64{},
		}
	}

	// date index is sorted ascending and unique
	dates := make([]time.Time, 0, len(dateSet))
	for dt := range dateSet {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowIdx := make(map[time.Time]int, len(dates))
	for idx, dt := range dates {
		rowIdx[dt] = idx
	}

	// column order follows the requested ticker order so repeated runs yield
	// identical output
	colNames := make([]string, 0, len(surviving))
	colIdx := make(map[string]int, len(surviving))
	for _, ticker := range tickers {
		if _, ok := colIdx[ticker]; ok {
			continue
		}
		if surviving[ticker] {
			colIdx[ticker] = len(colNames)
			colNames = append(colNames, ticker)
		}
	}

	vals := make([][]float64, len(colNames))
	for idx := range vals {
		col := make([]float64, len(dates))
		for ii := range col {
			col[ii] = math.NaN()
		}
		vals[idx] = col
	}

	for _, record := range filtered {
		vals[colIdx[record.Ticker]][rowIdx[record.Date]] = record.Price
	}

	df := &dataframe.DataFrame{
		Dates:    dates,
		ColNames: colNames,
		Vals:     vals,
	}

	// a row that is missing for every requested ticker carries no information
	return df.DropAll(math.NaN())
}
