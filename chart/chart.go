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

package chart

import (
	"errors"

	"github.com/carteira-lab/carteira-api/dataframe"

	charts "github.com/vicanso/go-charts/v2"
)

var ErrNoData = errors.New("no data to render")

// Render draws the equity curve and any benchmark series as a PNG line
// chart. Series are drawn over the curve's date axis; benchmark values are
// matched by date and gaps are carried forward so the lines stay continuous.
func Render(title string, curve *dataframe.DataFrame, benchmarks ...*dataframe.DataFrame) ([]byte, error) {
	if curve.Len() == 0 || curve.ColCount() == 0 {
		return nil, ErrNoData
	}

	xLabels := make([]string, curve.Len())
	for idx, dt := range curve.Dates {
		if curve.Len() <= 60 {
			xLabels[idx] = dt.Format("Jan 02")
		} else {
			xLabels[idx] = dt.Format("Jan '06")
		}
	}

	values := [][]float64{curve.Vals[0]}
	legend := []string{curve.ColNames[0]}

	for _, benchmark := range benchmarks {
		if benchmark.Len() == 0 || benchmark.ColCount() == 0 {
			continue
		}
		values = append(values, alignByDate(curve, benchmark))
		legend = append(legend, benchmark.ColNames[0])
	}

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.LegendLabelsOptionFunc(legend),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}

	return p.Bytes()
}

// alignByDate samples the benchmark onto the curve's date axis; a date with
// no benchmark row repeats the previous value (1.0 before the first row)
func alignByDate(curve, benchmark *dataframe.DataFrame) []float64 {
	byDate := make(map[int64]float64, benchmark.Len())
	for idx, dt := range benchmark.Dates {
		byDate[dt.Unix()] = benchmark.Vals[0][idx]
	}

	out := make([]float64, curve.Len())
	last := 1.0
	for idx, dt := range curve.Dates {
		if v, ok := byDate[dt.Unix()]; ok {
			last = v
		}
		out[idx] = last
	}
	return out
}
