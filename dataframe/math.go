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

package dataframe

import (
	"math"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] += scalar
		}
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] *= scalar
		}
	}
	return df
}

// CumProd computes the running product of each column and returns a new
// dataframe, e.g. out[t] = v[0] * v[1] * ... * v[t]
func (df *DataFrame) CumProd() *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		acc := 1.0
		for rowIdx := range df.Vals[colIdx] {
			acc *= df.Vals[colIdx][rowIdx]
			df.Vals[colIdx][rowIdx] = acc
		}
	}
	return df
}

// PctChange computes the day-over-day percentage change of each column and
// returns a new dataframe. The first row is always 0. Where either the
// current or the previous value is NaN the change is reported as 0, not NaN;
// this mirrors the buy-and-hold accounting rule that a quote gap contributes
// a flat return. Note this understates risk across real price gaps.
func (df *DataFrame) PctChange() *DataFrame {
	out := &DataFrame{
		Dates:    df.Dates,
		ColNames: df.ColNames,
		Vals:     make([][]float64, len(df.Vals)),
	}

	for colIdx, col := range df.Vals {
		chg := make([]float64, len(col))
		for rowIdx := range col {
			if rowIdx == 0 {
				continue
			}

			prev := col[rowIdx-1]
			cur := col[rowIdx]
			if math.IsNaN(prev) || math.IsNaN(cur) {
				continue
			}

			chg[rowIdx] = cur/prev - 1.0
		}
		out.Vals[colIdx] = chg
	}

	return out
}

// Rebase divides every column by its value on the first row and returns a new
// dataframe; the resulting series start at exactly 1.0. An empty dataframe is
// returned unchanged.
func (df *DataFrame) Rebase() *DataFrame {
	df = df.Copy()
	if df.Len() == 0 {
		return df
	}

	for colIdx := range df.ColNames {
		base := df.Vals[colIdx][0]
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] /= base
		}
	}
	return df
}
