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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/carteira-lab/carteira-api/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on drop", func() {
			df = df.Drop(1)
			Expect(df.Len()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})

		It("has a zero start and end", func() {
			Expect(df.Start().IsZero()).To(BeTrue())
			Expect(df.End().IsZero()).To(BeTrue())
		})

		It("renders a no data table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})
	})

	Context("with values and two columns", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{
				Dates: []time.Time{
					time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC),
				},
				ColNames: []string{"PETR4", "VALE3"},
				Vals: [][]float64{
					{1.0, 2.0, math.NaN(), 4.0},
					{5.0, 6.0, math.NaN(), math.NaN()},
				},
			}
		})

		It("finds column indexes", func() {
			Expect(df.ColIndex("PETR4")).To(Equal(0))
			Expect(df.ColIndex("VALE3")).To(Equal(1))
			Expect(df.ColIndex("BOVA11")).To(Equal(-1))
		})

		It("returns start and end dates", func() {
			Expect(df.Start()).To(Equal(time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)))
			Expect(df.End()).To(Equal(time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC)))
		})

		It("drops rows where any column is NaN", func() {
			df = df.Drop(math.NaN())
			Expect(df.Len()).To(Equal(2))
			Expect(df.Vals[0]).To(Equal([]float64{1.0, 2.0}))
			Expect(df.Vals[1]).To(Equal([]float64{5.0, 6.0}))
		})

		It("drops only rows where every column is NaN", func() {
			df = df.DropAll(math.NaN())
			Expect(df.Len()).To(Equal(3))
			Expect(df.Vals[0][0]).To(Equal(1.0))
			Expect(df.Vals[0][1]).To(Equal(2.0))
			Expect(df.Vals[0][2]).To(Equal(4.0))
			Expect(math.IsNaN(df.Vals[1][2])).To(BeTrue())
		})

		It("copies without sharing state", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 99.0
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("trims to an inclusive date range", func() {
			df2 := df.Trim(
				time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC))
			Expect(df2.Len()).To(Equal(2))
			Expect(df2.Start()).To(Equal(time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)))
			Expect(df2.End()).To(Equal(time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC)))
		})

		It("trims to empty when the range precedes the data", func() {
			df2 := df.Trim(
				time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC))
			Expect(df2.Len()).To(Equal(0))
		})

		It("trims to empty when the range is inverted", func() {
			df2 := df.Trim(
				time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC))
			Expect(df2.Len()).To(Equal(0))
		})

		It("inserts a new column", func() {
			df = df.Insert("BOVA11", []float64{9.0, 8.0, 7.0, 6.0})
			Expect(df.ColCount()).To(Equal(3))
			Expect(df.ColIndex("BOVA11")).To(Equal(2))
		})

		It("selects the last row", func() {
			last := df.Last()
			Expect(last.Len()).To(Equal(1))
			Expect(last.Dates[0]).To(Equal(time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC)))
			Expect(last.Vals[0][0]).To(Equal(4.0))
		})
	})
})
