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

package backtest_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/carteira-lab/carteira-api/backtest"
	"github.com/carteira-lab/carteira-api/dataframe"
)

var _ = Describe("Simulate", func() {
	var panel *dataframe.DataFrame

	BeforeEach(func() {
		panel = &dataframe.DataFrame{
			Dates:    []time.Time{day(4), day(5), day(6)},
			ColNames: []string{"PETR4", "VALE3"},
			Vals: [][]float64{
				{100.0, 110.0, 99.0},
				{50.0, 55.0, 44.0},
			},
		}
	})

	Context("with a single long position", func() {
		It("reproduces the asset return series", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 1.0})
			Expect(res.Returns.Vals[0][0]).To(Equal(0.0))
			Expect(res.Returns.Vals[0][1]).To(BeNumerically("~", 0.1, 1e-9))
			Expect(res.Returns.Vals[0][2]).To(BeNumerically("~", -0.1, 1e-9))
		})

		It("starts the equity curve at exactly 1.0", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 1.0})
			Expect(res.Curve.Vals[0][0]).To(Equal(1.0))
		})

		It("compounds the equity curve", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 1.0})
			Expect(res.Curve.Vals[0][1]).To(BeNumerically("~", 1.1, 1e-9))
			Expect(res.Curve.Vals[0][2]).To(BeNumerically("~", 0.99, 1e-9))
		})
	})

	Context("with two equally weighted positions", func() {
		It("averages the return series", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 0.5, "VALE3": 0.5})
			Expect(res.Returns.Vals[0][1]).To(BeNumerically("~", 0.1, 1e-9))
			Expect(res.Returns.Vals[0][2]).To(BeNumerically("~", -0.15, 1e-9))
		})

		It("compounds the blended curve", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 0.5, "VALE3": 0.5})
			Expect(res.Curve.Vals[0][2]).To(BeNumerically("~", 1.1*0.85, 1e-9))
		})
	})

	Context("with one flat and one rising asset", func() {
		It("blends the weighted returns day by day", func() {
			panel = &dataframe.DataFrame{
				Dates:    []time.Time{day(4), day(5), day(6)},
				ColNames: []string{"PETR4", "VALE3"},
				Vals: [][]float64{
					{100.0, 100.0, 100.0},
					{100.0, 120.0, 140.0},
				},
			}
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 0.5, "VALE3": 0.5})
			Expect(res.Returns.Vals[0][1]).To(BeNumerically("~", 0.10, 1e-9))
			Expect(res.Returns.Vals[0][2]).To(BeNumerically("~", 0.5*(140.0/120.0-1.0), 1e-9))
			Expect(res.Curve.Vals[0][2]).To(BeNumerically("~", 1.1917, 1e-4))
		})
	})

	Context("with a short position", func() {
		It("inverts the sign of the asset return", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": -1.0})
			Expect(res.Returns.Vals[0][1]).To(BeNumerically("~", -0.1, 1e-9))
			Expect(res.Returns.Vals[0][2]).To(BeNumerically("~", 0.1, 1e-9))
		})
	})

	Context("with a weight whose ticker is not in the panel", func() {
		It("contributes zero return", func() {
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 1.0, "BOVA11": 1.0})
			Expect(res.Returns.Vals[0][1]).To(BeNumerically("~", 0.1, 1e-9))
		})
	})

	Context("with an empty panel", func() {
		It("returns empty series, not an error", func() {
			empty := &dataframe.DataFrame{Dates: []time.Time{}, ColNames: []string{}, Vals: [][]float64{}}
			res := backtest.Simulate(empty, map[string]float64{"PETR4": 1.0})
			Expect(res.Returns.Len()).To(Equal(0))
			Expect(res.Curve.Len()).To(Equal(0))
		})
	})

	It("is bit-for-bit deterministic across runs", func() {
		weights := map[string]float64{"PETR4": 0.3, "VALE3": 0.7}
		first := backtest.Simulate(panel, weights)
		for i := 0; i < 10; i++ {
			res := backtest.Simulate(panel, weights)
			Expect(res.Curve.Vals[0]).To(Equal(first.Curve.Vals[0]))
		}
	})
})
