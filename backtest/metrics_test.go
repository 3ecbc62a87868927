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
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/carteira-lab/carteira-api/backtest"
	"github.com/carteira-lab/carteira-api/dataframe"
)

func curveFrame(dates []time.Time, vals []float64) *dataframe.DataFrame {
	return &dataframe.DataFrame{
		Dates:    dates,
		ColNames: []string{backtest.PortfolioColumn},
		Vals:     [][]float64{vals},
	}
}

var _ = Describe("Metrics", func() {
	Describe("Cagr", func() {
		It("annualizes growth over a 365.25 day year", func() {
			curve := curveFrame(
				[]time.Time{day(1), day(1).AddDate(1, 0, 0)},
				[]float64{1.0, 1.2})
			days := day(1).AddDate(1, 0, 0).Sub(day(1)).Hours() / 24
			expected := math.Pow(1.2, backtest.DaysPerYear/days) - 1.0
			Expect(backtest.Cagr(curve)).To(BeNumerically("~", expected, 1e-9))
		})

		It("uses a whole-day span across a DST transition", func() {
			// São Paulo clocks moved forward on 2018-11-04, so local
			// midnight to local midnight spans 29 days 23 hours here
			tz, err := time.LoadLocation("America/Sao_Paulo")
			Expect(err).To(BeNil())

			curve := curveFrame(
				[]time.Time{
					time.Date(2018, time.November, 1, 0, 0, 0, 0, tz),
					time.Date(2018, time.December, 1, 0, 0, 0, 0, tz),
				},
				[]float64{1.0, 1.2})
			expected := math.Pow(1.2, backtest.DaysPerYear/29.0) - 1.0
			Expect(backtest.Cagr(curve)).To(BeNumerically("~", expected, 1e-12))
		})

		It("returns 0 for a single-row curve", func() {
			curve := curveFrame([]time.Time{day(1)}, []float64{1.0})
			Expect(backtest.Cagr(curve)).To(Equal(0.0))
		})

		It("returns 0 for an empty curve", func() {
			Expect(backtest.Cagr(curveFrame([]time.Time{}, []float64{}))).To(Equal(0.0))
		})
	})

	Describe("Volatility", func() {
		It("annualizes the sample standard deviation by √252", func() {
			returns := curveFrame(
				[]time.Time{day(1), day(2), day(3), day(4)},
				[]float64{0.0, 0.01, -0.01, 0.02})
			// sample stddev of {0, 0.01, -0.01, 0.02}
			mean := 0.005
			variance := (math.Pow(0.0-mean, 2) + math.Pow(0.01-mean, 2) +
				math.Pow(-0.01-mean, 2) + math.Pow(0.02-mean, 2)) / 3.0
			expected := math.Sqrt(variance) * math.Sqrt(252)
			Expect(backtest.Volatility(returns)).To(BeNumerically("~", expected, 1e-9))
		})

		It("returns 0 for fewer than two observations", func() {
			Expect(backtest.Volatility(curveFrame([]time.Time{day(1)}, []float64{0.01}))).To(Equal(0.0))
			Expect(backtest.Volatility(curveFrame([]time.Time{}, []float64{}))).To(Equal(0.0))
		})
	})

	Describe("SharpeRatio", func() {
		It("computes annualized excess return over volatility", func() {
			returns := curveFrame(
				[]time.Time{day(1), day(2), day(3), day(4)},
				[]float64{0.0, 0.01, -0.01, 0.02})
			vol := backtest.Volatility(returns)
			expected := (0.005*252 - 0.1) / vol
			Expect(backtest.SharpeRatio(returns, 0.1)).To(BeNumerically("~", expected, 1e-9))
		})

		It("returns 0 when volatility is 0", func() {
			returns := curveFrame(
				[]time.Time{day(1), day(2), day(3)},
				[]float64{0.01, 0.01, 0.01})
			Expect(backtest.SharpeRatio(returns, 0.1)).To(Equal(0.0))
		})
	})

	Describe("MaxDrawdown", func() {
		It("finds the largest peak-to-trough loss", func() {
			curve := curveFrame(
				[]time.Time{day(1), day(2), day(3)},
				[]float64{1.0, 0.8, 0.9})
			Expect(backtest.MaxDrawdown(curve)).To(BeNumerically("~", -0.2, 1e-9))
		})

		It("measures against the running peak, not the start", func() {
			curve := curveFrame(
				[]time.Time{day(1), day(2), day(3), day(4)},
				[]float64{1.0, 1.5, 1.2, 1.4})
			Expect(backtest.MaxDrawdown(curve)).To(BeNumerically("~", -0.2, 1e-9))
		})

		It("is exactly 0 for a non-decreasing curve", func() {
			curve := curveFrame(
				[]time.Time{day(1), day(2), day(3)},
				[]float64{1.0, 1.1, 1.2})
			Expect(backtest.MaxDrawdown(curve)).To(Equal(0.0))
		})

		It("returns 0 for an empty curve", func() {
			Expect(backtest.MaxDrawdown(curveFrame([]time.Time{}, []float64{}))).To(Equal(0.0))
		})
	})

	Describe("Summarize", func() {
		It("derives the full record from a simulation result", func() {
			panel := &dataframe.DataFrame{
				Dates:    []time.Time{day(4), day(5), day(6)},
				ColNames: []string{"PETR4"},
				Vals:     [][]float64{{100.0, 110.0, 99.0}},
			}
			res := backtest.Simulate(panel, map[string]float64{"PETR4": 1.0})
			metrics := backtest.Summarize(res, 0.1)
			Expect(metrics.FinalReturn).To(BeNumerically("~", -0.01, 1e-9))
			Expect(metrics.MaxDrawdown).To(BeNumerically("~", -0.1, 1e-9))
			Expect(metrics.Volatility).To(BeNumerically(">", 0.0))
		})

		It("returns a zero-valued record for an empty result", func() {
			empty := &dataframe.DataFrame{Dates: []time.Time{}, ColNames: []string{}, Vals: [][]float64{}}
			res := backtest.Simulate(empty, map[string]float64{})
			metrics := backtest.Summarize(res, 0.1)
			Expect(metrics.FinalReturn).To(Equal(0.0))
			Expect(metrics.Cagr).To(Equal(0.0))
			Expect(metrics.Volatility).To(Equal(0.0))
			Expect(metrics.SharpeRatio).To(Equal(0.0))
			Expect(metrics.MaxDrawdown).To(Equal(0.0))
		})

		It("renders an ASCII table", func() {
			metrics := &backtest.Metrics{FinalReturn: 0.25, Cagr: 0.12}
			Expect(metrics.Table()).To(ContainSubstring("CAGR"))
		})
	})
})
