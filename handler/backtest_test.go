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

package handler_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/carteira-lab/carteira-api/common"
	"github.com/carteira-lab/carteira-api/data"
	"github.com/carteira-lab/carteira-api/handler"
	"github.com/carteira-lab/carteira-api/router"
)

// stubProvider serves a fixed PETR4 price history plus matching CDI and
// index rows without a database
type stubProvider struct{}

func stubDay(dd int) time.Time {
	return time.Date(2021, time.January, dd, 0, 0, 0, 0, common.GetTimezone())
}

func (p *stubProvider) Tickers(_ context.Context) ([]string, error) {
	return []string{"PETR4", "VALE3"}, nil
}

func (p *stubProvider) Prices(_ context.Context, _ []string, _, _ time.Time) ([]*data.PriceRecord, error) {
	return []*data.PriceRecord{
		{Date: stubDay(4), Ticker: "PETR4", Price: 100.0},
		{Date: stubDay(5), Ticker: "PETR4", Price: 110.0},
		{Date: stubDay(6), Ticker: "PETR4", Price: 99.0},
	}, nil
}

func (p *stubProvider) Rates(_ context.Context, _, _ time.Time) ([]*data.RateRecord, error) {
	return []*data.RateRecord{
		{Date: stubDay(4), Rate: 0.0005},
		{Date: stubDay(5), Rate: 0.0005},
		{Date: stubDay(6), Rate: 0.0005},
	}, nil
}

func (p *stubProvider) IndexPrices(_ context.Context, _, _ time.Time) ([]*data.PriceRecord, error) {
	return []*data.PriceRecord{
		{Date: stubDay(4), Ticker: "IBOV", Price: 50.0},
		{Date: stubDay(5), Ticker: "IBOV", Price: 55.0},
		{Date: stubDay(6), Ticker: "IBOV", Price: 44.0},
	}, nil
}

var _ = Describe("Backtest endpoint", func() {
	var app *fiber.App

	BeforeEach(func() {
		common.SetupCache()
		handler.SetProvider(&stubProvider{})

		app = fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})
		router.SetupRoutes(app)
	})

	runBacktest := func(body string) (int, []byte) {
		req := httptest.NewRequest(fiber.MethodPost, "/v1/backtest", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		Expect(err).To(BeNil())
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())
		return resp.StatusCode, raw
	}

	Context("with a valid request", func() {
		It("returns the curve, metrics and benchmarks", func() {
			status, raw := runBacktest(`{"buy": {"petr4": 1.0}, "start_date": "2021-01-01", "end_date": "2021-01-31", "risk_free": 0.1}`)
			Expect(status).To(Equal(fiber.StatusOK))

			var resp handler.BacktestResponse
			Expect(json.Unmarshal(raw, &resp)).To(BeNil())

			Expect(resp.Curve.Values).To(HaveLen(3))
			Expect(resp.Curve.Values[0]).To(Equal(1.0))
			Expect(resp.Curve.Values[1]).To(BeNumerically("~", 1.1, 1e-9))
			Expect(resp.Curve.Dates[0]).To(Equal("2021-01-04"))

			Expect(resp.Metrics.FinalReturn).To(BeNumerically("~", -0.01, 1e-9))
			Expect(resp.Metrics.MaxDrawdown).To(BeNumerically("~", -0.1, 1e-9))

			Expect(resp.Cdi.Values[0]).To(Equal(1.0))
			Expect(resp.Ibovespa.Values).To(HaveLen(3))
			Expect(resp.Ibovespa.Values[2]).To(BeNumerically("~", 0.88, 1e-9))
		})

		It("serves an identical request from cache", func() {
			body := `{"buy": {"PETR4": 1.0}, "start_date": "2021-01-01", "end_date": "2021-01-31", "risk_free": 0.1}`

			status, first := runBacktest(body)
			Expect(status).To(Equal(fiber.StatusOK))

			status, second := runBacktest(body)
			Expect(status).To(Equal(fiber.StatusOK))
			Expect(second).To(Equal(first))
		})
	})

	Context("with a malformed request", func() {
		It("rejects unknown fields", func() {
			// "riskfree" is a typo of "risk_free"; silently defaulting the
			// real field would simulate with the wrong parameter
			status, _ := runBacktest(`{"buy": {"PETR4": 1.0}, "start_date": "2021-01-01", "end_date": "2021-01-31", "riskfree": 0.1}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects a negative buy weight", func() {
			status, _ := runBacktest(`{"buy": {"PETR4": -1.0}, "start_date": "2021-01-01", "end_date": "2021-01-31"}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects a negative sell weight", func() {
			status, _ := runBacktest(`{"sell": {"PETR4": -1.0}, "start_date": "2021-01-01", "end_date": "2021-01-31"}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects a request with no tickers", func() {
			status, _ := runBacktest(`{"start_date": "2021-01-01", "end_date": "2021-01-31"}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects an unparsable start date", func() {
			status, _ := runBacktest(`{"buy": {"PETR4": 1.0}, "start_date": "01/01/2021", "end_date": "2021-01-31"}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects an unparsable end date", func() {
			status, _ := runBacktest(`{"buy": {"PETR4": 1.0}, "start_date": "2021-01-01", "end_date": "soon"}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects an inverted date range", func() {
			status, _ := runBacktest(`{"buy": {"PETR4": 1.0}, "start_date": "2021-01-31", "end_date": "2021-01-01"}`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects a body that is not json", func() {
			status, _ := runBacktest(`buy PETR4`)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("tickers endpoint", func() {
		It("lists the provider's tickers", func() {
			req := httptest.NewRequest(fiber.MethodGet, "/v1/tickers", nil)
			resp, err := app.Test(req)
			Expect(err).To(BeNil())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			raw, err := io.ReadAll(resp.Body)
			Expect(err).To(BeNil())

			var body struct {
				Tickers []string `json:"tickers"`
			}
			Expect(json.Unmarshal(raw, &body)).To(BeNil())
			Expect(body.Tickers).To(Equal([]string{"PETR4", "VALE3"}))
		})
	})
})
