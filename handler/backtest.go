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

package handler

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/carteira-lab/carteira-api/backtest"
	"github.com/carteira-lab/carteira-api/common"
	"github.com/carteira-lab/carteira-api/dataframe"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// BacktestRequest is the wire format of a simulation request. Buy and sell
// weights are ticker→weight maps, not positionally paired lists, so
// weight/ticker misalignment cannot occur. Weight magnitudes must be
// positive; the sell side is negated internally.
type BacktestRequest struct {
	Buy       map[string]float64 `json:"buy"`
	Sell      map[string]float64 `json:"sell"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	RiskFree  float64            `json:"risk_free"`
}

// Series is a date-indexed float series in wire format
type Series struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// BacktestResponse bundles the equity curve, its metrics and the two
// benchmark series. The benchmarks each start at 1.0 on their own first
// in-window date; they do not share an index origin with the curve beyond
// that convention.
type BacktestResponse struct {
	Curve     *Series           `json:"curve"`
	Metrics   *backtest.Metrics `json:"metrics"`
	Cdi       *Series           `json:"cdi"`
	Ibovespa  *Series           `json:"ibovespa"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
}

// RunBacktest simulates a static long/short portfolio over the requested
// window and returns the equity curve, performance metrics and normalized
// CDI / market index benchmarks. Malformed parameters are rejected with 400
// before reaching the core; an in-range request with no matching data
// returns empty series and zero-valued metrics, not an error.
func RunBacktest(c *fiber.Ctx) error {
	params := BacktestRequest{}
	// unknown keys are rejected rather than ignored; a typoed field name
	// would otherwise run the simulation with that parameter defaulted
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&params); err != nil {
		log.Warn().Err(err).Msg("could not parse backtest request")
		return fiber.ErrBadRequest
	}

	weights, err := combineWeights(params.Buy, params.Sell)
	if err != nil {
		log.Warn().Err(err).Msg("invalid weights in backtest request")
		return fiber.ErrBadRequest
	}

	tz := common.GetTimezone()
	begin, err := time.ParseInLocation("2006-01-02", params.StartDate, tz)
	if err != nil {
		log.Warn().Err(err).Str("StartDate", params.StartDate).Msg("could not parse start date")
		return fiber.ErrBadRequest
	}

	end, err := time.ParseInLocation("2006-01-02", params.EndDate, tz)
	if err != nil {
		log.Warn().Err(err).Str("EndDate", params.EndDate).Msg("could not parse end date")
		return fiber.ErrBadRequest
	}

	if end.Before(begin) {
		log.Warn().Time("Begin", begin).Time("End", end).Msg("backtest request with end before start")
		return fiber.ErrBadRequest
	}

	// identical requests are served from cache
	cacheKey := requestCacheKey(&params, weights)
	if body, err := common.CacheGet(cacheKey); err == nil && len(body) > 0 {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	tickers := make([]string, 0, len(weights))
	for ticker := range weights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	ctx := c.Context()
	records, err := provider.Prices(ctx, tickers, begin, end)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not load prices for backtest")
		return fiber.ErrInternalServerError
	}

	rates, err := provider.Rates(ctx, begin, end)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not load cdi rates for backtest")
		return fiber.ErrInternalServerError
	}

	indexPrices, err := provider.IndexPrices(ctx, begin, end)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not load index prices for backtest")
		return fiber.ErrInternalServerError
	}

	panel := backtest.BuildPanel(records, tickers, begin, end)
	result := backtest.Simulate(panel, weights)
	metrics := backtest.Summarize(result, params.RiskFree)

	resp := &BacktestResponse{
		Curve:     seriesFromFrame(result.Curve),
		Metrics:   metrics,
		Cdi:       seriesFromFrame(backtest.NormalizeRateSeries(rates, begin, end)),
		Ibovespa:  seriesFromFrame(backtest.NormalizePriceSeries(indexPrices, begin, end)),
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	}

	body, err := json.Marshal(resp)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not serialize backtest response")
		return fiber.ErrInternalServerError
	}

	if err := common.CacheSet(cacheKey, body); err != nil {
		log.Warn().Err(err).Msg("could not cache backtest response")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// combineWeights merges the buy and sell maps into a single signed weight
// vector: long weights positive, short weights negative. A ticker appearing
// on both sides nets out; portfolio returns are linear in the weights so the
// net weight is equivalent to two signed terms. Negative input magnitudes
// are rejected.
func combineWeights(buy, sell map[string]float64) (map[string]float64, error) {
	weights := make(map[string]float64, len(buy)+len(sell))
	for ticker, weight := range buy {
		if weight < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "buy weight cannot be negative")
		}
		weights[strings.ToUpper(ticker)] += weight
	}
	for ticker, weight := range sell {
		if weight < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "sell weight cannot be negative")
		}
		weights[strings.ToUpper(ticker)] -= weight
	}

	if len(weights) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "no tickers requested")
	}

	return weights, nil
}

// requestCacheKey computes a stable blake3 digest of the request; the
// canonical re-marshaled form is hashed so that key order and whitespace in
// the original body do not fragment the cache
func requestCacheKey(params *BacktestRequest, weights map[string]float64) string {
	canonical, err := json.Marshal(struct {
		Weights   map[string]float64 `json:"weights"`
		StartDate string             `json:"start_date"`
		EndDate   string             `json:"end_date"`
		RiskFree  float64            `json:"risk_free"`
	}{weights, params.StartDate, params.EndDate, params.RiskFree})
	if err != nil {
		log.Error().Err(err).Msg("could not serialize cache key")
		return ""
	}

	digest := blake3.Sum256(canonical)
	return "backtest:" + hex.EncodeToString(digest[:])
}

func seriesFromFrame(df *dataframe.DataFrame) *Series {
	series := &Series{
		Dates:  make([]string, df.Len()),
		Values: make([]float64, df.Len()),
	}

	if df.ColCount() == 0 {
		return series
	}

	for idx, dt := range df.Dates {
		series.Dates[idx] = dt.Format("2006-01-02")
		series.Values[idx] = df.Vals[0][idx]
	}

	return series
}
