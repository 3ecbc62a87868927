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

package data

import (
	"context"
	"math"
	"time"

	"github.com/carteira-lab/carteira-api/common"
	"github.com/carteira-lab/carteira-api/data/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PriceDb is a Provider backed by the carteira PostgreSQL schema:
//
//	eod_prices(event_date, ticker, close)
//	cdi_rates(event_date, rate)
//	benchmark_prices(event_date, ticker, close)
type PriceDb struct {
}

// NewPriceDb creates a new PriceDb data provider
func NewPriceDb() *PriceDb {
	return &PriceDb{}
}

// Tickers lists the distinct tickers present in the eod_prices table
func (p *PriceDb) Tickers(ctx context.Context) ([]string, error) {
	trx, err := database.Trx(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not get transaction when querying tickers")
		return nil, err
	}

	rows, err := trx.Query(ctx, "SELECT DISTINCT ticker FROM eod_prices ORDER BY ticker")
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not query tickers")
		if err := trx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	res := make([]string, 0, 512)
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			log.Error().Stack().Err(err).Msg("could not scan ticker row")
			if err := trx.Rollback(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		res = append(res, ticker)
	}

	if err := trx.Commit(ctx); err != nil {
		log.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	return res, nil
}

// Prices fetches long-format closing prices for the requested tickers within
// the inclusive date range. A NULL close is returned as NaN.
func (p *PriceDb) Prices(ctx context.Context, tickers []string, begin, end time.Time) ([]*PriceRecord, error) {
	subLog := log.With().Strs("Tickers", tickers).Time("Begin", begin).Time("End", end).Logger()

	res := make([]*PriceRecord, 0, 252*len(tickers))
	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to Prices")
		return res, ErrInvalidTimeRange
	}

	if len(tickers) == 0 {
		return res, nil
	}

	trx, err := database.Trx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction when querying prices")
		return nil, err
	}

	sql := "SELECT event_date, ticker, close FROM eod_prices WHERE ticker = ANY($1) AND event_date BETWEEN $2 AND $3 ORDER BY event_date, ticker"
	rows, err := trx.Query(ctx, sql, tickers, begin, end)
	if err != nil {
		subLog.Error().Stack().Err(err).Str("SQL", sql).Msg("could not query prices")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	tz := common.GetTimezone()
	for rows.Next() {
		var (
			eventDate time.Time
			ticker    string
			closePx   *float64
		)

		if err := rows.Scan(&eventDate, &ticker, &closePx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan price row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}

		price := math.NaN()
		if closePx != nil {
			price = *closePx
		}

		eventDate = time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, tz)
		res = append(res, &PriceRecord{
			Date:   eventDate,
			Ticker: ticker,
			Price:  price,
		})
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	return res, nil
}

// Rates fetches the CDI daily accrual rates within the inclusive date range
func (p *PriceDb) Rates(ctx context.Context, begin, end time.Time) ([]*RateRecord, error) {
	subLog := log.With().Time("Begin", begin).Time("End", end).Logger()

	res := make([]*RateRecord, 0, 252)
	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to Rates")
		return res, ErrInvalidTimeRange
	}

	trx, err := database.Trx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction when querying rates")
		return nil, err
	}

	sql := "SELECT event_date, rate FROM cdi_rates WHERE event_date BETWEEN $1 AND $2 ORDER BY event_date"
	rows, err := trx.Query(ctx, sql, begin, end)
	if err != nil {
		subLog.Error().Stack().Err(err).Str("SQL", sql).Msg("could not query cdi rates")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	tz := common.GetTimezone()
	for rows.Next() {
		var (
			eventDate time.Time
			rate      float64
		)

		if err := rows.Scan(&eventDate, &rate); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan rate row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}

		eventDate = time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, tz)
		res = append(res, &RateRecord{
			Date: eventDate,
			Rate: rate,
		})
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	return res, nil
}

// IndexPrices fetches the market index closing prices within the inclusive
// date range. The index ticker defaults to IBOV and may be overridden with
// the benchmark.index_ticker configuration key.
func (p *PriceDb) IndexPrices(ctx context.Context, begin, end time.Time) ([]*PriceRecord, error) {
	indexTicker := viper.GetString("benchmark.index_ticker")
	if indexTicker == "" {
		indexTicker = "IBOV"
	}

	subLog := log.With().Str("IndexTicker", indexTicker).Time("Begin", begin).Time("End", end).Logger()

	res := make([]*PriceRecord, 0, 252)
	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to IndexPrices")
		return res, ErrInvalidTimeRange
	}

	trx, err := database.Trx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction when querying index prices")
		return nil, err
	}

	sql := "SELECT event_date, close FROM benchmark_prices WHERE ticker = $1 AND event_date BETWEEN $2 AND $3 ORDER BY event_date"
	rows, err := trx.Query(ctx, sql, indexTicker, begin, end)
	if err != nil {
		subLog.Error().Stack().Err(err).Str("SQL", sql).Msg("could not query index prices")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	tz := common.GetTimezone()
	for rows.Next() {
		var (
			eventDate time.Time
			closePx   float64
		)

		if err := rows.Scan(&eventDate, &closePx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan index price row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}

		eventDate = time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, tz)
		res = append(res, &PriceRecord{
			Date:   eventDate,
			Ticker: indexTicker,
			Price:  closePx,
		})
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	return res, nil
}
