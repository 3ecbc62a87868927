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
	"time"
)

// Provider serves the three external data streams consumed by the backtest
// core: the long-format equity price table, the CDI daily accrual series and
// the market index price series. Implementations must return rows sorted by
// date ascending. An empty result is not an error; absence of data is a
// value the core knows how to handle.
type Provider interface {
	// Tickers lists the distinct tickers available in the price table
	Tickers(ctx context.Context) ([]string, error)

	// Prices returns the long-format price rows for the requested tickers
	// within the inclusive date range
	Prices(ctx context.Context, tickers []string, begin, end time.Time) ([]*PriceRecord, error)

	// Rates returns the CDI daily rate rows within the inclusive date range
	Rates(ctx context.Context, begin, end time.Time) ([]*RateRecord, error)

	// IndexPrices returns the market index price rows within the inclusive
	// date range
	IndexPrices(ctx context.Context, begin, end time.Time) ([]*PriceRecord, error)
}
