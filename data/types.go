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
	"time"
)

// PriceRecord is a single row of the long-format price table: the closing
// price of one ticker on one day. A missing price is represented as NaN.
type PriceRecord struct {
	Date   time.Time
	Ticker string
	Price  float64
}

// RateRecord is a single row of a daily accrual series, e.g. the CDI
// over-night factor minus 1
type RateRecord struct {
	Date time.Time
	Rate float64
}
