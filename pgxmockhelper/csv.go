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

// Package pgxmockhelper loads CSV fixtures into pgxmock row sets for the
// carteira table schema. Tests describe their database contents as CSV files
// under testdata/ and register the matching query expectations with one call.
package pgxmockhelper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog/log"
)

// CSVRows is a parsed CSV fixture; rows may be filtered by date before being
// converted into a pgxmock row set
type CSVRows struct {
	rows    [][]any
	header  []string
	dateCol int
}

// NewCSVRows parses the CSV file at csvFn. typeMap assigns a conversion to
// each named column: "date" (2006-01-02), "float64", or "*float64" where an
// empty cell becomes a typed nil to model SQL NULL. Unmapped columns stay
// strings. Fixtures are test inputs, so any malformed file panics.
func NewCSVRows(csvFn string, typeMap map[string]string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	csvRows := &CSVRows{
		dateCol: -1,
		rows:    make([][]any, 0),
	}

	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read fixture")
	}

	lines := strings.Split(string(rawData), "\n")
	if len(lines) < 2 {
		subLog.Panic().Int("NumLines", len(lines)).Msg("fixture needs at least a header and a trailing new line")
	}
	if lines[len(lines)-1] != "" {
		subLog.Panic().Msg("fixture is missing a trailing new line")
	}

	csvRows.header = strings.Split(lines[0], ",")
	lines = lines[1 : len(lines)-1]

	for _, line := range lines {
		cols := make([]any, len(csvRows.header))
		parts := strings.Split(line, ",")
		for idx, val := range parts {
			switch typeMap[csvRows.header[idx]] {
			case "date":
				parsed, err := time.Parse("2006-01-02", val)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not parse date cell")
				}
				cols[idx] = parsed
				csvRows.dateCol = idx
			case "float64":
				parsed, err := strconv.ParseFloat(val, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not parse float cell")
				}
				cols[idx] = parsed
			case "*float64":
				if val == "" {
					cols[idx] = (*float64)(nil)
					continue
				}
				parsed, err := strconv.ParseFloat(val, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not parse nullable float cell")
				}
				cols[idx] = &parsed
			default:
				cols[idx] = val
			}
		}
		csvRows.rows = append(csvRows.rows, cols)
	}

	return csvRows
}

// Between keeps only rows whose date column falls in the inclusive range
func (csvRows *CSVRows) Between(a time.Time, b time.Time) *CSVRows {
	if len(csvRows.rows) == 0 {
		return csvRows
	}
	if csvRows.dateCol == -1 {
		log.Panic().Time("a", a).Time("b", b).Msg("no date column in fixture")
	}

	newRows := make([][]any, 0, len(csvRows.rows))
	for _, row := range csvRows.rows {
		t := row[csvRows.dateCol].(time.Time)
		if (t.Before(b) || t.Equal(b)) && (t.After(a) || t.Equal(a)) {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

// Rows converts the fixture into a pgxmock row set
func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

// MockPricesQuery registers the expectations for one PriceDb.Prices call
// backed by an eod_prices fixture
func MockPricesQuery(db pgxmock.PgxConnIface, fn string, begin, end time.Time) {
	db.ExpectBegin()
	db.ExpectQuery("SELECT event_date, ticker, close FROM eod_prices").WillReturnRows(
		NewCSVRows(fn, map[string]string{
			"event_date": "date",
			"close":      "*float64",
		}).Between(begin, end).Rows())
	db.ExpectCommit()
}

// MockRatesQuery registers the expectations for one PriceDb.Rates call
// backed by a cdi_rates fixture
func MockRatesQuery(db pgxmock.PgxConnIface, fn string, begin, end time.Time) {
	db.ExpectBegin()
	db.ExpectQuery("SELECT event_date, rate FROM cdi_rates").WillReturnRows(
		NewCSVRows(fn, map[string]string{
			"event_date": "date",
			"rate":       "float64",
		}).Between(begin, end).Rows())
	db.ExpectCommit()
}

// MockIndexQuery registers the expectations for one PriceDb.IndexPrices call
// backed by a benchmark_prices fixture
func MockIndexQuery(db pgxmock.PgxConnIface, fn string, begin, end time.Time) {
	db.ExpectBegin()
	db.ExpectQuery("SELECT event_date, close FROM benchmark_prices").WillReturnRows(
		NewCSVRows(fn, map[string]string{
			"event_date": "date",
			"close":      "float64",
		}).Between(begin, end).Rows())
	db.ExpectCommit()
}
