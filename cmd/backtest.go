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

package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/carteira-lab/carteira-api/backtest"
	"github.com/carteira-lab/carteira-api/chart"
	"github.com/carteira-lab/carteira-api/common"
	"github.com/carteira-lab/carteira-api/data"
	"github.com/carteira-lab/carteira-api/data/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	buyArgs   []string
	sellArgs  []string
	startArg  string
	endArg    string
	riskFree  float64
	chartPath string
)

func init() {
	backtestCmd.Flags().StringSliceVar(&buyArgs, "buy", []string{}, "Long position as TICKER=WEIGHT; may be repeated")
	backtestCmd.Flags().StringSliceVar(&sellArgs, "sell", []string{}, "Short position as TICKER=WEIGHT; may be repeated")
	backtestCmd.Flags().StringVar(&startArg, "start", "2012-01-01", "Simulation start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&endArg, "end", "2025-01-01", "Simulation end date (YYYY-MM-DD)")
	backtestCmd.Flags().Float64Var(&riskFree, "risk-free", 0.13, "Annual risk free rate as a fraction")
	backtestCmd.Flags().StringVar(&chartPath, "chart", "", "Write a PNG line chart of the equity curve and benchmarks to the given path")

	rootCmd.AddCommand(backtestCmd)
}

var backtestCmd = &cobra.Command{
	Use:   "backtest [flags]",
	Short: "Run a buy-and-hold long/short portfolio simulation",
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		weights, err := parseWeights(buyArgs, sellArgs)
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse weights")
		}
		if len(weights) == 0 {
			log.Fatal().Msg("no tickers requested; use --buy and/or --sell")
		}

		tz := common.GetTimezone()
		begin, err := time.ParseInLocation("2006-01-02", startArg, tz)
		if err != nil {
			log.Fatal().Err(err).Str("Start", startArg).Msg("could not parse start date")
		}
		end, err := time.ParseInLocation("2006-01-02", endArg, tz)
		if err != nil {
			log.Fatal().Err(err).Str("End", endArg).Msg("could not parse end date")
		}

		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		provider := data.NewPriceDb()

		tickers := make([]string, 0, len(weights))
		for ticker := range weights {
			tickers = append(tickers, ticker)
		}
		sort.Strings(tickers)

		records, err := provider.Prices(ctx, tickers, begin, end)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load prices")
		}

		panel := backtest.BuildPanel(records, tickers, begin, end)
		result := backtest.Simulate(panel, weights)
		metrics := backtest.Summarize(result, riskFree)

		if result.Curve.Len() == 0 {
			fmt.Println("no data for the requested tickers and date range")
			return
		}

		fmt.Printf("Period: %s to %s (%d trading days)\n",
			result.Curve.Start().Format("2006-01-02"),
			result.Curve.End().Format("2006-01-02"),
			result.Curve.Len())
		fmt.Println(metrics.Table())

		if chartPath != "" {
			rates, err := provider.Rates(ctx, begin, end)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load cdi rates")
			}
			indexPrices, err := provider.IndexPrices(ctx, begin, end)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load index prices")
			}

			cdi := backtest.NormalizeRateSeries(rates, begin, end)
			index := backtest.NormalizePriceSeries(indexPrices, begin, end)

			png, err := chart.Render("Portfolio vs Benchmarks", result.Curve, cdi, index)
			if err != nil {
				log.Fatal().Err(err).Msg("could not render chart")
			}
			if err := os.WriteFile(chartPath, png, 0644); err != nil {
				log.Fatal().Err(err).Str("Path", chartPath).Msg("could not write chart")
			}
			fmt.Printf("wrote chart to %s\n", chartPath)
		}
	},
}

// parseWeights converts repeated TICKER=WEIGHT flags into a signed weight
// map; buy weights are positive, sell weights negative, and a ticker on both
// sides nets out
func parseWeights(buy, sell []string) (map[string]float64, error) {
	weights := make(map[string]float64, len(buy)+len(sell))

	for _, side := range []struct {
		args []string
		sign float64
	}{{buy, 1}, {sell, -1}} {
		common.ArrToUpper(side.args)
		for _, arg := range side.args {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("expected TICKER=WEIGHT, got %q", arg)
			}

			weight, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, fmt.Errorf("could not parse weight in %q: %w", arg, err)
			}
			if weight < 0 {
				return nil, fmt.Errorf("weight must be non-negative in %q", arg)
			}

			weights[strings.TrimSpace(parts[0])] += side.sign * weight
		}
	}

	return weights, nil
}
