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

	"github.com/carteira-lab/carteira-api/common"
	"github.com/carteira-lab/carteira-api/data"
	"github.com/carteira-lab/carteira-api/data/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tickersCmd)
}

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "List the tickers available in the price table",
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		provider := data.NewPriceDb()
		tickers, err := provider.Tickers(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list tickers")
		}

		for _, ticker := range tickers {
			fmt.Println(ticker)
		}
	},
}
