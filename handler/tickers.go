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
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ListTickers returns the distinct tickers available in the price table;
// the front end uses this to populate its ticker pickers without loading
// any price history
func ListTickers(c *fiber.Ctx) error {
	tickers, err := provider.Tickers(c.Context())
	if err != nil {
		log.Warn().Stack().Err(err).Msg("could not list tickers")
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"tickers": tickers,
	})
}
