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
	"github.com/carteira-lab/carteira-api/data"

	"github.com/gofiber/fiber/v2"
)

var provider data.Provider

// SetProvider injects the data provider used by all handlers; called once
// during server startup
func SetProvider(p data.Provider) {
	provider = p
}

// Ping responds to API health checks
func Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "API is alive",
	})
}
