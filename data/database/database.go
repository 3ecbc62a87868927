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

package database

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PgxIface is the subset of the pgxpool interface used by the data layer;
// it is satisfied by both *pgxpool.Pool and pgxmock connections
type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
}

var pool PgxIface

// Connect to the database pool specified by the database.url configuration key
func Connect(ctx context.Context) error {
	url := viper.GetString("database.url")
	subLog := log.With().Str("Url", url).Logger()

	p, err := pgxpool.Connect(ctx, url)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not connect to database")
		return err
	}

	pool = p
	subLog.Info().Msg("connected to database")
	return nil
}

// SetPool overrides the database pool; used by tests to inject a mock connection
func SetPool(p PgxIface) {
	pool = p
}

// Trx returns a new transaction from the pool
func Trx(ctx context.Context) (pgx.Tx, error) {
	return pool.Begin(ctx)
}
