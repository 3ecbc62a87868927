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

package common

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Two-tier cache for rendered backtest responses. The in-process LRU is
// always active; redis is an optional second tier (cache.redis = true) so
// several API instances can share results. Values are lz4 compressed in
// both tiers.

var (
	cacheCtx = context.Background()
	local    *lru.Cache
	rdb      *redis.Client
)

var ErrCacheMiss = errors.New("key not found in cache")

// SetupCache initializes the cache tiers from configuration; called once at
// process startup before any handler runs
func SetupCache() {
	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse redis url")
		}
		rdb = redis.NewClient(opt)
	}

	size := viper.GetInt("cache.local_size")
	if size == 0 {
		size = 128
	}

	l, err := lru.New(size)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create local cache")
	}
	local = l
}

func cacheTTL() time.Duration {
	return time.Duration(viper.GetInt("cache.ttl")) * time.Second
}

// CacheSet compresses the value and stores it in every configured tier
func CacheSet(key string, val []byte) error {
	compressed, err := Compress(val)
	if err != nil {
		return err
	}

	local.Add(key, compressed)
	if rdb != nil {
		return rdb.Set(cacheCtx, key, compressed, cacheTTL()).Err()
	}
	return nil
}

// CacheGet looks the key up in the local tier first, then redis. A redis hit
// refreshes the key's ttl and backfills the local tier. Any miss or redis
// failure is reported as ErrCacheMiss; the caller recomputes either way.
func CacheGet(key string) ([]byte, error) {
	if cached, ok := local.Get(key); ok {
		return Decompress(cached.([]byte))
	}

	if rdb != nil {
		compressed, err := rdb.GetEx(cacheCtx, key, cacheTTL()).Bytes()
		if err != nil {
			return nil, ErrCacheMiss
		}
		local.Add(key, compressed)
		return Decompress(compressed)
	}

	return nil, ErrCacheMiss
}
