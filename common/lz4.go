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
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Compress encodes the value as an lz4 frame. Cached backtest responses are
// JSON and compress well; the cache stores only compressed values.
func Compress(in []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := lz4.NewWriter(buf)

	if _, err := zw.Write(in); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decodes an lz4 frame produced by Compress
func Decompress(in []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(in)))
}
