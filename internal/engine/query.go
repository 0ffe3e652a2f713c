// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/index"
)

// Query runs expr against idx, rescanning the undecided fringe against
// values (a brute-force in-memory Partition) when the locate/compose step
// can't resolve every candidate bin on its own.
func Query(idx index.Index, expr index.Expr, values []float64) (*bitvector.Bitvector, error) {
	p := index.Normalize(expr)

	var part *BruteForcePartition
	if values != nil {
		part = &BruteForcePartition{Values: values}
	}

	if part == nil {
		return index.Evaluate(idx, p, nil)
	}

	return index.Evaluate(idx, p, part)
}

// EstimateQuery returns the (lower, upper) popcount bounds for expr against
// idx without touching raw data, for query-planning use.
func EstimateQuery(idx index.Index, expr index.Expr) (lower, upper uint64, err error) {
	return index.Estimate(idx, index.Normalize(expr))
}
