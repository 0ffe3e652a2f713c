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

package index

import (
	"testing"

	"github.com/gingi/go-ibis/internal/ibisassert"
)

func TestClusteringFactorTrivialSmallSize(t *testing.T) {
	f := ClusteringFactor(1000, 50, 12) // 3 words -> returns nc directly
	ibisassert.Equal(t, 50.0, f)
}

func TestClusteringFactorFallsBackToOneBelowThreshold(t *testing.T) {
	f := ClusteringFactor(10, 5, 100)
	ibisassert.Equal(t, 1.0, f)
}

func TestClusteringFactorConverges(t *testing.T) {
	f := ClusteringFactor(1_000_000, 10_000, 8_000)
	ibisassert.True(t, f >= 1, "clustering factor must be at least 1")
	ibisassert.True(t, f == f, "clustering factor must not be NaN")
}
