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
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
)

// Op names a comparison operator appearing on one side of a predicate.
type Op int

// The comparison operators a predicate side may use.
const (
	Undef Op = iota
	Lt
	Le
	Gt
	Ge
	Eq
)

// Expr is a raw two-sided continuous-range predicate, e.g. "3.5 <= col < 17.25"
// is {LOp: Le, LVal: 3.5, ROp: Lt, RVal: 17.25}. Either side may be Undef for
// an unbounded predicate, and a bare "col = v" is expressed with LOp == Eq.
type Expr struct {
	LOp  Op
	LVal float64
	ROp  Op
	RVal float64
}

// Normalize turns expr into a closed-or-open Predicate, applying eq2range to
// turn a bare equality into a tight double-sided bound using the
// ULP-adjacent neighbors of the value.
func Normalize(expr Expr) collab.Predicate {
	if expr.LOp == Eq {
		lo := math.Nextafter(expr.LVal, math.Inf(-1))
		hi := math.Nextafter(expr.LVal, math.Inf(1))

		return collab.Predicate{LowerBound: lo, LowerInclusive: false, UpperBound: hi, UpperInclusive: false}
	}

	p := collab.Predicate{LowerBound: math.Inf(-1), UpperBound: math.Inf(1)}

	switch expr.LOp {
	case Lt:
		p.LowerBound, p.LowerInclusive = expr.LVal, false
	case Le:
		p.LowerBound, p.LowerInclusive = expr.LVal, true
	case Gt, Ge:
		// a left-hand Gt/Ge operator is read as "col OP v" (col is above v, the
		// form the CLI's --gt/--ge flags produce), so LowerBound is col's floor.
		p.LowerBound, p.LowerInclusive = expr.LVal, expr.LOp == Ge
	}

	switch expr.ROp {
	case Lt:
		p.UpperBound, p.UpperInclusive = expr.RVal, false
	case Le:
		p.UpperBound, p.UpperInclusive = expr.RVal, true
	}

	return p
}

// LocateResult is the candidate/hit bin interval a predicate maps to:
// [hit0, hit1) are certain hits, [cand0, cand1) are possible hits, and
// cand0 <= hit0 <= hit1 <= cand1.
type LocateResult struct {
	Cand0, Hit0, Hit1, Cand1 int
}

// NeedsRescan reports whether any candidate bin outside the hit interval
// must be resolved via external rescan.
func (l LocateResult) NeedsRescan() bool {
	return l.Cand0 < l.Hit0 || l.Cand1 > l.Hit1
}

// locateByBounds implements the shared bin/range/mesa locate algorithm: bin i
// is a certain hit iff [minval[i], maxval[i]] lies entirely inside
// [p.LowerBound, p.UpperBound), and a candidate iff the two intervals
// overlap at all. minval/maxval must cover every slot including the implicit
// top bin (index len(minval)-1), so callers always pass Core.MinVal/MaxVal
// in full rather than a nobs-length slice of it.
func locateByBounds(minval, maxval []float64, p collab.Predicate) LocateResult {
	n := len(minval)

	inLower := func(v float64) bool {
		if p.LowerInclusive {
			return v >= p.LowerBound
		}

		return v > p.LowerBound
	}

	inUpper := func(v float64) bool {
		if p.UpperInclusive {
			return v <= p.UpperBound
		}

		return v < p.UpperBound
	}

	overlaps := func(i int) bool {
		return inUpper(minval[i]) && (maxval[i] > p.LowerBound || (p.LowerInclusive && maxval[i] == p.LowerBound))
	}

	certain := func(i int) bool {
		return inLower(minval[i]) && inUpper(maxval[i])
	}

	cand0, cand1 := n, n

	for i := 0; i < n; i++ {
		if overlaps(i) {
			cand0 = i

			break
		}
	}

	for i := n - 1; i >= 0; i-- {
		if overlaps(i) {
			cand1 = i + 1

			break
		}
	}

	if cand0 >= cand1 {
		return LocateResult{Cand0: cand0, Hit0: cand0, Hit1: cand0, Cand1: cand1}
	}

	hit0, hit1 := cand1, cand1

	for i := cand0; i < cand1; i++ {
		if certain(i) {
			hit0 = i

			break
		}
	}

	for i := cand1 - 1; i >= cand0; i-- {
		if certain(i) {
			hit1 = i + 1

			break
		}
	}

	if hit0 > hit1 {
		hit0, hit1 = hit1, hit0
	}

	return LocateResult{Cand0: cand0, Hit0: hit0, Hit1: hit1, Cand1: cand1}
}

// Evaluate runs the shared locate -> compose -> rescan protocol against any
// Index: it locates the bin interval, unions the certain-hit bins, and if
// candidate bins remain outside the hit interval, builds a boundary mask and
// calls the external rescanner on it.
func Evaluate(idx Index, p collab.Predicate, part collab.Partition) (*bitvector.Bitvector, error) {
	loc := idx.Locate(p)

	lower, err := idx.ComposeHits(loc)
	if err != nil {
		return nil, err
	}

	if !loc.NeedsRescan() || part == nil {
		return lower, nil
	}

	upper, err := idx.ComposeCandidates(loc)
	if err != nil {
		return nil, err
	}

	boundary := bitvector.Minus(upper, lower)

	delta, err := part.Rescan(p, boundary)
	if err != nil {
		return nil, err
	}

	log.Debugf("rescanned %d candidate rows outside the certain-hit interval", delta.Cnt())

	return bitvector.Or(lower, delta), nil
}

// Estimate returns the (lower, upper) popcount bounds without invoking
// rescan, for query-planning use.
func Estimate(idx Index, p collab.Predicate) (lower, upper uint64, err error) {
	loc := idx.Locate(p)

	lowerBV, err := idx.ComposeHits(loc)
	if err != nil {
		return 0, 0, err
	}

	upperBV, err := idx.ComposeCandidates(loc)
	if err != nil {
		return 0, 0, err
	}

	return lowerBV.Cnt(), upperBV.Cnt(), nil
}

// Undecidable returns the size of the undecided fringe (upper - lower
// popcount) together with a linear fraction heuristic estimating what share
// of the first candidate bin actually qualifies, for query planning.
func Undecidable(idx Index, core *Core, p collab.Predicate) (fringe uint64, fraction float64, err error) {
	loc := idx.Locate(p)

	lowerBV, err := idx.ComposeHits(loc)
	if err != nil {
		return 0, 0, err
	}

	upperBV, err := idx.ComposeCandidates(loc)
	if err != nil {
		return 0, 0, err
	}

	fringe = upperBV.Cnt() - lowerBV.Cnt()

	if loc.Cand0 >= core.NObs() || loc.Cand0 < 0 {
		return fringe, 0, nil
	}

	maxv := core.MaxVal[loc.Cand0]
	minv := core.MinVal[loc.Cand0]

	if maxv == minv {
		return fringe, 0, nil
	}

	fraction = (maxv - p.LowerBound) / (maxv - minv)

	return fringe, fraction, nil
}

// Index is the shared capability set every binned index variant implements,
// replacing the source's inheritance hierarchy with a tagged-variant
// interface (core.go's Core holds the common bin-boundary/bitvector state).
type Index interface {
	Kind() Type
	Core() *Core
	Locate(p collab.Predicate) LocateResult
	// ComposeHits ORs together the certain-hit bins [Hit0, Hit1).
	ComposeHits(loc LocateResult) (*bitvector.Bitvector, error)
	// ComposeCandidates ORs together the full candidate interval [Cand0, Cand1),
	// i.e. the hit bitvector unioned with the boundary fringe bins.
	ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error)
}
