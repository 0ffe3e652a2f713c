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

// Package ibiserr provides the small set of error kinds recognised by the
// indexing engine. Every kind wraps a causing error using github.com/pkg/errors
// so that the original stack trace survives.
package ibiserr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which error category occurred.
type Kind int

const (
	// Format indicates a malformed on-disk structure: wrong magic,
	// inconsistent offsets, or a truncated file.
	Format Kind = iota
	// SizeMismatch indicates two bitvectors of differing logical length
	// were combined. Callers may choose to treat this as a warning rather
	// than abort.
	SizeMismatch
	// OutOfMemory indicates an allocation failure, typically during
	// decompression.
	OutOfMemory
	// IO indicates an underlying read/write failure.
	IO
	// Invariant indicates a sanity check failed, such as a recomputed
	// population count disagreeing with the cached one.
	Invariant
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Format:
		return "format"
	case SizeMismatch:
		return "size-mismatch"
	case OutOfMemory:
		return "out-of-memory"
	case IO:
		return "io"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error wraps a causing error with one of the Kind values above.
type Error struct {
	Kind  Kind
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

// Unwrap allows errors.Is/errors.As to see through to the causing error.
func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a new *Error of the given kind wrapping msg.
func New(kind Kind, msg string) *Error {
	return &Error{kind, errors.New(msg)}
}

// Wrap constructs a new *Error of the given kind wrapping cause with
// additional context.
func Wrap(kind Kind, cause error, msg string) *Error {
	if cause == nil {
		return nil
	}

	return &Error{kind, errors.Wrap(cause, msg)}
}

// Wrapf is like Wrap but accepts a format string.
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	if cause == nil {
		return nil
	}

	return &Error{kind, errors.Wrapf(cause, format, args...)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return false
}
