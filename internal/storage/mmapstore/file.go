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

// Package mmapstore implements the mmap-aware half of the file manager
// collaborator: it opens column, mask, and index files and decides, based on
// region size against the OS page size, whether to read them into memory or
// memory-map them. Follows the pkg/mmap package's approach (file.go,
// block_device.go), which wraps golang.org/x/sys/unix for exactly this
// purpose in go-corset's own trace-file handling.
package mmapstore

import (
	"io"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// File is a memory-mapped, read-only view of a column, mask, or index file.
type File struct {
	fd   int
	Data []byte
}

// PageSize is used by Open to decide whether mapping is worthwhile; regions
// smaller than one page are read directly instead, since the mapping
// overhead would dominate.
var PageSize = os.Getpagesize()

// Open maps the given file read-only. Files smaller than one OS page are
// read directly into an owned buffer instead (Data is populated either way;
// Close tells the two apart by len(Data) against PageSize).
func Open(path string) (*File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %#v", path)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrapf(err, "failed to stat file %#v", path)
	}

	size := int(stat.Size)

	if size < PageSize {
		data := make([]byte, size)
		if _, err := unix.Pread(fd, data, 0); err != nil && err != io.EOF {
			_ = unix.Close(fd)
			return nil, errors.Wrapf(err, "failed to read file %#v", path)
		}

		return &File{fd: fd, Data: data}, nil
	}

	data, err := unix.Mmap(fd, 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(err, "failed to memory map file")
	}

	return &File{fd: fd, Data: data}, nil
}

// ReadAt reads through the memory map (or owned buffer) at a given offset,
// recovering from any page fault triggered by a failing underlying device so
// a single bad region doesn't crash the whole process.
func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, syscall.EINVAL
	}

	if off > int64(len(f.Data)) {
		return 0, io.EOF
	}

	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)

		if recover() != nil {
			err = errors.New("page fault occurred while reading from memory map")
		}
	}()

	n = copy(p, f.Data[off:])
	if n < len(p) {
		err = io.EOF
	}

	return
}

// Close unmaps (or discards) the underlying region and closes the file
// descriptor.
func (f *File) Close() error {
	if f.fd < 0 {
		return nil
	}

	if len(f.Data) >= PageSize {
		if err := unix.Munmap(f.Data); err != nil {
			return errors.Wrap(err, "failed to unmap file")
		}
	}

	err := unix.Close(f.fd)
	f.fd = -1

	return err
}
