// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

//go:build linux

package device

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/dwipe-project/dwipe/internal/logger"
)

// Probe measures a block device's sector size, soft block size, and
// total size via the same three ioctls the original C source uses
// (BLKSSZGET, BLKBSZGET, BLKGETSIZE64), then cross-validates the
// ioctl size against an independent lseek-to-end measurement.
//
// A failed BLKSSZGET/BLKBSZGET is not fatal: the original source logs
// a warning and falls back to a conservative default. A size mismatch
// between the two probing methods is fatal, matching the source's
// behavior even though it is arguably the wrong call for devices that
// legitimately report different logical/physical sizes.
func Probe(fd FileDescriptor) (sectorSize, blockSize, size uint64, err error) {
	sectorSize = defaultSectorSize
	if n, ierr := unix.IoctlGetInt(int(fd), unix.BLKSSZGET); ierr == nil && n > 0 {
		sectorSize = uint64(n)
	}

	blockSize = sectorSize
	if n, ierr := unix.IoctlGetInt(int(fd), unix.BLKBSZGET); ierr == nil && n > 0 {
		blockSize = uint64(n)
	}
	if blockSize != sectorSize {
		logger.Warnf("soft block size %d differs from hard sector size %d, forcing block size to sector size", blockSize, sectorSize)
	}
	blockSize = normalizeBlockSize(sectorSize, blockSize)

	ioctlSize, ierr := unix.IoctlGetUint64(int(fd), unix.BLKGETSIZE64)
	if ierr != nil {
		return 0, 0, 0, fmt.Errorf("BLKGETSIZE64 failed: %w", ierr)
	}

	seekSize, serr := fd.Seek(0, 2)
	if serr != nil {
		return 0, 0, 0, fmt.Errorf("seeking to end of device: %w", serr)
	}
	if _, serr := fd.Seek(0, 0); serr != nil {
		return 0, 0, 0, fmt.Errorf("rewinding device: %w", serr)
	}

	if err := ValidateSize(uint64(seekSize), ioctlSize); err != nil {
		return 0, 0, 0, err
	}

	return sectorSize, blockSize, ioctlSize, nil
}
