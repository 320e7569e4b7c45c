// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

//go:build !linux

package device

import "fmt"

// Probe falls back to plain lseek-based sizing on platforms without
// the Linux block-device ioctls; sector and block size are assumed at
// the conservative default. dwipe's block-device support targets
// Linux, so this path exists only so the package builds elsewhere.
func Probe(fd FileDescriptor) (sectorSize, blockSize, size uint64, err error) {
	seekSize, err := fd.Seek(0, 2)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("seeking to end of device: %w", err)
	}
	if _, err := fd.Seek(0, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("rewinding device: %w", err)
	}

	return defaultSectorSize, defaultSectorSize, uint64(seekSize), nil
}
