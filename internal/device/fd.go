// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

//go:build darwin || linux

package device

import "syscall"

// FileDescriptor is a raw OS file descriptor for a block device node,
// offering the positioned reads/writes the pass runner needs without
// going through buffered I/O.
type FileDescriptor int

func (fd FileDescriptor) Seek(offset int64, whence int) (int64, error) {
	return syscall.Seek(int(fd), offset, whence)
}

func (fd FileDescriptor) Pread(p []byte, offset int64) (int, error) {
	return syscall.Pread(int(fd), p, offset)
}

func (fd FileDescriptor) Pwrite(p []byte, offset int64) (int, error) {
	return syscall.Pwrite(int(fd), p, offset)
}

func (fd FileDescriptor) Sync() error {
	return syscall.Fsync(int(fd))
}

func (fd FileDescriptor) Close() error {
	return syscall.Close(int(fd))
}

// Open opens a device node for raw read/write access. Durability is
// handled explicitly via Sync between passes rather than by opening
// with O_SYNC, matching the original tool's plain open(O_RDWR).
func Open(path string, mode int, perm uint32) (FileDescriptor, error) {
	fd, err := syscall.Open(path, mode, perm)
	return FileDescriptor(fd), err
}
