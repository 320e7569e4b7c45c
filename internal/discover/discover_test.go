// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package discover

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPartitionTraditionalNaming(t *testing.T) {
	require.False(t, isPartition("sda"))
	require.True(t, isPartition("sda1"))
	require.True(t, isPartition("sdb12"))
	require.False(t, isPartition("sdb"))
}

func TestIsPartitionNVMeNaming(t *testing.T) {
	require.False(t, isPartition("nvme0n1"))
	require.True(t, isPartition("nvme0n1p1"))
	require.True(t, isPartition("nvme1n1p12"))
}

func TestIsPartitionMMCNaming(t *testing.T) {
	require.False(t, isPartition("mmcblk0"))
	require.True(t, isPartition("mmcblk0p1"))
}

func TestIsPartitionEmptyName(t *testing.T) {
	require.False(t, isPartition(""))
}
