// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

// Checksum computes the Goldline frame checksum: a 16-bit sum of every
// byte from the start delimiter through the end of the payload.
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
