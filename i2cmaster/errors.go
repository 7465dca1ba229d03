// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"errors"
	"fmt"
)

var (
	// ErrSignalTimeout is returned when the peripheral did not report the
	// completion of a sequence within the poll budget.
	ErrSignalTimeout = errors.New("i2cmaster: timeout waiting for bus signal")
	// ErrCollisionExceeded is returned when a byte could not be transmitted
	// within the collision retry budget.
	ErrCollisionExceeded = errors.New("i2cmaster: transmit collision retries exceeded")
	// ErrInvalidState is returned when an operation is not valid in the
	// current bus state, for example Restart without Start.
	ErrInvalidState = errors.New("i2cmaster: operation invalid in current bus state")
)

// OpError records the bus operation that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("i2cmaster: %s: %s", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NackError is returned by Tx when a byte was not acknowledged.
type NackError struct {
	Addr uint16
	// Index is the position of the rejected byte in the write buffer, or -1
	// for the address byte.
	Index int
}

func (e *NackError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("i2cmaster: no acknowledge from device %#x", e.Addr)
	}
	return fmt.Sprintf("i2cmaster: device %#x rejected byte %d", e.Addr, e.Index)
}
