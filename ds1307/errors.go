// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1307

import (
	"errors"
	"fmt"
)

// ErrNoResponse is returned when the clock does not acknowledge its address
// or the register pointer.
var ErrNoResponse = errors.New("ds1307: no response from device")

// BusFailureError wraps a bus level error that aborted a transaction.
//
// It matches ErrNoResponse with errors.Is since the clock could not be
// reached either way.
type BusFailureError struct {
	Op  string
	Err error
}

func (e *BusFailureError) Error() string {
	return fmt.Sprintf("ds1307: %s: %s", e.Op, e.Err)
}

func (e *BusFailureError) Unwrap() error {
	return e.Err
}

func (e *BusFailureError) Is(target error) bool {
	return target == ErrNoResponse
}

// RangeError is returned when a DateTime field is out of range, either
// before writing it to the device or after decoding it.
type RangeError struct {
	Field string
	Value uint8
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("ds1307: %s %d out of range", e.Field, e.Value)
}
