// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cmaster implements an I²C bus master at the signalling level:
// start, repeated start and stop conditions, byte transmission with
// acknowledge capture and collision retry, and byte reception.
//
// The Controller drives an MSSP-style peripheral through the Hardware
// interface. Every wait on the peripheral is a poll with a fixed budget, so a
// wedged slave or a dead clock line turns into ErrSignalTimeout instead of
// hanging the caller.
//
// Two Hardware implementations are provided: GPIO bit-bangs the bus on two
// periph.io pins, and i2cmastertest.Sim simulates the peripheral for tests.
//
// Controller also implements i2c.Bus so that regular periph.io device drivers
// can be used on top of it.
package i2cmaster
