// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ds1307 reads and sets the time of a DS1307 real-time clock.
//
// The driver talks to the clock through the start, restart, byte and stop
// primitives of a bus master rather than through whole transactions, so that
// a failure at any step can be followed by a stop that leaves the bus idle.
// Every transaction ends with exactly one stop.
//
// The seven time keeping registers are stored in binary-coded decimal; the
// DateTime type holds them decoded.
//
// **Datasheet:** https://www.analog.com/media/en/technical-documentation/data-sheets/DS1307.pdf
package ds1307
