// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package boron is a container for the radiation exposure experiment
// controller.
//
// i2cmaster drives an I²C bus at the signalling level, ds1307 keeps time on
// top of it, geiger and servo handle the sensors and actuators, store
// persists the time stamps and the data log and cmd/boron ties them
// together.
package boron
