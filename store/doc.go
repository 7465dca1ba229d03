// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package store persists the experiment time stamps and the data log.
//
// Two time stamps are kept: the last known time, used when the real-time
// clock does not answer, and the start of the experiment, from which the
// servo schedule is computed. Dir keeps them as files on a removable card
// the way the data logger always did; Redis keeps them on a server.
package store
