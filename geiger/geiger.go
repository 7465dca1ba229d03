// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package geiger counts the pulses reported by a geiger counter board over a
// serial line.
//
// The board sends one character per sampling period: '1' when a pulse was
// detected during the period, anything else otherwise.
package geiger

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
)

// Pulse is the sample value of a period with a detection.
const Pulse = '1'

// Opts holds the counter options.
type Opts struct {
	// Window is the number of samples per reading.
	Window int
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Window: 30,
}

// Counter turns the sample stream into counts per minute.
type Counter struct {
	r   io.Reader
	buf []byte
}

// New returns a Counter reading samples from r.
func New(r io.Reader, opts *Opts) (*Counter, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Window <= 0 {
		return nil, fmt.Errorf("geiger: invalid window %d", opts.Window)
	}
	return &Counter{r: r, buf: make([]byte, opts.Window)}, nil
}

// Read blocks until a full window of samples was received and returns the
// counts per minute over it.
func (c *Counter) Read() (int, error) {
	if _, err := io.ReadFull(c.r, c.buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, fmt.Errorf("geiger: %w", err)
	}
	return CPM(c.buf), nil
}

// CPM scales the pulses in samples to counts per minute, each sample being
// one second.
func CPM(samples []byte) int {
	if len(samples) == 0 {
		return 0
	}
	n := 0
	for _, s := range samples {
		if s == Pulse {
			n++
		}
	}
	return n * 60 / len(samples)
}

// Rate converts counts per minute to a pulse frequency.
func Rate(cpm int) physic.Frequency {
	return physic.Frequency(cpm) * physic.Hertz / 60
}
