// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// GPIO is a Hardware that bit-bangs the bus on two pins.
//
// The lines are driven open drain: a low level is an output, a high level is
// an input with pull-up so a slave can stretch the clock or pull SDA down.
// Sequences run synchronously inside SetControl and Transmit. A slave holding
// SCL low is waited for up to MaxPolls half periods; past that the sequence
// is left incomplete and the Controller times out.
type GPIO struct {
	mu    sync.Mutex
	scl   gpio.PinIO
	sda   gpio.PinIO
	clock physic.Frequency
	half  time.Duration
	sleep func(time.Duration)
	polls int

	control Control
	status  Status
	pending bool
	rcv     byte
}

// NewGPIO returns a bit-banged Hardware on scl and sda. clock is the reference
// used to interpret the baud rate generator value, usually DefaultOpts.Clock.
func NewGPIO(scl, sda gpio.PinIO, clock physic.Frequency) (*GPIO, error) {
	if scl == nil || sda == nil {
		return nil, errors.New("i2cmaster: scl and sda pins are required")
	}
	if clock <= 0 {
		clock = DefaultOpts.Clock
	}
	return &GPIO{scl: scl, sda: sda, clock: clock, sleep: time.Sleep, polls: DefaultOpts.MaxPolls}, nil
}

func (g *GPIO) String() string {
	return fmt.Sprintf("GPIO{%s, %s}", g.scl, g.sda)
}

// Configure implements Hardware. It releases both lines.
func (g *GPIO) Configure(brg uint16) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	fcy := int64(g.clock / physic.Hertz)
	ticks := int64(brg) + 1 + fcy/10000000
	g.half = time.Duration(ticks*int64(time.Second)/fcy) / 2
	if err := g.release(g.sda); err != nil {
		return err
	}
	if err := g.release(g.scl); err != nil {
		return err
	}
	g.control = 0
	g.status = 0
	return nil
}

// Control implements Hardware.
func (g *GPIO) Control() Control {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.control
}

// SetControl implements Hardware. Sequence bits run to completion before
// returning.
func (g *GPIO) SetControl(c Control) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.control |= c
	switch {
	case c&StartBit != 0:
		if g.start() {
			g.done(StartBit)
		}
	case c&RestartBit != 0:
		_ = g.release(g.sda)
		g.sleep(g.half)
		if g.start() {
			g.done(RestartBit)
		}
	case c&StopBit != 0:
		_ = g.sda.Out(gpio.Low)
		g.sleep(g.half)
		if !g.releaseSCL() {
			return
		}
		g.sleep(g.half)
		_ = g.release(g.sda)
		g.sleep(g.half)
		g.done(StopBit)
	case c&ReceiveBit != 0:
		if g.receive() {
			g.done(ReceiveBit)
		}
	case c&AckBit != 0:
		if _, ok := g.writeBit(g.control&AckDataBit == 0); ok {
			g.done(AckBit)
		}
	}
}

// ClearControl implements Hardware.
func (g *GPIO) ClearControl(c Control) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.control &^= c
}

// Status implements Hardware.
func (g *GPIO) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// ClearStatus implements Hardware.
func (g *GPIO) ClearStatus(s Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status &^= s
}

// Transmit implements Hardware. Losing arbitration on any bit sets
// WriteCollision and releases SDA. A clock held low past the stretch budget
// leaves TransmitFull set.
func (g *GPIO) Transmit(b byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status&TransmitFull != 0 {
		g.status |= WriteCollision
		return
	}
	g.status |= TransmitFull
	for i := 7; i >= 0; i-- {
		high := b&(1<<uint(i)) != 0
		won, ok := g.writeBit(!high)
		if !ok {
			return
		}
		if !won {
			_ = g.release(g.sda)
			g.status = g.status&^TransmitFull | WriteCollision
			return
		}
	}
	// Acknowledge clock: the slave pulls SDA low to ACK.
	_ = g.release(g.sda)
	g.sleep(g.half)
	if !g.releaseSCL() {
		return
	}
	g.sleep(g.half)
	if g.sda.Read() == gpio.High {
		g.status |= AckStat
	} else {
		g.status &^= AckStat
	}
	_ = g.scl.Out(gpio.Low)
	g.status &^= TransmitFull
	g.pending = true
}

// Receive implements Hardware.
func (g *GPIO) Receive() byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status &^= ReceiveFull
	return g.rcv
}

// Pending implements Hardware.
func (g *GPIO) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// ClearPending implements Hardware.
func (g *GPIO) ClearPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = false
}

func (g *GPIO) done(c Control) {
	g.control &^= c
	g.pending = true
}

// start pulls SDA low while SCL is high, then takes SCL low.
func (g *GPIO) start() bool {
	if !g.releaseSCL() {
		return false
	}
	g.sleep(g.half)
	_ = g.sda.Out(gpio.Low)
	g.sleep(g.half)
	_ = g.scl.Out(gpio.Low)
	return true
}

// writeBit clocks one bit out; low means a 0 bit, which is also an ACK. won
// is false when SDA was released but read back low, meaning another master
// owns the bus. ok is false when the clock stayed stretched.
func (g *GPIO) writeBit(low bool) (won, ok bool) {
	if low {
		_ = g.sda.Out(gpio.Low)
	} else {
		_ = g.release(g.sda)
	}
	g.sleep(g.half)
	if !g.releaseSCL() {
		return false, false
	}
	g.sleep(g.half)
	lost := !low && g.sda.Read() == gpio.Low
	_ = g.scl.Out(gpio.Low)
	return !lost, true
}

func (g *GPIO) receive() bool {
	_ = g.release(g.sda)
	var b byte
	for i := 0; i < 8; i++ {
		g.sleep(g.half)
		if !g.releaseSCL() {
			return false
		}
		g.sleep(g.half)
		b <<= 1
		if g.sda.Read() == gpio.High {
			b |= 1
		}
		_ = g.scl.Out(gpio.Low)
	}
	if g.status&ReceiveFull != 0 {
		g.status |= Overflow
	}
	g.rcv = b
	g.status |= ReceiveFull
	return true
}

// releaseSCL lets SCL go high and waits while a slave stretches the clock.
func (g *GPIO) releaseSCL() bool {
	_ = g.release(g.scl)
	for i := 0; i < g.polls; i++ {
		if g.scl.Read() == gpio.High {
			return true
		}
		g.sleep(g.half)
	}
	return g.scl.Read() == gpio.High
}

func (g *GPIO) release(p gpio.PinIO) error {
	return p.In(gpio.PullUp, gpio.NoEdge)
}

var _ Hardware = &GPIO{}
