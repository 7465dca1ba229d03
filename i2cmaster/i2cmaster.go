// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// State is the position of the Controller in a bus transaction.
type State uint8

const (
	Idle State = iota
	Started
	ByteInFlight
	AwaitingAck
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Started:
		return "Started"
	case ByteInFlight:
		return "ByteInFlight"
	case AwaitingAck:
		return "AwaitingAck"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Outcome is the result of transmitting one byte.
type Outcome uint8

const (
	Acknowledged Outcome = iota
	NotAcknowledged
	// CollisionFailure is returned along with ErrCollisionExceeded.
	CollisionFailure
)

func (o Outcome) String() string {
	switch o {
	case Acknowledged:
		return "ACK"
	case NotAcknowledged:
		return "NACK"
	case CollisionFailure:
		return "Collision"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Opts holds the configuration options for the Controller.
type Opts struct {
	// Clock is the instruction clock feeding the baud rate generator.
	Clock physic.Frequency
	// Speed is the SCL frequency. Default is 100kHz.
	Speed physic.Frequency
	// MaxPolls is the number of times a hardware flag is polled before giving
	// up with ErrSignalTimeout. Default is 100.
	MaxPolls int
	// MaxCollisionRetries is the number of times a byte is re-asserted after a
	// write collision. Default is 3.
	MaxCollisionRetries int
	// CollisionBackoff is the pause before re-asserting a collided byte.
	CollisionBackoff time.Duration
	// PollInterval is the pause between two polls of a hardware flag.
	PollInterval time.Duration
	// Sleep blocks for the given duration. It is used for every protocol delay
	// and defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts is the recommended default options, matching a 16MHz
// instruction clock and a standard mode bus.
var DefaultOpts = Opts{
	Clock:               16 * physic.MegaHertz,
	Speed:               100 * physic.KiloHertz,
	MaxPolls:            100,
	MaxCollisionRetries: 3,
	CollisionBackoff:    time.Millisecond,
	PollInterval:        time.Microsecond,
	Sleep:               time.Sleep,
}

// Controller is a single-master I²C bus driver.
//
// Controller has no lock: a whole transaction, from Start to Stop, must be
// issued by a single caller. Every Start must be paired with a Stop before
// another caller uses the bus.
type Controller struct {
	hw    Hardware
	opts  Opts
	state State
}

// New configures hw as a bus master and returns a Controller driving it. The
// Opts can be nil.
func New(hw Hardware, opts *Opts) (*Controller, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Clock <= 0 {
		o.Clock = DefaultOpts.Clock
	}
	if o.Speed <= 0 {
		o.Speed = DefaultOpts.Speed
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultOpts.MaxPolls
	}
	if o.MaxCollisionRetries < 0 {
		o.MaxCollisionRetries = DefaultOpts.MaxCollisionRetries
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	c := &Controller{hw: hw, opts: o}
	if err := c.configure(o.Speed); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns the current bus state.
func (c *Controller) State() State {
	return c.state
}

// Start asserts a start condition, taking the bus.
func (c *Controller) Start() error {
	if c.state != Idle && c.state != Stopped {
		return &OpError{Op: "start", Err: ErrInvalidState}
	}
	return c.condition("start", StartBit)
}

// Restart asserts a repeated start condition, typically to switch from
// writing to reading without releasing the bus.
func (c *Controller) Restart() error {
	if c.state != Started {
		return &OpError{Op: "restart", Err: ErrInvalidState}
	}
	return c.condition("restart", RestartBit)
}

func (c *Controller) condition(op string, bit Control) error {
	c.hw.ClearPending()
	c.hw.ClearStatus(WriteCollision)
	c.hw.SetControl(bit)
	// The bus is considered held as soon as the sequence is requested, so a
	// failed start still needs a stop.
	c.state = Started
	if !c.poll(func() bool { return c.hw.Control()&bit == 0 && c.hw.Pending() }) {
		return &OpError{Op: op, Err: ErrSignalTimeout}
	}
	return nil
}

// WriteData transmits b and returns the acknowledge from the slave.
//
// A write collision is retried up to MaxCollisionRetries times after which
// CollisionFailure and ErrCollisionExceeded are returned.
func (c *Controller) WriteData(b byte) (Outcome, error) {
	if c.state != Started {
		return NotAcknowledged, &OpError{Op: "write", Err: ErrInvalidState}
	}
	defer func() { c.state = Started }()
	c.hw.ClearPending()
	if !c.poll(func() bool { return c.hw.Status()&TransmitFull == 0 }) {
		return NotAcknowledged, &OpError{Op: "write", Err: ErrSignalTimeout}
	}

	c.state = ByteInFlight
	c.hw.Transmit(b)
	for retries := 0; c.hw.Status()&WriteCollision != 0; retries++ {
		if retries == c.opts.MaxCollisionRetries {
			c.hw.ClearStatus(WriteCollision)
			return CollisionFailure, &OpError{Op: "write", Err: ErrCollisionExceeded}
		}
		c.opts.Sleep(c.opts.CollisionBackoff)
		c.hw.ClearStatus(WriteCollision)
		c.hw.Transmit(b)
	}
	if !c.poll(func() bool { return c.hw.Status()&TransmitFull == 0 }) {
		return NotAcknowledged, &OpError{Op: "write", Err: ErrSignalTimeout}
	}

	c.state = AwaitingAck
	if !c.poll(c.hw.Pending) {
		return NotAcknowledged, &OpError{Op: "ack", Err: ErrSignalTimeout}
	}
	if c.hw.Status()&AckStat != 0 {
		return NotAcknowledged, nil
	}
	return Acknowledged, nil
}

// SendAck emits the master acknowledge after a received byte: ACK when nack
// is false to ask for more data, NACK to end the read.
//
// The sequence is best effort. A slave cannot be recovered mid-read so a
// timeout is not reported; the following Stop resets the bus.
func (c *Controller) SendAck(nack bool) {
	if c.state != Started {
		return
	}
	c.hw.ClearPending()
	if nack {
		c.hw.SetControl(AckDataBit)
	} else {
		c.hw.ClearControl(AckDataBit)
	}
	c.opts.Sleep(time.Microsecond)
	c.hw.SetControl(AckBit)
	if c.poll(func() bool { return c.hw.Control()&AckBit == 0 }) {
		c.poll(c.hw.Pending)
	}
}

// ReadData receives one byte from the slave. last marks the final byte of the
// read, which the master must NACK.
//
// A receive that does not complete within the poll budget returns
// ErrSignalTimeout, never a data byte.
func (c *Controller) ReadData(last bool) (byte, error) {
	if c.state != Started {
		return 0, &OpError{Op: "read", Err: ErrInvalidState}
	}
	defer func() { c.state = Started }()
	c.hw.ClearPending()
	if last {
		c.hw.SetControl(AckDataBit)
	} else {
		c.hw.ClearControl(AckDataBit)
	}
	c.opts.Sleep(time.Microsecond)
	c.state = ByteInFlight
	c.hw.SetControl(ReceiveBit)
	if !c.poll(func() bool { return c.hw.Control()&ReceiveBit == 0 }) {
		return 0, &OpError{Op: "read", Err: ErrSignalTimeout}
	}
	b := c.hw.Receive()
	if c.hw.Status()&Overflow != 0 {
		b = c.hw.Receive()
		c.hw.ClearStatus(Overflow)
	}
	return b, nil
}

// Stop asserts a stop condition, releasing the bus.
//
// The state machine is reset even when the peripheral does not confirm the
// stop in time; the timeout is still returned.
func (c *Controller) Stop() error {
	c.hw.ClearPending()
	c.hw.SetControl(StopBit)
	ok := c.poll(func() bool { return c.hw.Control()&StopBit == 0 && c.hw.Pending() })
	c.state = Stopped
	if !ok {
		return &OpError{Op: "stop", Err: ErrSignalTimeout}
	}
	return nil
}

// poll checks cond up to MaxPolls times.
func (c *Controller) poll(cond func() bool) bool {
	for i := 0; i < c.opts.MaxPolls; i++ {
		if cond() {
			return true
		}
		c.opts.Sleep(c.opts.PollInterval)
	}
	return cond()
}

func (c *Controller) configure(speed physic.Frequency) error {
	brg, err := BaudDivisor(c.opts.Clock, speed)
	if err != nil {
		return err
	}
	if err := c.hw.Configure(brg); err != nil {
		return errors.Join(fmt.Errorf("i2cmaster: could not configure peripheral"), err)
	}
	c.opts.Speed = speed
	return nil
}
