// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cmastertest is meant to be used to test code using
// i2cmaster.Controller without a physical bus.
//
// Sim implements i2cmaster.Hardware and completes every sequence instantly,
// unless told to stall it. It records the bus traffic as a list of events
// that tests can compare against.
package i2cmastertest

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/boron/i2cmaster"
)

// Target is a simulated slave device.
type Target interface {
	// Address returns the 7 bit address the target answers to.
	Address() uint16
	// Begin is called when the target is addressed. It returns false to NACK
	// the address byte.
	Begin(read bool) bool
	// Write is called for every byte written to the target and returns the
	// acknowledge.
	Write(b byte) bool
	// Read returns the next byte sent by the target.
	Read() byte
}

// Sim simulates the peripheral registers of an I²C master.
//
// Modify its members to simulate hardware faults.
type Sim struct {
	sync.Mutex
	Targets []Target

	// StallStart, StallRestart and StallStop keep the corresponding sequence
	// from ever completing.
	StallStart   bool
	StallRestart bool
	StallStop    bool
	// StallTransmit keeps the transmit buffer full after the Nth transmitted
	// byte (1-based) when not zero.
	StallTransmit int
	// StallAck keeps the interrupt flag low after the address or data byte
	// was shifted out.
	StallAck bool
	// StallReceive keeps reception from completing.
	StallReceive bool
	// Collisions is the number of transmissions that report a write
	// collision. -1 means every transmission.
	Collisions int
	// Overrun makes the next received byte set the overflow flag.
	Overrun bool

	// Events is the recorded bus traffic: "S", "Sr", "P", "W xx ACK",
	// "W xx NACK", "W xx COL", "R xx", "ACK" and "NACK".
	Events []string
	// Transmits counts the writes to the transmit buffer, including the
	// collided ones.
	Transmits int
	// Stops counts the stop requests.
	Stops int
	// BRG is the last configured baud rate generator value.
	BRG uint16

	control i2cmaster.Control
	status  i2cmaster.Status
	pending bool
	rcv     byte
	target  Target
	reading bool
	address bool
}

// Configure implements i2cmaster.Hardware.
func (s *Sim) Configure(brg uint16) error {
	s.Lock()
	defer s.Unlock()
	s.BRG = brg
	return nil
}

// Control implements i2cmaster.Hardware.
func (s *Sim) Control() i2cmaster.Control {
	s.Lock()
	defer s.Unlock()
	return s.control
}

// SetControl implements i2cmaster.Hardware.
func (s *Sim) SetControl(c i2cmaster.Control) {
	s.Lock()
	defer s.Unlock()
	s.control |= c
	switch {
	case c&i2cmaster.StartBit != 0:
		s.condition("S", i2cmaster.StartBit, s.StallStart)
	case c&i2cmaster.RestartBit != 0:
		s.condition("Sr", i2cmaster.RestartBit, s.StallRestart)
	case c&i2cmaster.StopBit != 0:
		s.Stops++
		s.Events = append(s.Events, "P")
		s.target = nil
		s.address = false
		if !s.StallStop {
			s.done(i2cmaster.StopBit)
		}
	case c&i2cmaster.ReceiveBit != 0:
		if s.StallReceive {
			return
		}
		var b byte = 0xFF
		if s.target != nil && s.reading {
			b = s.target.Read()
		}
		if s.Overrun {
			s.Overrun = false
			s.status |= i2cmaster.Overflow
		}
		s.rcv = b
		s.status |= i2cmaster.ReceiveFull
		s.Events = append(s.Events, fmt.Sprintf("R %02X", b))
		s.done(i2cmaster.ReceiveBit)
	case c&i2cmaster.AckBit != 0:
		if s.control&i2cmaster.AckDataBit != 0 {
			s.Events = append(s.Events, "NACK")
		} else {
			s.Events = append(s.Events, "ACK")
		}
		s.done(i2cmaster.AckBit)
	}
}

// ClearControl implements i2cmaster.Hardware.
func (s *Sim) ClearControl(c i2cmaster.Control) {
	s.Lock()
	defer s.Unlock()
	s.control &^= c
}

// Status implements i2cmaster.Hardware.
func (s *Sim) Status() i2cmaster.Status {
	s.Lock()
	defer s.Unlock()
	return s.status
}

// ClearStatus implements i2cmaster.Hardware.
func (s *Sim) ClearStatus(st i2cmaster.Status) {
	s.Lock()
	defer s.Unlock()
	s.status &^= st
}

// Transmit implements i2cmaster.Hardware.
func (s *Sim) Transmit(b byte) {
	s.Lock()
	defer s.Unlock()
	s.Transmits++
	if s.Collisions != 0 {
		if s.Collisions > 0 {
			s.Collisions--
		}
		s.status |= i2cmaster.WriteCollision
		s.Events = append(s.Events, fmt.Sprintf("W %02X COL", b))
		return
	}
	if s.StallTransmit != 0 && s.Transmits >= s.StallTransmit {
		s.status |= i2cmaster.TransmitFull
		return
	}
	ack := s.write(b)
	if ack {
		s.status &^= i2cmaster.AckStat
		s.Events = append(s.Events, fmt.Sprintf("W %02X ACK", b))
	} else {
		s.status |= i2cmaster.AckStat
		s.Events = append(s.Events, fmt.Sprintf("W %02X NACK", b))
	}
	s.status &^= i2cmaster.TransmitFull
	if !s.StallAck {
		s.pending = true
	}
}

// Receive implements i2cmaster.Hardware.
func (s *Sim) Receive() byte {
	s.Lock()
	defer s.Unlock()
	s.status &^= i2cmaster.ReceiveFull
	return s.rcv
}

// Pending implements i2cmaster.Hardware.
func (s *Sim) Pending() bool {
	s.Lock()
	defer s.Unlock()
	return s.pending
}

// ClearPending implements i2cmaster.Hardware.
func (s *Sim) ClearPending() {
	s.Lock()
	defer s.Unlock()
	s.pending = false
}

func (s *Sim) condition(event string, bit i2cmaster.Control, stall bool) {
	s.Events = append(s.Events, event)
	s.target = nil
	s.address = true
	if !stall {
		s.done(bit)
	}
}

func (s *Sim) done(bit i2cmaster.Control) {
	s.control &^= bit
	s.pending = true
}

// write routes b to the addressed target and returns the acknowledge.
func (s *Sim) write(b byte) bool {
	if s.address {
		s.address = false
		s.reading = b&1 != 0
		for _, t := range s.Targets {
			if t.Address() == uint16(b>>1) {
				if !t.Begin(s.reading) {
					return false
				}
				s.target = t
				return true
			}
		}
		return false
	}
	if s.target == nil || s.reading {
		return false
	}
	return s.target.Write(b)
}

var _ i2cmaster.Hardware = &Sim{}
