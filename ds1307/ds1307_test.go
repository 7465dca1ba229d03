// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1307

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/boron/i2cmaster"
	"github.com/GermanBionicSystems/boron/i2cmaster/i2cmastertest"
)

func noSleep(time.Duration) {}

// setup returns a clock on a simulated bus holding regs in its time keeping
// registers.
func setup(t *testing.T, regs ...byte) (*Dev, *i2cmastertest.Sim, *i2cmastertest.Registers) {
	data := make([]byte, 8)
	copy(data, regs)
	target := &i2cmastertest.Registers{Addr: 0x68, Data: data}
	sim := &i2cmastertest.Sim{Targets: []i2cmastertest.Target{target}}
	opts := i2cmaster.DefaultOpts
	opts.Sleep = noSleep
	c, err := i2cmaster.New(sim, &opts)
	if err != nil {
		t.Fatal(err)
	}
	return New(c, &Opts{Sleep: noSleep}), sim, target
}

func TestGetTime(t *testing.T) {
	d, sim, _ := setup(t, 0x00, 0x35, 0x08, 0x02, 0x26, 0x05, 0x15)
	dt, err := d.GetTime()
	if err != nil {
		t.Fatal(err)
	}
	want := DateTime{Second: 0, Minute: 35, Hour: 8, Weekday: 2, Day: 26, Month: 5, Year: 15}
	if dt != want {
		t.Errorf("got %+v expected %+v", dt, want)
	}
	events := []string{
		"S", "W D0 ACK", "W 00 ACK", "Sr", "W D1 ACK",
		"R 00", "ACK", "R 35", "ACK", "R 08", "ACK", "R 02", "ACK",
		"R 26", "ACK", "R 05", "ACK", "R 15", "NACK", "P",
	}
	if diff := cmp.Diff(events, sim.Events); diff != "" {
		t.Errorf("bus traffic mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTimeRegisterModes(t *testing.T) {
	var tests = []struct {
		name    string
		regs    []byte
		hour    uint8
		second  uint8
		wantErr bool
	}{
		{"24h", []byte{0x12, 0x00, 0x23, 0x01, 0x01, 0x01, 0x00}, 23, 12, false},
		{"clock halted", []byte{0xC5, 0x00, 0x10, 0x01, 0x01, 0x01, 0x00}, 10, 45, false},
		{"12h midnight", []byte{0x00, 0x00, 0x52, 0x01, 0x01, 0x01, 0x00}, 0, 0, false},
		{"12h noon", []byte{0x00, 0x00, 0x72, 0x01, 0x01, 0x01, 0x00}, 12, 0, false},
		{"12h pm", []byte{0x00, 0x00, 0x69, 0x01, 0x01, 0x01, 0x00}, 21, 0, false},
		{"bad month", []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x13, 0x00}, 0, 0, true},
		{"bad minute", []byte{0x00, 0x60, 0x00, 0x01, 0x01, 0x01, 0x00}, 0, 0, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, _, _ := setup(t, test.regs...)
			dt, err := d.GetTime()
			if test.wantErr {
				var rerr *RangeError
				if !errors.As(err, &rerr) {
					t.Fatalf("expected *RangeError, got %v", err)
				}
				if dt != (DateTime{}) {
					t.Errorf("got %+v expected a zero value", dt)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if dt.Hour != test.hour || dt.Second != test.second {
				t.Errorf("got %02d:xx:%02d expected %02d:xx:%02d", dt.Hour, dt.Second, test.hour, test.second)
			}
		})
	}
}

func TestSetTime(t *testing.T) {
	d, sim, target := setup(t)
	dt := DateTime{Second: 59, Minute: 59, Hour: 23, Weekday: 6, Day: 31, Month: 12, Year: 99}
	if err := d.SetTime(dt); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x59, 0x59, 0x23, 0x06, 0x31, 0x12, 0x99, 0x00}
	if diff := cmp.Diff(want, target.Data); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}
	if sim.Stops != 1 {
		t.Errorf("%d stops expected 1", sim.Stops)
	}
	got, err := d.GetTime()
	if err != nil {
		t.Fatal(err)
	}
	if got != dt {
		t.Errorf("read back %+v expected %+v", got, dt)
	}
}

func TestSetTimeInvalid(t *testing.T) {
	d, sim, _ := setup(t)
	err := d.SetTime(DateTime{Hour: 24, Day: 1, Month: 1})
	var rerr *RangeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RangeError, got %v", err)
	}
	if rerr.Field != "hour" || rerr.Value != 24 {
		t.Errorf("got %s=%d", rerr.Field, rerr.Value)
	}
	if len(sim.Events) != 0 {
		t.Errorf("unexpected bus traffic %v", sim.Events)
	}
}

func TestNoResponse(t *testing.T) {
	var tests = []struct {
		name   string
		fault  func(*i2cmastertest.Sim, *i2cmastertest.Registers)
		busErr error
	}{
		{"address", func(_ *i2cmastertest.Sim, r *i2cmastertest.Registers) { r.NackAddress = true }, nil},
		{"pointer", func(_ *i2cmastertest.Sim, r *i2cmastertest.Registers) { r.NackPointer = true }, nil},
		{"start", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallStart = true }, i2cmaster.ErrSignalTimeout},
		{"restart", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallRestart = true }, i2cmaster.ErrSignalTimeout},
		{"receive", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallReceive = true }, i2cmaster.ErrSignalTimeout},
		{"ack", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallAck = true }, i2cmaster.ErrSignalTimeout},
		{"collision", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.Collisions = -1 }, i2cmaster.ErrCollisionExceeded},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, sim, target := setup(t, 0x00, 0x35, 0x08, 0x02, 0x26, 0x05, 0x15)
			test.fault(sim, target)
			dt, err := d.GetTime()
			if !errors.Is(err, ErrNoResponse) {
				t.Fatalf("expected ErrNoResponse, got %v", err)
			}
			if test.busErr != nil {
				var berr *BusFailureError
				if !errors.As(err, &berr) {
					t.Errorf("expected *BusFailureError, got %v", err)
				}
				if !errors.Is(err, test.busErr) {
					t.Errorf("expected %v, got %v", test.busErr, err)
				}
			}
			if dt != (DateTime{}) {
				t.Errorf("got %+v expected a zero value", dt)
			}
			if sim.Stops != 1 {
				t.Errorf("%d stops expected exactly 1", sim.Stops)
			}
		})
	}
}

func TestSetTimeNoResponse(t *testing.T) {
	d, sim, target := setup(t)
	target.NackAddress = true
	dt := DateTime{Minute: 1, Day: 1, Month: 1}
	if err := d.SetTime(dt); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", err)
	}
	want := []string{"S", "W D0 NACK", "P"}
	if diff := cmp.Diff(want, sim.Events); diff != "" {
		t.Errorf("bus traffic mismatch (-want +got):\n%s", diff)
	}
}

func TestSetTimeFailures(t *testing.T) {
	var tests = []struct {
		name   string
		fault  func(*i2cmastertest.Sim, *i2cmastertest.Registers)
		busErr error
	}{
		{"pointer", func(_ *i2cmastertest.Sim, r *i2cmastertest.Registers) { r.NackPointer = true }, nil},
		{"start", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallStart = true }, i2cmaster.ErrSignalTimeout},
		{"ack", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallAck = true }, i2cmaster.ErrSignalTimeout},
		{"collision", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.Collisions = -1 }, i2cmaster.ErrCollisionExceeded},
		// Address and pointer go through, the first data byte never leaves.
		{"data", func(s *i2cmastertest.Sim, _ *i2cmastertest.Registers) { s.StallTransmit = 3 }, i2cmaster.ErrSignalTimeout},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, sim, target := setup(t)
			test.fault(sim, target)
			err := d.SetTime(DateTime{Minute: 1, Day: 1, Month: 1})
			if !errors.Is(err, ErrNoResponse) {
				t.Fatalf("expected ErrNoResponse, got %v", err)
			}
			if test.busErr != nil && !errors.Is(err, test.busErr) {
				t.Errorf("expected %v, got %v", test.busErr, err)
			}
			if sim.Stops != 1 {
				t.Errorf("%d stops expected exactly 1", sim.Stops)
			}
			if diff := cmp.Diff(make([]byte, 8), target.Data); diff != "" {
				t.Errorf("registers written (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNowSet(t *testing.T) {
	d, _, _ := setup(t)
	ref := time.Date(2016, time.October, 28, 22, 55, 52, 123, time.UTC)
	if err := d.Set(ref); err != nil {
		t.Fatal(err)
	}
	now, err := d.Now()
	if err != nil {
		t.Fatal(err)
	}
	if !now.Equal(ref.Truncate(time.Second)) {
		t.Errorf("got %s expected %s", now, ref)
	}
	if err := d.Set(time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Error("expected an error for a year before 2000")
	}
	if len(d.String()) == 0 {
		t.Error("invalid String() result")
	}
	if err := d.Halt(); err != nil {
		t.Error(err)
	}
}

func TestStamp(t *testing.T) {
	dt := DateTime{Second: 52, Minute: 55, Hour: 22, Weekday: 5, Day: 28, Month: 10, Year: 16}
	s := dt.String()
	if s != "2016-10-28 22:55:52" {
		t.Fatalf("stamp %q", s)
	}
	got, err := ParseStamp(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != dt {
		t.Errorf("got %+v expected %+v", got, dt)
	}
	for _, bad := range []string{"", "2016-13-01 00:00:00", "1999-01-01 00:00:00", "28/10/2016"} {
		if _, err := ParseStamp(bad); err == nil {
			t.Errorf("ParseStamp(%q) expected an error", bad)
		}
	}
}
