// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/boron/ds1307"
	"github.com/GermanBionicSystems/boron/geiger"
	"github.com/GermanBionicSystems/boron/servo"
	"github.com/GermanBionicSystems/boron/store"
)

const endMessage = "\n\nEnd Experiment!!!"

var (
	motor int

	getCmd = &cobra.Command{
		Use:   "get",
		Short: "Print the time of the clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rtc, bus, err := openRTC()
			if err != nil {
				return err
			}
			defer bus.Halt()
			st, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			dt, err := newSoftClock(rtc, st, nil).Time()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dt)
			return nil
		},
	}

	setCmd = &cobra.Command{
		Use:   "set <\"YYYY-MM-DD hh:mm:ss\"|now>",
		Short: "Set the clock and the last known time stamp",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := parseTime(strings.Join(args, " "), time.Now)
			if err != nil {
				return err
			}
			rtc, bus, err := openRTC()
			if err != nil {
				return err
			}
			defer bus.Halt()
			if err := rtc.SetTime(dt); err != nil {
				return err
			}
			st, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			log.WithField("time", dt).Info("clock set")
			return st.WriteStamp(store.TimeStamp, dt)
		},
	}

	logCmd = &cobra.Command{
		Use:   "log",
		Short: "Take one geiger reading and append it to the data log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rtc, bus, err := openRTC()
			if err != nil {
				return err
			}
			defer bus.Halt()
			counter, port, err := openGeiger()
			if err != nil {
				return err
			}
			defer port.Close()
			st, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			cpm, err := counter.Read()
			if err != nil {
				return err
			}
			_, err = record(newSoftClock(rtc, st, nil), st, cpm, motor)
			return err
		},
	}

	moveCmd = &cobra.Command{
		Use:   "move <increment>",
		Short: "Run one servo increment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid increment %q", args[0])
			}
			d, err := openServos()
			if err != nil {
				return err
			}
			defer d.Halt()
			log.WithField("increment", n).Info("moving")
			return d.Run(n)
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the experiment until its end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rtc, bus, err := openRTC()
			if err != nil {
				return err
			}
			defer bus.Halt()
			d, err := openServos()
			if err != nil {
				return err
			}
			defer d.Halt()
			counter, port, err := openGeiger()
			if err != nil {
				return err
			}
			defer port.Close()
			st, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			clk := newSoftClock(rtc, st, nil)
			now, err := clk.Time()
			if err != nil {
				return err
			}
			start, err := store.LoadOrInit(st, store.StartStamp, now)
			if err != nil {
				return err
			}
			log.WithField("start", start).Info("experiment started")
			m := &mission{st: st, servos: d, sched: servo.NewSchedule(), start: start}
			if err := m.step(now); err != nil {
				return err
			}
			for !m.done {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				cpm, err := counter.Read()
				if err != nil {
					return err
				}
				now, err := record(clk, st, cpm, m.sched.Current())
				if err != nil {
					return err
				}
				if err := m.step(now); err != nil {
					return err
				}
			}
			return nil
		},
	}
)

func init() {
	logCmd.Flags().IntVar(&motor, "motor", -1, "last servo increment to record")
}

// record appends one reading to the data log and saves its time as the last
// known time.
func record(c *softClock, st store.Store, cpm, motor int) (ds1307.DateTime, error) {
	dt, err := c.Time()
	if err != nil {
		return ds1307.DateTime{}, err
	}
	log.WithFields(logrus.Fields{"time": dt, "cpm": cpm, "rate": geiger.Rate(cpm), "motor": motor}).Info("reading")
	if err := st.WriteStamp(store.TimeStamp, dt); err != nil {
		return ds1307.DateTime{}, err
	}
	return dt, st.AppendLog(store.Record(dt, cpm, motor))
}

func parseTime(s string, now func() time.Time) (ds1307.DateTime, error) {
	if s == "now" {
		return ds1307.FromTime(now().UTC())
	}
	return ds1307.ParseStamp(s)
}

// mission moves the servos as the days pass.
type mission struct {
	st     store.Store
	servos *servo.Driver
	sched  *servo.Schedule
	start  ds1307.DateTime
	done   bool
}

func (m *mission) step(now ds1307.DateTime) error {
	elapsed := servo.ElapsedDays(m.start, now)
	ran, err := m.sched.Step(m.servos, elapsed)
	for _, n := range ran {
		log.WithFields(logrus.Fields{"increment": n, "day": elapsed}).Info("servo moved")
	}
	if err != nil {
		return err
	}
	if servo.Finished(elapsed) {
		log.WithField("day", elapsed).Info("experiment finished")
		m.done = true
		return m.st.AppendLog(endMessage)
	}
	return nil
}
