// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// boron runs the radiation exposure experiment: it keeps time on a DS1307
// clock over a bit-banged I²C bus, logs geiger counter readings and moves
// the sample servos on schedule.
package main

import (
	"context"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var (
	opts = struct {
		scl, sda       string
		speed          string
		dir            string
		redis, prefix  string
		mqtt           string
		uart           string
		baud           int
		window         int
		powerA, powerB string
		red, blue      string
		verbose        bool
	}{}

	rootCmd = &cobra.Command{
		Use:           "boron",
		Short:         "Radiation exposure experiment controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.Level = logrus.DebugLevel
			}
		},
	}
)

func init() {
	log.Formatter = new(logrus.TextFormatter)
	log.Out = colorable.NewColorableStdout()
	log.Level = logrus.InfoLevel

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.scl, "scl", "GPIO3", "I²C clock pin")
	f.StringVar(&opts.sda, "sda", "GPIO2", "I²C data pin")
	f.StringVar(&opts.speed, "speed", "100kHz", "I²C bus speed")
	f.StringVar(&opts.dir, "dir", ".", "directory holding the time stamps and the data log")
	f.StringVar(&opts.redis, "redis", "", "redis server address; when set it replaces --dir")
	f.StringVar(&opts.prefix, "prefix", "boron:", "redis key prefix")
	f.StringVar(&opts.mqtt, "mqtt", "", "mqtt broker URL receiving a copy of the stamps and the log, e.g. mqtt://host:1883/lab/boron")
	f.StringVar(&opts.uart, "uart", "/dev/ttyS0", "geiger counter serial port")
	f.IntVar(&opts.baud, "baud", 9600, "geiger counter baud rate")
	f.IntVar(&opts.window, "window", 30, "geiger samples per reading")
	f.StringVar(&opts.powerA, "power-a", "GPIO17", "servo power driver A pin")
	f.StringVar(&opts.powerB, "power-b", "GPIO27", "servo power driver B pin")
	f.StringVar(&opts.red, "red", "GPIO12", "servo PWM channel red pin")
	f.StringVar(&opts.blue, "blue", "GPIO13", "servo PWM channel blue pin")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(getCmd, setCmd, logCmd, moveCmd, runCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
