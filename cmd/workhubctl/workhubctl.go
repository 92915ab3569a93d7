// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// workhubctl is the control client for the WorkHub device stores.
package main

import (
	"os"

	"github.com/urfave/cli"
	"github.com/workhubapp/workhub/ctrlengine"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/release"
	"github.com/workhubapp/workhub/util"
	"github.com/workhubapp/workhub/util/interrupt"
)

func init() {
	cli.VersionPrinter = release.PrintVersion
}

func workhubctlMain() error {
	defer log.Flush()

	ce := ctrlengine.New()
	defer ce.Close()

	interrupt.AddInterruptHandler(func() {
		log.Infof("gracefully shutting down...")
		ce.Close()
	})

	go func() {
		if err := ce.Start(os.Args); err != nil {
			interrupt.ShutdownChannel <- err
			return
		}
		interrupt.ShutdownChannel <- nil
	}()

	return <-interrupt.ShutdownChannel
}

func main() {
	// work around defer not working after os.Exit()
	if err := workhubctlMain(); err != nil {
		util.Fatal(err)
	}
}
