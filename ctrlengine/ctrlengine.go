// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ctrlengine implements the command engine for workhubctl.
package ctrlengine

import (
	"path/filepath"
	"sync"

	"github.com/urfave/cli"
	"github.com/workhubapp/workhub/config"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/keydb"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/msgdb"
	"github.com/workhubapp/workhub/util"
	"github.com/workhubapp/workhub/util/bzero"
	"github.com/workhubapp/workhub/util/descriptors"
)

// CtrlEngine abstracts a workhubctl command engine.
type CtrlEngine struct {
	mu         sync.Mutex // guards Close
	prepared   bool
	app        *cli.App
	cfg        *config.Config
	fds        *descriptors.Table
	keyDB      *keydb.KeyDB
	cache      *msgdb.MsgDB
	passphrase []byte
}

// New returns a new CtrlEngine.
func New() *CtrlEngine {
	var ce CtrlEngine
	ce.app = cli.NewApp()
	ce.app.Usage = "administer the WorkHub device key store, cache, and vault"
	ce.app.Version = def.Version
	ce.app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "homedir",
			Value: config.DefaultHomeDir(),
			Usage: "set home directory",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "configuration file (default: <homedir>/" + config.Filename + ")",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Value: "info",
			Usage: "logging level {trace, debug, info, warn, error, critical}",
		},
		cli.StringFlag{
			Name:  "logdir",
			Usage: "directory to log output (default: <homedir>/log)",
		},
		cli.BoolFlag{
			Name:  "logconsole",
			Usage: "enable logging to console",
		},
		descriptors.InputFDFlag,
		descriptors.OutputFDFlag,
		descriptors.StatusFDFlag,
		descriptors.PassphraseFDFlag,
	}
	ce.app.Before = ce.prepare
	iterationsFlag := cli.IntFlag{
		Name:  "iterations",
		Usage: "number of KDF iterations (default: from config)",
	}
	uidFlag := cli.StringFlag{
		Name:  "uid",
		Usage: "user ID",
	}
	ce.app.Commands = []cli.Command{
		{
			Name:  "db",
			Usage: "commands for the encrypted databases",
			Subcommands: []cli.Command{
				{
					Name:   "create",
					Usage:  "create new key database and cache",
					Flags: []cli.Flag{
						iterationsFlag,
						cli.BoolFlag{
							Name:  "generate",
							Usage: "generate a random passphrase and write it to output-fd",
						},
					},
					Action: ce.dbCreate,
				},
				{
					Name:   "rekey",
					Usage:  "rekey key database and cache",
					Flags:  []cli.Flag{iterationsFlag},
					Action: ce.dbRekey,
				},
			},
		},
		{
			Name:  "key",
			Usage: "commands for user key pairs",
			Subcommands: []cli.Command{
				{
					Name:   "create",
					Usage:  "create key pair of user ID, if necessary, and make it active",
					Flags:  []cli.Flag{uidFlag},
					Action: ce.keyCreate,
				},
				{
					Name:   "active",
					Usage:  "print active user ID",
					Action: ce.keyActive,
				},
				{
					Name:   "export",
					Usage:  "export public key of user ID (base64 SPKI DER)",
					Flags:  []cli.Flag{uidFlag},
					Action: ce.keyExport,
				},
				{
					Name:   "rotate",
					Usage:  "replace key pair of user ID",
					Flags:  []cli.Flag{uidFlag},
					Action: ce.keyRotate,
				},
			},
		},
		{
			Name:  "config",
			Usage: "commands for the configuration",
			Subcommands: []cli.Command{
				{
					Name:   "show",
					Usage:  "print effective configuration",
					Action: ce.configShow,
				},
			},
		},
		{
			Name:  "room",
			Usage: "commands for chat rooms",
			Subcommands: []cli.Command{
				{
					Name:      "id",
					Usage:     "print chat room ID of two users",
					ArgsUsage: "userA userB",
					Action:    ce.roomID,
				},
				{
					Name:      "cached",
					Usage:     "print number of cached messages of two users",
					ArgsUsage: "userA userB",
					Action:    ce.roomCached,
				},
			},
		},
		{
			Name:  "push",
			Usage: "commands for push notifications",
			Subcommands: []cli.Command{
				{
					Name:      "room",
					Usage:     "print chat room ID of push payload",
					ArgsUsage: "payload.json",
					Action:    ce.pushRoom,
				},
			},
		},
		{
			Name:  "vault",
			Usage: "commands for the encrypted file vault",
			Subcommands: []cli.Command{
				{
					Name:      "put",
					Usage:     "encrypt file into vault",
					ArgsUsage: "file",
					Flags: []cli.Flag{
						cli.StringFlag{
							Name:  "name",
							Usage: "name in vault (default: base name of file)",
						},
					},
					Action: ce.vaultPut,
				},
				{
					Name:      "get",
					Usage:     "write decrypted file from vault to output-fd",
					ArgsUsage: "name",
					Action:    ce.vaultGet,
				},
				{
					Name:   "list",
					Usage:  "list files in vault",
					Action: ce.vaultList,
				},
				{
					Name:      "delete",
					Usage:     "delete file from vault",
					ArgsUsage: "name",
					Action:    ce.vaultDelete,
				},
			},
		},
	}
	return &ce
}

// prepare loads the configuration, overrides it with the global flags,
// and initializes logging.
func (ce *CtrlEngine) prepare(c *cli.Context) error {
	if ce.prepared {
		return nil
	}
	homedir := c.GlobalString("homedir")
	configFile := c.GlobalString("config")
	if configFile == "" {
		configFile = filepath.Join(homedir, config.Filename)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if c.GlobalIsSet("homedir") {
		cfg.Home.Dir = homedir
	}
	if c.GlobalIsSet("loglevel") {
		cfg.Log.Level = c.GlobalString("loglevel")
	}
	if c.GlobalIsSet("logdir") {
		cfg.Log.Dir = c.GlobalString("logdir")
	}
	if c.GlobalBool("logconsole") {
		cfg.Log.Console = true
	}
	if err := util.CreateDirs(cfg.Home.Dir, cfg.LogDir()); err != nil {
		return err
	}
	err = log.Init(cfg.Log.Level, "wctl ", cfg.LogDir(), cfg.Log.Console)
	if err != nil {
		return err
	}
	ce.fds, err = descriptors.NewTable(c)
	if err != nil {
		return err
	}
	ce.cfg = cfg
	ce.prepared = true
	return nil
}

func (ce *CtrlEngine) iterations(c *cli.Context) int {
	if c.IsSet("iterations") {
		return c.Int("iterations")
	}
	return ce.cfg.Store.KDFIter
}

func (ce *CtrlEngine) keyDBName() string {
	return filepath.Join(ce.cfg.Home.Dir, def.KeyDBName)
}

func (ce *CtrlEngine) cacheDBName() string {
	return filepath.Join(ce.cfg.Home.Dir, def.CacheDBName)
}

func (ce *CtrlEngine) vaultDir() string {
	return filepath.Join(ce.cfg.Home.Dir, def.VaultDir)
}

// Start the CtrlEngine with the given command line arguments.
func (ce *CtrlEngine) Start(args []string) error {
	ce.app.Name = filepath.Base(args[0])
	return ce.app.Run(args)
}

// Close the underlying database and file descriptors of the CtrlEngine.
func (ce *CtrlEngine) Close() {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if ce.cache != nil {
		ce.cache.Close()
		ce.cache = nil
	}
	if ce.keyDB != nil {
		ce.keyDB.Close()
		ce.keyDB = nil
	}
	if ce.fds != nil {
		ce.fds.Close()
		ce.fds = nil
	}
	bzero.Bytes(ce.passphrase)
}
