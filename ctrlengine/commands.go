// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrlengine

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/urfave/cli"
	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/encode/base64"
	"github.com/workhubapp/workhub/keystore"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/push"
	"github.com/workhubapp/workhub/vault"
)

func (ce *CtrlEngine) keyStore() (*keystore.Store, error) {
	keyDB, err := ce.openKeyDB()
	if err != nil {
		return nil, err
	}
	return keystore.New(keyDB), nil
}

func uid(c *cli.Context) (string, error) {
	id := c.String("uid")
	if id == "" {
		return "", log.Error("ctrlengine: option --uid is mandatory")
	}
	return id, nil
}

func (ce *CtrlEngine) printPublicKey(kp *keystore.KeyPair) error {
	pub, err := kp.PublicKeyBase64()
	if err != nil {
		return err
	}
	fmt.Fprintln(ce.fds.OutputFP, pub)
	return nil
}

func (ce *CtrlEngine) keyCreate(c *cli.Context) error {
	id, err := uid(c)
	if err != nil {
		return err
	}
	keys, err := ce.keyStore()
	if err != nil {
		return err
	}
	kp, err := keys.GetOrCreateKeyPair(id)
	if err != nil {
		return err
	}
	cache, err := ce.openCache()
	if err != nil {
		return err
	}
	if err := cache.SetActiveUID(id); err != nil {
		return err
	}
	return ce.printPublicKey(kp)
}

func (ce *CtrlEngine) keyActive(c *cli.Context) error {
	cache, err := ce.openCache()
	if err != nil {
		return err
	}
	id, err := cache.GetActiveUID()
	if err != nil {
		return err
	}
	if id == "" {
		return log.Error(ErrNoKeyPair)
	}
	fmt.Fprintln(ce.fds.OutputFP, id)
	return nil
}

func (ce *CtrlEngine) keyExport(c *cli.Context) error {
	id, err := uid(c)
	if err != nil {
		return err
	}
	keys, err := ce.keyStore()
	if err != nil {
		return err
	}
	kp, err := keys.LookupKeyPair(id)
	if err != nil {
		return err
	}
	if kp == nil {
		return log.Error(ErrNoKeyPair)
	}
	der, err := kp.PublicKeyDER()
	if err != nil {
		return err
	}
	fmt.Fprintln(ce.fds.OutputFP, base64.Encode(der))
	return nil
}

func (ce *CtrlEngine) keyRotate(c *cli.Context) error {
	id, err := uid(c)
	if err != nil {
		return err
	}
	keys, err := ce.keyStore()
	if err != nil {
		return err
	}
	kp, err := keys.RotateKeyPair(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(ce.fds.StatusFP, "key pair of %s rotated, publish the new public key\n", id)
	return ce.printPublicKey(kp)
}

func (ce *CtrlEngine) roomID(c *cli.Context) error {
	if c.NArg() != 2 {
		return log.Error(ErrArgs)
	}
	fmt.Fprintln(ce.fds.OutputFP, directory.RoomID(c.Args().Get(0), c.Args().Get(1)))
	return nil
}

func (ce *CtrlEngine) roomCached(c *cli.Context) error {
	if c.NArg() != 2 {
		return log.Error(ErrArgs)
	}
	cache, err := ce.openCache()
	if err != nil {
		return err
	}
	n, err := cache.NumRoomMessages(directory.RoomID(c.Args().Get(0), c.Args().Get(1)))
	if err != nil {
		return err
	}
	fmt.Fprintln(ce.fds.OutputFP, n)
	return nil
}

func (ce *CtrlEngine) pushRoom(c *cli.Context) error {
	if c.NArg() != 1 {
		return log.Error(ErrArgs)
	}
	data, err := ioutil.ReadFile(c.Args().First())
	if err != nil {
		return log.Error(err)
	}
	p, err := push.Parse(data)
	if err != nil {
		return err
	}
	roomID, err := p.RoomID()
	if err != nil {
		return err
	}
	fmt.Fprintln(ce.fds.OutputFP, roomID)
	return nil
}

func (ce *CtrlEngine) openVault() (*vault.Vault, error) {
	keys, err := ce.keyStore()
	if err != nil {
		return nil, err
	}
	return vault.New(keys, ce.vaultDir()), nil
}

func (ce *CtrlEngine) vaultPut(c *cli.Context) error {
	if c.NArg() != 1 {
		return log.Error(ErrArgs)
	}
	filename := c.Args().First()
	name := c.String("name")
	if name == "" {
		name = filepath.Base(filename)
	}
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return log.Error(err)
	}
	v, err := ce.openVault()
	if err != nil {
		return err
	}
	if err := v.Put(name, data); err != nil {
		return err
	}
	fmt.Fprintf(ce.fds.StatusFP, "stored '%s' in vault\n", name)
	return nil
}

func (ce *CtrlEngine) vaultGet(c *cli.Context) error {
	if c.NArg() != 1 {
		return log.Error(ErrArgs)
	}
	v, err := ce.openVault()
	if err != nil {
		return err
	}
	data, err := v.Get(c.Args().First())
	if err != nil {
		return err
	}
	if _, err := ce.fds.OutputFP.Write(data); err != nil {
		return log.Error(err)
	}
	return nil
}

func (ce *CtrlEngine) vaultList(c *cli.Context) error {
	// listing needs no vault key
	names, err := vault.New(nil, ce.vaultDir()).List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(ce.fds.OutputFP, name)
	}
	return nil
}

func (ce *CtrlEngine) vaultDelete(c *cli.Context) error {
	if c.NArg() != 1 {
		return log.Error(ErrArgs)
	}
	v, err := ce.openVault()
	if err != nil {
		return err
	}
	return v.Delete(c.Args().First())
}

func (ce *CtrlEngine) configShow(c *cli.Context) error {
	syncOpts := ce.cfg.SyncOptions()
	chat := ce.cfg.ConversationOptions()
	for _, kv := range []struct {
		key   string
		value interface{}
	}{
		{"home.dir", ce.cfg.Home.Dir},
		{"log.level", ce.cfg.Log.Level},
		{"log.dir", ce.cfg.LogDir()},
		{"log.console", ce.cfg.Log.Console},
		{"store.kdfIter", ce.cfg.Store.KDFIter},
		{"sync.backoffMin", syncOpts.BackoffMin},
		{"sync.backoffMax", syncOpts.BackoffMax},
		{"sync.backoffFactor", syncOpts.BackoffFactor},
		{"chat.plaintextPreview", chat.PlaintextPreview},
	} {
		fmt.Fprintf(ce.fds.OutputFP, "%s: %v\n", kv.key, kv.value)
	}
	return nil
}
