// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the WorkHub configuration file.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/frankbraun/codechain/util/file"
	"github.com/spf13/viper"
	"github.com/workhubapp/workhub/chatsync"
	"github.com/workhubapp/workhub/conversation"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/log"
)

// Filename is the default name of the configuration file in the home
// directory.
const Filename = "workhub.yaml"

// Config is the WorkHub configuration.
type Config struct {
	Home  Home
	Log   Log
	Store Store
	Sync  Sync
	Chat  Chat
}

// Home configures the home directory.
type Home struct {
	Dir string
}

// Log configures logging.
type Log struct {
	Level   string
	Dir     string // default: <home>/log
	Console bool
}

// Store configures the encrypted databases.
type Store struct {
	KDFIter int
}

// Sync configures the resubscription backoff.
type Sync struct {
	BackoffMin    time.Duration
	BackoffMax    time.Duration
	BackoffFactor float64
}

// Chat configures conversations.
type Chat struct {
	PlaintextPreview bool
}

// DefaultHomeDir returns the default home directory.
func DefaultHomeDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "workhub")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("home.dir", DefaultHomeDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.console", false)
	v.SetDefault("store.kdfiter", def.KDFIterations)
	v.SetDefault("sync.backoffmin", def.ResubscribeMin)
	v.SetDefault("sync.backoffmax", def.ResubscribeMax)
	v.SetDefault("sync.backofffactor", def.ResubscribeFactor)
	v.SetDefault("chat.plaintextpreview", false)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, log.Errorf("config: cannot unmarshal: %s", err)
	}
	return &c, nil
}

// Load loads the configuration file filename. If filename is empty or does
// not exist the defaults are returned.
func Load(filename string) (*Config, error) {
	v := newViper()
	if filename != "" {
		exists, err := file.Exists(filename)
		if err != nil {
			return nil, log.Error(err)
		}
		if exists {
			v.SetConfigFile(filename)
			if err := v.ReadInConfig(); err != nil {
				return nil, log.Errorf("config: cannot read %s: %s", filename, err)
			}
		}
	}
	return unmarshal(v)
}

// Parse parses a YAML configuration from r. Missing settings get their
// default values.
func Parse(r io.Reader) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, log.Errorf("config: cannot parse: %s", err)
	}
	return unmarshal(v)
}

// LogDir returns the log directory.
func (c *Config) LogDir() string {
	if c.Log.Dir != "" {
		return c.Log.Dir
	}
	return filepath.Join(c.Home.Dir, "log")
}

// SyncOptions returns the options of the remote sync layer.
func (c *Config) SyncOptions() chatsync.Options {
	return chatsync.Options{
		BackoffMin:    c.Sync.BackoffMin,
		BackoffMax:    c.Sync.BackoffMax,
		BackoffFactor: c.Sync.BackoffFactor,
	}
}

// ConversationOptions returns the options of chat conversations.
func (c *Config) ConversationOptions() conversation.Options {
	return conversation.Options{PlaintextPreview: c.Chat.PlaintextPreview}
}
