// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package log implements the WorkHub logging framework on top of seelog.

Every error condition in the chat core is logged exactly once, at the point
where it enters our code: errors returned by external packages are wrapped in
a log.Error() call, errors we create ourselves are created with
log.Error[f](). Conditions which can only be reached through a programming
error are reported with panic(log.Critical[f]()).

Plaintext message bodies, session keys and private keys must never be passed
to any function of this package.
*/
package log
