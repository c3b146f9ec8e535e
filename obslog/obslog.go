/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package obslog adapts sntp.Observer traces onto a logrus.FieldLogger, so
// a Client's internal state transitions surface through whatever logging
// sink the host application already uses.
package obslog

import (
	log "github.com/sirupsen/logrus"

	"github.com/coresync/sntp/sntp"
)

// New returns an sntp.Observer that logs each trace through logger at the
// level matching its ObserverLevel. A nil logger uses logrus's package-level
// standard logger.
func New(logger log.FieldLogger) sntp.Observer {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return func(level sntp.ObserverLevel, msg string, fields map[string]any) {
		entry := logger.WithFields(log.Fields(fields))
		switch level {
		case sntp.LevelDebug:
			entry.Debug(msg)
		case sntp.LevelWarn:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}
