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

package obslog

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/coresync/sntp/sntp"
)

func TestObserverLogsAtMatchingLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetLevel(log.DebugLevel)
	logger.SetFormatter(&log.TextFormatter{DisableColors: true, DisableTimestamp: true})

	obs := New(logger)
	obs(sntp.LevelWarn, "clock offset overflow", map[string]any{"server": "time.example.com"})

	out := buf.String()
	require.Contains(t, out, "level=warning")
	require.Contains(t, out, "clock offset overflow")
	require.Contains(t, out, "server=time.example.com")
}

func TestObserverNilLoggerDoesNotPanic(t *testing.T) {
	obs := New(nil)
	require.NotPanics(t, func() {
		obs(sntp.LevelInfo, "test", nil)
	})
}
