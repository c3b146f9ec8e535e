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

package sntp

// ObserverLevel gates how noisy a trace line is, mirroring the log levels
// the teacher repo uses with logrus (Debug/Info/Warn).
type ObserverLevel int

// Observer levels, ordered least to most severe.
const (
	LevelDebug ObserverLevel = iota
	LevelInfo
	LevelWarn
)

// Observer receives a structured trace of Client state transitions. It
// replaces the C sources' preprocessor-gated logging macros; nothing in
// this package spawns a goroutine to call it, so an Observer implementation
// is invoked synchronously on the caller's own goroutine.
type Observer func(level ObserverLevel, msg string, fields map[string]any)

func (o Observer) trace(level ObserverLevel, msg string, fields map[string]any) {
	if o == nil {
		return
	}
	o(level, msg, fields)
}
