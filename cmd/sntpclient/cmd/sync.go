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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coresync/sntp/metrics"
	"github.com/coresync/sntp/obslog"
	"github.com/coresync/sntp/resolver"
	"github.com/coresync/sntp/sntp"
	"github.com/coresync/sntp/sysclock"
	"github.com/coresync/sntp/transport"
)

var (
	syncServers         []string
	syncLocalAddr       string
	syncResponseTimeout time.Duration
	syncBlockTime       time.Duration
	syncDesiredAccuracy uint16
	syncMonitoringAddr  string
	syncDryRun          bool
)

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringSliceVar(&syncServers, "server", []string{"pool.ntp.org"}, "SNTP server to query, repeatable; rotated through on rejection")
	syncCmd.Flags().StringVar(&syncLocalAddr, "listen", ":0", "local UDP address to send requests from")
	syncCmd.Flags().DurationVar(&syncResponseTimeout, "response-timeout", 5*time.Second, "max time to wait for a response to one request")
	syncCmd.Flags().DurationVar(&syncBlockTime, "block-time", time.Second, "max time a single poll call blocks waiting for a datagram")
	syncCmd.Flags().Uint16Var(&syncDesiredAccuracy, "desired-accuracy-ms", 100, "desired clock accuracy in milliseconds, used to derive the poll interval")
	syncCmd.Flags().StringVar(&syncMonitoringAddr, "monitoring-addr", "", "if set, serve Prometheus metrics on this address")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "compute offsets but never step the system clock")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "continuously synchronize the system clock against the configured servers",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runSync()
	},
}

func runSync() error {
	if len(syncServers) == 0 {
		return fmt.Errorf("sntpclient: no --server configured")
	}

	conn, err := transport.Listen(syncLocalAddr)
	if err != nil {
		return fmt.Errorf("sntpclient: %w", err)
	}
	defer conn.Close()

	servers := make([]sntp.ServerInfo, len(syncServers))
	for i, name := range syncServers {
		servers[i] = sntp.ServerInfo{Name: name, Port: sntp.DefaultPort}
	}

	sysClock := sysclock.System{}
	realClock := sntp.Clock(sysClock)
	if syncDryRun {
		realClock = dryRunClock{sysClock}
	}

	collector := metrics.NewCollector()
	observer := obslog.New(log.StandardLogger())

	newClient := func() (*sntp.Client, error) {
		return sntp.NewClient(servers, syncResponseTimeout, make([]byte, sntp.PacketSizeBytes), sntp.Collaborators{
			Resolver:  resolver.DNS{},
			Clock:     realClock,
			Transport: conn,
			Observer:  observer,
		})
	}

	freqTolerancePPM, err := sysclock.FrequencyTolerancePPM()
	if err != nil {
		log.WithError(err).Warn("sntpclient: could not read clock frequency tolerance, defaulting to 500 ppm")
		freqTolerancePPM = 500
	}
	pollInterval, err := sntp.CalculatePollInterval(freqTolerancePPM, syncDesiredAccuracy)
	if err != nil {
		return fmt.Errorf("sntpclient: %w", err)
	}
	log.WithField("interval", pollInterval).Info("sntpclient: computed poll interval")

	scheduler, err := sntp.NewScheduler(newClient, pollInterval, syncBlockTime)
	if err != nil {
		return fmt.Errorf("sntpclient: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eg, egCtx := errgroup.WithContext(ctx)

	if syncMonitoringAddr != "" {
		server := &http.Server{Addr: syncMonitoringAddr, Handler: collector.Handler()}
		eg.Go(func() error {
			log.WithField("addr", syncMonitoringAddr).Info("sntpclient: serving metrics")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		return scheduler.Run(egCtx, func(client *sntp.Client, syncErr error) {
			if syncErr != nil {
				log.WithError(syncErr).Warn("sntpclient: sync attempt failed")
			} else {
				log.Info("sntpclient: clock synchronized")
			}
			collector.SetServerIndex(client.CurrentServerIndex())
			unixSecs, _, convErr := sntp.ConvertToUnixTime(sysClock.Now())
			if convErr != nil {
				unixSecs = 0
			}
			collector.Observe(syncErr, client.LastResponse().ClockOffsetSec, unixSecs)
		})
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// dryRunClock wraps a Clock, still reading from it but never stepping it.
type dryRunClock struct {
	sntp.Clock
}

func (dryRunClock) Set(server sntp.ServerInfo, serverTime sntp.Timestamp, offsetSec int32, leap sntp.LeapIndicator) {
	log.WithFields(log.Fields{
		"server": server.Name, "offset_s": offsetSec, "leap": leap.String(),
	}).Info("sntpclient: dry-run, not stepping clock")
}
