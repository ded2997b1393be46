/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/voicetran/internal/httpapi"
	"github.com/valpere/voicetran/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the translation API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := buildClient(cfg, logger)
		if err != nil {
			return err
		}

		var history session.HistoryRecorder
		if cfg.History {
			db, err := openStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			history = db
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.NewServer(client, history, client.Providers(), logger, httpapi.Options{
			Addr: cfg.Server.Addr,
		})
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
