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
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/valpere/voicetran/internal/config"
	"github.com/valpere/voicetran/internal/logging"
	"github.com/valpere/voicetran/internal/orchestrator"
	"github.com/valpere/voicetran/internal/session"
	"github.com/valpere/voicetran/internal/store"
	"github.com/valpere/voicetran/internal/translator"
)

// loadConfig resolves configuration for cmd and builds the logger it asks for.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// buildClient constructs the primary/secondary chain named in cfg.
func buildClient(cfg *config.Config, logger zerolog.Logger) (*orchestrator.Client, error) {
	opts := cfg.ProviderOptions()

	primary, err := translator.Build(cfg.Primary, opts)
	if err != nil {
		return nil, fmt.Errorf("primary service: %w", err)
	}
	secondary, err := translator.Build(cfg.Secondary, opts)
	if err != nil {
		return nil, fmt.Errorf("secondary service: %w", err)
	}

	return orchestrator.New(primary, secondary, orchestrator.OrchestratorConfig{
		Timeout: cfg.AttemptTimeout,
	}, logger)
}

func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newController wires the translation chain and, when enabled, the history
// store into a session controller. The returned close func is never nil.
func newController(cfg *config.Config, logger zerolog.Logger) (*session.Controller, func(), error) {
	client, err := buildClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	closeFn := func() {}
	if cfg.History {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, session.WithHistory(db))
		closeFn = func() { db.Close() }
	}

	ctrl := session.New(client, opts...)
	if cfg.Source != "auto" {
		if err := ctrl.SetSource(cfg.Source); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	if err := ctrl.SetTarget(cfg.Target); err != nil {
		closeFn()
		return nil, nil, err
	}
	return ctrl, closeFn, nil
}
