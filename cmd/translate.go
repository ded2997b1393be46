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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/voicetran/internal/detector"
	"github.com/valpere/voicetran/internal/validator"
)

var checkLanguage bool

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text, falling back to the secondary service on failure",
	Long: `Translate text with the primary service. If the primary fails for any
reason the secondary service is tried exactly once.

Text is taken from the arguments, or from stdin when none are given.
Use --source auto to detect the source language and --check-language to
verify the result is written in the target language.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		ctrl, closeFn, err := newController(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		var det *detector.Detector
		if cfg.Source == "auto" || checkLanguage {
			det = detector.New()
		}

		if cfg.Source == "auto" {
			lang, ok := det.DetectCatalog(text)
			if !ok {
				return fmt.Errorf("could not detect a supported source language")
			}
			if err := ctrl.SetSource(lang.Code); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Detected source language: %s\n", lang)
		}

		rec, err := ctrl.Translate(context.Background(), text)
		if err != nil {
			return err
		}

		if rec.PrimaryError != "" {
			fmt.Fprintf(os.Stderr, "Primary service failed, used %s\n", rec.ServiceName)
		}
		if checkLanguage {
			_, target := ctrl.Languages()
			if err := validator.New(det).Check(rec.TranslatedText, target); err != nil {
				logger.Warn().Err(err).Str("service", rec.ServiceName).Msg("translation language check failed")
			}
		}
		fmt.Println(rec.TranslatedText)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().BoolVar(&checkLanguage, "check-language", false, "Warn when the result does not look like the target language")
}
