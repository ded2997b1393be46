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
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/valpere/voicetran/internal/session"
	"github.com/valpere/voicetran/internal/speech"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Translate typed lines as speech input",
	Long: `Read lines from stdin as if they were speech recognition results and
translate each one. A line ending in "..." is shown as a partial hypothesis.
Input ends at EOF or Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Source == "auto" {
			return fmt.Errorf("listen needs an explicit source language")
		}

		ctrl, closeFn, err := newController(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rec := speech.NewLineRecognizer(os.Stdin)
		source, target := ctrl.Languages()
		fmt.Fprintf(os.Stderr, "Listening (%s -> %s)...\n", source, target)

		for {
			res, err := ctrl.Listen(ctx, rec, func(partial string) {
				fmt.Fprintf(os.Stderr, "  %s\n", partial)
			})
			switch {
			case err == nil:
				fmt.Println(res.TranslatedText)
			case speech.IsKind(err, speech.ErrorNoMatch):
				continue
			case speech.IsKind(err, speech.ErrorClient), errors.Is(err, context.Canceled):
				return nil
			case errors.Is(err, session.ErrEmptyText):
				continue
			default:
				var recErr *speech.RecognitionError
				if errors.As(err, &recErr) {
					return err
				}
				fmt.Fprintf(os.Stderr, "Translation failed: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
