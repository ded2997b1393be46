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
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "voicetran",
	Short: "Speech and text translator with provider fallback",
	Long: `A translator for spoken or typed text. Each request goes to a primary
translation provider and, if that fails, once to a secondary provider with a
different API.

Supported services: LibreTranslate, MyMemory, Google Translate

Use "voicetran translate --help" for translation options.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./voicetran.yaml or ~/.config/voicetran/voicetran.yaml)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "console", "Log format (console or json)")
	pf.String("db", "./data/voicetran.db", "Database path for translation history")
	pf.Bool("history", true, "Record completed translations in the history database")
	pf.StringP("source", "s", "en", "Source language code (\"auto\" to detect)")
	pf.StringP("target", "t", "es", "Target language code")

	pf.String("primary", "libretranslate", "Primary translation service")
	pf.String("secondary", "mymemory", "Fallback translation service")
	pf.Duration("timeout", 0, "Per-provider attempt timeout (0 = HTTP client default)")
	pf.String("libretranslate", "", "LibreTranslate endpoint URL")
	pf.String("mymemory-email", "", "MyMemory email (for higher limits)")
	pf.StringP("credentials", "c", "", "Path to Google Cloud credentials")
}
