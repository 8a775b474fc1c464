/*
Copyright © 2021 Edmond Cotterell

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
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/shared"
)

type checkResult struct {
	name string
	err  error
}

func createCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the server config before deploying",
		Long: `Validates the server config file, the secrets that must be provided through the
environment and the static asset directory of the front end.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := serverConfig()
			results := []checkResult{{name: "server config", err: err}}
			if err == nil {
				results = append(results, runChecks(config, isDevEnv)...)
			}

			if failed := printCheckResults(cmd.OutOrStdout(), results); failed > 0 {
				return formattedError("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func runChecks(config *shared.ServerConfig, devMode bool) []checkResult {
	results := []checkResult{}

	var err error
	if config.App.PrivateKeyPem == "" && !devMode {
		err = fmt.Errorf("set app.privateKeyPem or ZSADMIN_PRIVATE_KEY_PEM")
	}
	results = append(results, checkResult{name: "signing key", err: err})

	err = nil
	if config.Google.Storage.Enabled() && config.Google.ApplicationCredentials == "" {
		err = fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is required when the sqlite backup is enabled")
	}
	results = append(results, checkResult{name: "google credentials", err: err})

	if config.App.StaticDir != "" {
		_, err = os.Stat(filepath.Join(config.App.StaticDir, "index.html"))
		if err != nil {
			err = fmt.Errorf("no index.html in %s", config.App.StaticDir)
		}
		results = append(results, checkResult{name: "static assets", err: err})
	}

	return results
}

// printCheckResults writes one line per check and returns the number of failed checks.
func printCheckResults(out io.Writer, results []checkResult) int {
	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", colors.Red("FAIL"), result.name, result.err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", colors.Green("OK  "), result.name)
	}
	return failed
}
