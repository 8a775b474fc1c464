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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	devConfig "github.com/zivilschutz/zsadmin/dev/config"
	"github.com/zivilschutz/zsadmin/server"
	"github.com/zivilschutz/zsadmin/shared"
)

// Secrets may come from the environment instead of the config file.
// The env var overrides whatever is in the config file.
var secretEnvBindings = map[string]string{
	"app.privateKeyPem":             "ZSADMIN_PRIVATE_KEY_PEM",
	"database.sqlite.passPhrase":    "ZSADMIN_DB_PASSPHRASE",
	"database.mysqlDsn":             "ZSADMIN_MYSQL_DSN",
	"google.applicationCredentials": "GOOGLE_APPLICATION_CREDENTIALS",
	"twilio.accountSid":             "TWILIO_ACCOUNT_SID",
	"twilio.authToken":              "TWILIO_AUTH_TOKEN",
	"resend.apiKey":                 "RESEND_API_KEY",
}

func createServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the zsadmin server",
		Long: `The zsadmin server exposes the JSON API for personnel, trainings, attendance,
emergency contacts, users, files and reports, and runs the background jobs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := serverConfig()
			if err != nil {
				return err
			}

			if isDevEnv {
				fmt.Fprintln(cmd.OutOrStdout(), warningLabel, "running in dev mode, data is kept under ./dev")
			}

			server.Start(config, isDevEnv)
			return nil
		},
	}
}

// serverConfig reads, unmarshals and validates the server config.
func serverConfig() (*shared.ServerConfig, error) {
	configFile := serverConfigFile
	if isDevEnv && configFile == "" {
		var err error
		configFile, err = devConfigFilePath()
		if err != nil {
			return nil, err
		}
	}

	if configFile == "" {
		return nil, formattedError("--sconfig is required outside of dev mode")
	}

	return loadServerConfig(configFile)
}

func loadServerConfig(configFile string) (*shared.ServerConfig, error) {
	config := viper.New()
	config.SetConfigFile(configFile)

	for key, env := range secretEnvBindings {
		config.BindEnv(key, env)
	}

	config.SetEnvPrefix("zsadmin")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv() // read in environment variables that match

	err := config.ReadInConfig()
	if err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	serverConfig := &shared.ServerConfig{}
	err = config.Unmarshal(serverConfig)
	if err != nil {
		return nil, formattedError("error parsing server config file: %v", err)
	}

	err = shared.NewValidator().Struct(serverConfig)
	if err != nil {
		return nil, formattedError("invalid server config %s:\n%v", config.ConfigFileUsed(), err)
	}

	return serverConfig, nil
}

// devConfigFilePath returns dev/config/server.yml, writing the default dev config first
// when it does not exist yet.
func devConfigFilePath() (string, error) {
	configDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	configFilePath := filepath.Join(configDir, "dev", "config", "server.yml")
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		err = os.MkdirAll(filepath.Dir(configFilePath), 0755)
		if err != nil {
			return "", err
		}

		err = os.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600)
		if err != nil {
			return "", err
		}
	}

	return configFilePath, nil
}
