/*
Copyright 2025 Candleworks Authors.

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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/candleworks/fulfil"
	"github.com/candleworks/fulfil/config"
	"github.com/candleworks/fulfil/database"
	"github.com/candleworks/fulfil/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type CLI struct {
	cmd *cobra.Command
}

type fulfilInstance struct {
	fulfil *fulfil.Fulfil
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the fulfillment service before
// any subcommand runs.
func preRun(app *fulfilInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("fulfil.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newFulfil, err := setupFulfil(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.fulfil = newFulfil
		app.cnf = cnf

		return nil
	}
}

func setupFulfil(cfg *config.Configuration) (*fulfil.Fulfil, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newFulfil, err := fulfil.NewFulfil(db)
	if err != nil {
		return nil, fmt.Errorf("error creating fulfil: %v", err)
	}
	return newFulfil, nil
}

// NewCLI creates the command-line interface for the fulfillment server.
func NewCLI() *CLI {
	var configFile string
	f := &fulfilInstance{}

	var rootCmd = &cobra.Command{
		Use:   "fulfil",
		Short: "Candleworks order fulfillment server",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./fulfil.json", "Configuration file for the fulfillment server")
	rootCmd.PersistentPreRunE = preRun(f)

	rootCmd.AddCommand(serverCommands(f))
	rootCmd.AddCommand(migrateCommands(f))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
