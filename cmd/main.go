package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	hairmanager "github.com/timknowlden/HairManager-sub001"
	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/database"
	"github.com/timknowlden/HairManager-sub001/internal/notification"
)

// HairManagerCLI represents the CLI application, encapsulating the root
// Cobra command.
type HairManagerCLI struct {
	cmd *cobra.Command
}

// appInstance holds the service instance and its configuration for use by
// subcommands.
type appInstance struct {
	service *hairmanager.HairManager
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service instance before
// any command runs.
func preRun(app *appInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("hairmanager.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupService(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf

		return nil
	}
}

func setupService(cfg *config.Configuration) (*hairmanager.HairManager, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	service, err := hairmanager.NewHairManager(db)
	if err != nil {
		return nil, fmt.Errorf("error creating service: %v", err)
	}
	return service, nil
}

// NewCLI creates the command-line interface for the application, wiring the
// server, worker, migration and backup subcommands.
func NewCLI() *HairManagerCLI {
	var configFile string
	app := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "hairmanager",
		Short: "Salon booking and invoicing backend",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./hairmanager.json", "Configuration file for the server")

	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(workerCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(backupCommands())

	return &HairManagerCLI{cmd: rootCmd}
}

func (w HairManagerCLI) executeCLI() {
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
