package main

import (
	"os"

	"clinic-console/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "clinic-console",
		Short: "Clinic console API with the appointment calendar",
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the .env configuration file")

	rootCmd.AddCommand(serveCmd(&envFile))
	rootCmd.AddCommand(migrateCmd(&envFile))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the console API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Initialize application with all dependencies
			app, err := bootstrap.New(*envFile)
			if err != nil {
				logrus.Errorf("Failed to initialize application: %v", err)
				return err
			}

			// Run the application
			app.Run()
			return nil
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the appointment query tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap.Migrate(*envFile); err != nil {
				logrus.Errorf("Migration failed: %v", err)
				return err
			}
			logrus.Info("Migration completed")
			return nil
		},
	}
}
