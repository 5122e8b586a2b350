package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cinevec/cinevec/config"
	"github.com/cinevec/cinevec/internal"
	"github.com/cinevec/cinevec/pkg/testutils"
)

var (
	log *logrus.Logger

	cfgFile     string
	showVersion bool
	dumpConfig  bool
)

var cmd = &cobra.Command{
	Use:   "cinevec",
	Short: "cinevec chunks, embeds, and uploads movie records into a vector index and warehouse",
	Run:   func(cmd *cobra.Command, args []string) { run() },
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test utilities",
}

var createFixturesCmd = &cobra.Command{
	Use:   "create-fixtures",
	Short: "Create fixture records for testing",
	Run: func(cmd *cobra.Command, args []string) {
		fixtureCount, _ := cmd.Flags().GetInt("count")
		outputPath, _ := cmd.Flags().GetString("output")
		if err := testutils.GenerateFixtureData(fixtureCount, outputPath); err != nil {
			log.Fatalf("Failed to create fixtures: %s", err)
		}
		fmt.Println("Fixtures created successfully.")
	},
}

func init() {
	testCmd.AddCommand(createFixturesCmd)
	cmd.AddCommand(testCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")
	cmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version number")
	cmd.PersistentFlags().BoolVarP(&dumpConfig, "dump-config", "d", false, "dump config")

	createFixturesCmd.Flags().Int("count", 100, "Number of fixture records to generate")
	createFixturesCmd.Flags().String("output", "./movies.jsonl", "Path to output fixture file")
}

// Execute executes the root cobra command.
func Execute() {
	log = internal.GetLogger()
	log.SetLevel(logrus.InfoLevel)

	err := cmd.Execute()

	if err != nil {
		os.Exit(1)
	}
}

// handleCLIOptions handles CLI options that don't require the pipeline to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if dumpConfig {
		fmt.Printf("%+v\n", *cfg)
		os.Exit(0)
	}
}
