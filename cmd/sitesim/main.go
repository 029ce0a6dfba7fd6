package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	root := &cobra.Command{
		Use:          "sitesim",
		Short:        "Weekly construction project simulation",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", defaultConfigPath(), "path to the YAML configuration")
	root.AddCommand(validateCmd())
	root.AddCommand(playCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(statementCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
