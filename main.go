package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mediflow",
		Short:        "Backend klinik: antrian pasien, konsultasi, dan billing",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("ephemeral", false, "Use an in-memory store instead of STORAGE_DRIVER")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
