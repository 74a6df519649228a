package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/c14220110/mediflow-backend/config"
	"github.com/c14220110/mediflow-backend/internal/access"
	backupServices "github.com/c14220110/mediflow-backend/internal/backup/services"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/session"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the full clinic data document",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup document to --out (stdout by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			ephemeral, _ := cmd.Flags().GetBool("ephemeral")
			return withBackup(ephemeral, func(ctx context.Context, svc *backupServices.BackupService) error {
				doc, err := svc.Export(access.System())
				if err != nil {
					return err
				}
				w := io.Writer(cmd.OutOrStdout())
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			})
		},
	}
	exportCmd.Flags().StringP("out", "o", "", "Output file")
	cmd.AddCommand(exportCmd)

	restoreCmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Validate a backup document; with --commit replace all data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commit, _ := cmd.Flags().GetBool("commit")
			ephemeral, _ := cmd.Flags().GetBool("ephemeral")
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withBackup(ephemeral, func(ctx context.Context, svc *backupServices.BackupService) error {
				if !commit {
					p, err := svc.PreviewRestore(access.System(), raw)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "valid backup: %d visits, %d doctors, %d procedures, %d patients, %d products, %d suppliers, %d sales\n",
						p.Visits, p.Doctors, p.Procedures, p.PatientDatabase, p.Products, p.Suppliers, p.Sales)
					fmt.Fprintln(cmd.OutOrStdout(), "run again with --commit to replace the stored data")
					return nil
				}
				p, err := svc.CommitRestore(ctx, access.System(), raw)
				if err != nil && !errs.IsPersistence(err) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %d visits, %d doctors, %d patients\n", p.Visits, p.Doctors, p.PatientDatabase)
				return err
			})
		},
	}
	restoreCmd.Flags().Bool("commit", false, "Replace the stored data")
	cmd.AddCommand(restoreCmd)

	return cmd
}

func withBackup(ephemeral bool, fn func(ctx context.Context, svc *backupServices.BackupService) error) error {
	cfg := config.LoadConfig()
	log := newLogger(cfg)
	ctx := context.Background()

	store, err := openStore(ctx, cfg, ephemeral)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, backupServices.NewBackupService(session.Open(ctx, store, log), log))
}
