package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/timknowlden/HairManager-sub001/internal/backups"
)

// backupCommands groups the attachment backup subcommands.
func backupCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "backup sent invoice attachments",
	}

	cmd.AddCommand(backupToDiskCommands())
	cmd.AddCommand(backupToS3Commands())

	return cmd
}

func backupToDiskCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use: "disk",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := backups.BackupAttachments(); err != nil {
				logrus.Error(err)
				return
			}
		},
	}

	return cmd
}

func backupToS3Commands() *cobra.Command {
	cmd := &cobra.Command{
		Use: "s3",
		Run: func(cmd *cobra.Command, args []string) {
			if err := backups.BackupAttachmentsToS3(); err != nil {
				logrus.Error(err)
				return
			}
		},
	}

	return cmd
}
