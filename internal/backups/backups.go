package backups

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/timknowlden/HairManager-sub001/config"
)

// BackupAttachments zips the attachments directory (the persisted copies of
// sent invoice documents) into the backup directory, keyed by date.
func BackupAttachments() (string, error) {
	conf, err := config.Fetch()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(conf.AttachmentsDir); os.IsNotExist(err) {
		return "", errors.Errorf("attachments directory %s does not exist", conf.AttachmentsDir)
	}

	today := time.Now().Format("2006-01-02")
	currentTime := time.Now().Format("150405")
	backupDir := fmt.Sprintf("./%s/%s", conf.BackupDir, today)

	if _, err := os.Stat(backupDir); os.IsNotExist(err) {
		if err := os.MkdirAll(backupDir, os.ModePerm); err != nil {
			return "", err
		}
	}

	zipFile := fmt.Sprintf("%s/attachments-%s.zip", backupDir, currentTime)
	if err := zipDir(conf.AttachmentsDir, zipFile); err != nil {
		return "", errors.Wrap(err, "zipping attachments failed")
	}

	fmt.Printf("Backup successful: %s\n", zipFile)
	return zipFile, nil
}

// BackupAttachmentsToS3 zips the attachments directory and uploads the
// archive to the configured S3 bucket, removing the local archive afterwards.
func BackupAttachmentsToS3() error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}

	zipFile, err := BackupAttachments()
	if err != nil {
		return err
	}

	itemKey := filepath.Base(zipFile)
	if err := uploadToS3(zipFile, cnf.S3BucketName, itemKey, cnf.AwsAccessKeyId, cnf.AwsSecretAccessKey, cnf.S3Region); err != nil {
		return errors.Wrap(err, "uploading attachments backup to S3 failed")
	}

	if err := os.Remove(zipFile); err != nil {
		return err
	}

	fmt.Println("Attachments backup", itemKey, "uploaded to S3.")

	return nil
}

func zipDir(srcDir, destZip string) error {
	zipfile, err := os.Create(destZip)
	if err != nil {
		return err
	}
	defer zipfile.Close()

	archive := zip.NewWriter(zipfile)
	defer archive.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		zipFileWriter, err := archive.Create(relPath)
		if err != nil {
			return err
		}

		srcFile, err := os.Open(path)
		if err != nil {
			return err
		}
		defer srcFile.Close()

		_, err = io.Copy(zipFileWriter, srcFile)
		return err
	})
}

func uploadToS3(filePath, bucketName, itemKey, accessKeyID, secretAccessKey, region string) error {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return err
	}

	client := s3.NewFromConfig(cfg)

	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(itemKey),
		Body:   file,
	})

	return err
}
