package diskstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

// backupBBolt copies a bbolt database using a read only transaction into the
// same directory as <unix time>-<name>.backup. A copy is only made when the
// newest existing one is at least backupFrequency seconds old and only the last
// backupCount copies are kept.
func backupBBolt(db *bbolt.DB, now time.Time, backupFrequency, backupCount int) error {
	if backupCount < 1 {
		backupCount = 1
	}
	// ---------------------------
	dbDir := filepath.Dir(db.Path())
	dbName := filepath.Base(db.Path())
	// ---------------------------
	dirContent, err := os.ReadDir(dbDir)
	if err != nil {
		return fmt.Errorf("could not read directory: %w", err)
	}
	// ---------------------------
	// List backups of this database only, the directory is shared with
	// collection data
	backupSuffix := "-" + dbName + ".backup"
	backupFiles := make([]string, 0)
	for _, dirEntry := range dirContent {
		if strings.HasSuffix(dirEntry.Name(), backupSuffix) {
			backupFiles = append(backupFiles, dirEntry.Name())
		}
	}
	slices.Sort(backupFiles) // in ascending order
	// ---------------------------
	// Errors are collected so a bad file name or a failed delete does not stop
	// the remaining steps
	errs := make([]error, 0)
	// ---------------------------
	// Get latest backup time to see if we need to create a new backup
	currentUnixTime := now.Unix()
	lastestBackupTime := int64(0)
	if len(backupFiles) > 0 {
		lastBackupName := backupFiles[len(backupFiles)-1]
		lastestBackupTime, err = strconv.ParseInt(strings.Split(lastBackupName, "-")[0], 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("could not parse latest backup file name %s: %w", lastBackupName, err))
		}
	}
	// ---------------------------
	// Perform backup if the last backup is older than the minimum backup frequency
	if currentUnixTime-lastestBackupTime >= int64(backupFrequency) {
		backupName := fmt.Sprintf("%v%s", currentUnixTime, backupSuffix)
		backupFile := filepath.Join(dbDir, backupName)
		err := db.View(func(tx *bbolt.Tx) error {
			return tx.CopyFile(backupFile, 0644)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("could not create backup: %w", err))
		} else {
			log.Debug().Str("component", "backupBBolt").Str("backupFile", backupFile).Msg("Created backup")
			if !slices.Contains(backupFiles, backupName) {
				backupFiles = append(backupFiles, backupName)
			}
		}
	}
	// ---------------------------
	// Keep only the last N backups
	for i := 0; i < len(backupFiles)-backupCount; i++ {
		backupFile := filepath.Join(dbDir, backupFiles[i])
		if err := os.Remove(backupFile); err != nil {
			errs = append(errs, fmt.Errorf("could not delete backup file %s: %w", backupFile, err))
		}
	}
	// ---------------------------
	return errors.Join(errs...)
}
