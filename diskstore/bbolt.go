package diskstore

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

type bboltBucket struct {
	bb *bbolt.Bucket
}

func (b bboltBucket) Get(k []byte) []byte {
	// The slice is only valid for the life of the transaction, so copy it.
	v := b.bb.Get(k)
	if v == nil {
		return nil
	}
	return append([]byte(nil), v...)
}

func (b bboltBucket) Put(k, v []byte) error {
	return b.bb.Put(k, v)
}

func (b bboltBucket) ForEach(f func(k, v []byte) error) error {
	return b.bb.ForEach(func(k, v []byte) error {
		return f(k, v)
	})
}

// ---------------------------

type bboltDiskStore struct {
	bboltDB *bbolt.DB
}

func (ds bboltDiskStore) Path() string {
	return ds.bboltDB.Path()
}

func (ds bboltDiskStore) CreateBucketsIfNotExists(bucketNames []string) error {
	return ds.bboltDB.Update(func(tx *bbolt.Tx) error {
		for _, name := range bucketNames {
			_, err := tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (ds bboltDiskStore) Read(bucketName string, f func(ReadOnlyBucket) error) error {
	return ds.bboltDB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s does not exist", bucketName)
		}
		return f(bboltBucket{bb: b})
	})
}

func (ds bboltDiskStore) Write(bucketName string, f func(Bucket) error) error {
	return ds.bboltDB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s does not exist", bucketName)
		}
		return f(bboltBucket{bb: b})
	})
}

func (ds bboltDiskStore) Backup(backupFrequency, backupCount int) error {
	return backupBBolt(ds.bboltDB, time.Now(), backupFrequency, backupCount)
}

func (ds bboltDiskStore) Close() error {
	return ds.bboltDB.Close()
}
