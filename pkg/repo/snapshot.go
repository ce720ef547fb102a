package repo

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// SnapshotKeyPrefix is reserved for snapshot blobs, everything else
	// under the bucket is ignored.
	SnapshotKeyPrefix = "prompt_repo_"
	// SnapshotKeySuffix terminates every snapshot key.
	SnapshotKeySuffix = ".json"

	// snapshotTimeFormat is load-bearing: fixed width, zero padded, UTC,
	// second resolution. Lexicographic order of keys equals chronological
	// order, so "latest" is simply the maximum key. Width and separators
	// must not change.
	snapshotTimeFormat = "20060102_150405"
)

// NewSnapshotKey builds the key for a snapshot taken at the given time,
// e.g. "prompt_repo_20240101_090000.json".
func NewSnapshotKey(t time.Time) string {
	return SnapshotKeyPrefix + t.UTC().Format(snapshotTimeFormat) + SnapshotKeySuffix
}

// IsSnapshotKey reports whether the given key names a snapshot blob.
func IsSnapshotKey(key string) bool {
	_, err := SnapshotTime(key)
	return err == nil
}

// SnapshotTime extracts the creation time encoded in a snapshot key.
func SnapshotTime(key string) (time.Time, error) {
	if !strings.HasPrefix(key, SnapshotKeyPrefix) || !strings.HasSuffix(key, SnapshotKeySuffix) {
		return time.Time{}, errors.Errorf("not a snapshot key: %q", key)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(key, SnapshotKeyPrefix), SnapshotKeySuffix)
	t, err := time.ParseInLocation(snapshotTimeFormat, stamp, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp in snapshot key %q", key)
	}
	return t, nil
}
