package catalog

import "time"

// DefaultKeyField is the column used to detect rows that appeared since the
// previous load.
const DefaultKeyField = "Internal ID"

// KnownKeys is the set of key values seen in the most recent load.
type KnownKeys map[string]struct{}

func NewKnownKeys(keys ...string) KnownKeys {
	k := make(KnownKeys, len(keys))
	for _, key := range keys {
		if key != "" {
			k[key] = struct{}{}
		}
	}
	return k
}

func (k KnownKeys) Has(key string) bool {
	_, ok := k[key]
	return ok
}

// Tag marks rows whose key is non-empty and absent from previous as new,
// stamping them all with the same now. It returns tagged copies of rows and
// the key set of this batch, which replaces previous rather than extending
// it. Neither rows nor previous are modified.
func Tag(rows []Row, previous KnownKeys, keyField string, now time.Time) ([]Row, KnownKeys) {
	tagged := make([]Row, len(rows))
	next := make(KnownKeys, len(rows))
	for i, r := range rows {
		key := r.Get(keyField)
		r.IsNew = key != "" && !previous.Has(key)
		r.AddedDate = time.Time{}
		if r.IsNew {
			r.AddedDate = now
		}
		if key != "" {
			next[key] = struct{}{}
		}
		tagged[i] = r
	}
	return tagged, next
}

// CountNew reports how many rows are tagged new.
func CountNew(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.IsNew {
			n++
		}
	}
	return n
}
