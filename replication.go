package ygggo_peardb

import "context"

// Replication probes are memoized: the status query runs once per
// connection and its outcome is reused. A failed probe reads as "delay
// unknown, not realtime" instead of propagating the error.

// IsRealtime reports whether this server is caught up with replication: a
// primary, or a replica with zero measured delay.
func (db *DB) IsRealtime(ctx context.Context) bool {
	db.probeReplication(ctx)
	return db.repRealtime
}

// GetReplicationDelay returns the replica delay in seconds and whether the
// delay could be measured.
func (db *DB) GetReplicationDelay(ctx context.Context) (int64, bool) {
	db.probeReplication(ctx)
	return db.repDelay, db.repKnown
}

func (db *DB) probeReplication(ctx context.Context) {
	if db.repProbed {
		return
	}
	db.repProbed = true
	cur, err := db.Query(ctx, "SHOW SLAVE STATUS")
	if err != nil {
		return // unknown, not realtime
	}
	if cur == nil || cur.RowCount() == 0 {
		// not a replica: realtime by definition
		db.repRealtime = true
		db.repDelay = 0
		db.repKnown = true
		return
	}
	row, err := cur.Next(FetchAssoc)
	if err != nil || row == nil {
		return
	}
	v, ok := row.(map[string]any)["Seconds_Behind_Master"]
	if !ok || v == nil {
		return // replication broken, delay unmeasurable
	}
	db.repDelay = asInt64(v)
	db.repKnown = true
	db.repRealtime = db.repDelay == 0
}
