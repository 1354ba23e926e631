package resultqueue

// RebuildRecordsJob re-derives every record label of one event.
type RebuildRecordsJob struct {
	EventID string `json:"event_id"`
}

// Kind returns the job type identifier for River
func (RebuildRecordsJob) Kind() string { return "rebuild_records" }

// JobInfo describes an enqueued rebuild.
type JobInfo struct {
	ID        int64  `json:"id"`
	EventID   string `json:"event_id"`
	State     string `json:"state"`
	Duplicate bool   `json:"duplicate"`
}
