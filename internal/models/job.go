package models

import "time"

// Job kinds handled by the background scheduler.
const (
	JobKindUpload       = "upload"        // отправка очереди изменений одной feature
	JobKindTileDownload = "tile_download" // загрузка pending tile sources
)

// Job is a persisted request for background work.
type Job struct {
	CreatedAt time.Time `json:"created_at"`
	NotBefore time.Time `json:"not_before"` // не запускать раньше (backoff)
	Kind      string    `json:"kind"`
	Key       string    `json:"key"`
	LastError string    `json:"last_error,omitempty"`
	Attempts  int       `json:"attempts"`
	// Generation растет при каждом повторном Enqueue; по нему видно,
	// что задачу запросили снова, пока она выполнялась
	Generation int64 `json:"generation"`
}

// Ready reports whether the job may run at now.
func (j *Job) Ready(now time.Time) bool {
	return !now.Before(j.NotBefore)
}
