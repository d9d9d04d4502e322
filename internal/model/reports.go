package model

import "time"

// DuplicateGroup : файлы владельца с одинаковым хешем
type DuplicateGroup struct {
	OwnerID     string  `json:"owner_id" yaml:"owner_id"`
	ContentHash string  `json:"content_hash" yaml:"content_hash"`
	Original    *File   `json:"original" yaml:"original"`
	Duplicates  []*File `json:"duplicates" yaml:"duplicates"`
	WastedBytes int64   `json:"wasted_bytes" yaml:"wasted_bytes"`
}

type DuplicateReport struct {
	Groups      []DuplicateGroup `json:"groups" yaml:"groups"`
	TotalWasted int64            `json:"total_wasted" yaml:"total_wasted"`
}

type ItemFailure struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

// BatchReport : итог пакетной операции, одна ошибка не прерывает обработку
type BatchReport struct {
	Task      string        `json:"task" yaml:"task"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Failed    int           `json:"failed" yaml:"failed"`
	Failures  []ItemFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func (r *BatchReport) Fail(id string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, ItemFailure{ID: id, Error: err.Error()})
}

type RetentionReport struct {
	Cutoff        time.Time     `json:"cutoff" yaml:"cutoff"`
	DryRun        bool          `json:"dry_run" yaml:"dry_run"`
	FileCount     int           `json:"file_count" yaml:"file_count"`
	FolderCount   int           `json:"folder_count" yaml:"folder_count"`
	TotalBytes    int64         `json:"total_bytes" yaml:"total_bytes"`
	PurgedFiles   int           `json:"purged_files" yaml:"purged_files"`
	PurgedFolders int           `json:"purged_folders" yaml:"purged_folders"`
	Failures      []ItemFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type UsageStats struct {
	UsedBytes       int64   `json:"used_bytes"`
	QuotaBytes      int64   `json:"quota_bytes"`
	UsagePercentage float64 `json:"usage_percentage"`
	ActiveUsers     int     `json:"active_users"`
	FileCount       int     `json:"file_count"`
}

type TagSuggestion struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type TrashListing struct {
	Files   []*File   `json:"files"`
	Folders []*Folder `json:"folders"`
}

// CascadeResult : что затронул каскад по корзине
type CascadeResult struct {
	Folders int `json:"folders"`
	Files   int `json:"files"`
}

type SearchResult struct {
	Files   []*File   `json:"files"`
	Folders []*Folder `json:"folders"`
}
