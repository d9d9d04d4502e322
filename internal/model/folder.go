package model

import "time"

type Folder struct {
	ID        string     `db:"id" json:"id" yaml:"id"`
	Name      string     `db:"name" json:"name" yaml:"name"`
	OwnerID   string     `db:"owner_id" json:"owner_id" yaml:"owner_id"`
	ParentID  *string    `db:"parent_id" json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	IsDeleted bool       `db:"is_deleted" json:"is_deleted" yaml:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

func (f *Folder) State() LifecycleState {
	return stateOf(f.IsDeleted)
}

// TrashedWith : папка попала в корзину тем же каскадом, что и stamp
func (f *Folder) TrashedWith(stamp time.Time) bool {
	return f.IsDeleted && f.DeletedAt != nil && f.DeletedAt.Equal(stamp)
}

func (f *Folder) DaysUntilPurge(now time.Time, retention time.Duration) int {
	return daysUntilPurge(f.DeletedAt, now, retention)
}

func daysUntilPurge(deletedAt *time.Time, now time.Time, retention time.Duration) int {
	if deletedAt == nil {
		return int(retention.Hours() / 24)
	}
	remaining := deletedAt.Add(retention).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Hours() / 24)
}
