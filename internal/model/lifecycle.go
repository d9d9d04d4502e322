package model

// LifecycleState : состояние файла или папки
type LifecycleState string

const (
	StateActive  LifecycleState = "ACTIVE"
	StateTrashed LifecycleState = "TRASHED"
	// StatePurged никогда не хранится: запись удаляется вместе с содержимым
	StatePurged LifecycleState = "PURGED"
)

func stateOf(isDeleted bool) LifecycleState {
	if isDeleted {
		return StateTrashed
	}
	return StateActive
}
