package storage

import (
	"fmt"
	"sort"

	"storage-manager/internal/ports"
)

// Resolver : неизменяемая карта ключ локации -> хранилище, заполняется при старте
type Resolver struct {
	defaultKey string
	stores     map[string]ports.ContentStore
}

func NewResolver(defaultKey string, stores map[string]ports.ContentStore) (*Resolver, error) {
	copied := make(map[string]ports.ContentStore, len(stores))
	for k, v := range stores {
		copied[k] = v
	}
	if _, ok := copied[defaultKey]; !ok {
		return nil, fmt.Errorf("[Storage] локация по умолчанию %q не настроена", defaultKey)
	}
	return &Resolver{defaultKey: defaultKey, stores: copied}, nil
}

// Resolve : пустой ключ означает локацию по умолчанию
func (r *Resolver) Resolve(key string) (ports.ContentStore, string, error) {
	if key == "" {
		key = r.defaultKey
	}
	store, ok := r.stores[key]
	if !ok {
		return nil, "", fmt.Errorf("[Storage] неизвестная локация хранения %q", key)
	}
	return store, key, nil
}

func (r *Resolver) DefaultKey() string {
	return r.defaultKey
}

func (r *Resolver) Keys() []string {
	keys := make([]string, 0, len(r.stores))
	for k := range r.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
