package badger

import "github.com/poiesic/lockbox/storage"

// Medium is the name reported by sources backed by BadgerDB.
const Medium = "badger"

// CollectionNames lists the names of all collections saved in the backend.
func CollectionNames(keys []string) []string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(key) <= len(storage.CollectionKeyPrefix) {
			continue
		}
		names = append(names, key[len(storage.CollectionKeyPrefix):])
	}
	return names
}
