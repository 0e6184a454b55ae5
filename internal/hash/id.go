// Package hash provides the fast name-to-id hashing used by the trajectory
// ids/names table and by molecule lookup.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string, used as the map key for
// O(1) name lookups (trajectory block names, molecule names).
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
