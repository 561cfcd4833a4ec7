package replication

import "github.com/google/uuid"

// UserKey identifies a connected user for the lifetime of its connection.
type UserKey string

// EntityKey identifies a replicated entity. Keys are never reused while
// the process lives.
type EntityKey string

// RoomKey identifies a visibility scope.
type RoomKey string

// GenerateUserKey generates a unique user key.
func GenerateUserKey() UserKey {
	return UserKey(uuid.NewString())
}

// GenerateEntityKey generates a unique entity key.
func GenerateEntityKey() EntityKey {
	return EntityKey(uuid.NewString())
}

// GenerateRoomKey generates a unique room key.
func GenerateRoomKey() RoomKey {
	return RoomKey(uuid.NewString())
}
