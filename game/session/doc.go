// Package session keeps the Game of Fifteen sessions.
//
// Manager is a thread-safe, case-insensitive map of sessions. Generated IDs
// are 4 lowercase hex characters; callers may also pick their own ID made of
// letters, digits, '-' and '_'.
//
// A Manager can be backed by a SessionPersistence:
//   - FilePersistence writes one JSON document per session into a directory.
//   - RedisPersistence stores the same document under fifteen:session:<id>,
//     with an optional TTL.
//
// Documents embed the preset the session was started from, so a session
// survives edits or removal of its preset file. Sessions missing from memory
// are loaded from persistence on first access.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", preset)
package session
