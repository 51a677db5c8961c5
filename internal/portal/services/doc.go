// Package services implements the portal's member-facing workflows on top
// of the sync engine: identity and sessions, events with attendee sets, the
// request approval pipeline, direct messages, bulletins, the shared
// gallery and the notification feed. Services never touch storage directly;
// every mutation goes through engine.Apply so it follows the same local
// first, remote mirror write path.
package services
