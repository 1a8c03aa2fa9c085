// Package services wraps the two external collaborators of the tracknotes
// pipeline behind narrow interfaces.
//
// [Catalog] covers the four streaming-catalog lookups the metadata resolver
// needs: track entity, related artists, audio features, and artist detail.
// [SpotifyCatalog] is the production implementation, authenticating with the
// OAuth2 client-credentials flow.
//
// [Workspace] covers the single "create page" call against the note-taking
// workspace. [NotionWorkspace] is the production implementation. Page
// creation is not idempotent, so delivery failures are surfaced to the
// caller and never retried inside the client.
//
// Both clients are constructed explicitly at process start and injected into
// their consumers; nothing in this package reaches for ambient globals.
package services
