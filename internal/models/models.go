// package models defines the data model for the tracknotes web service
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TrackRecord is the composed result of a metadata resolve operation. Its
// serialized JSON form is what gets persisted as a saved search or delivered
// to the note workspace; the persistence layers treat it as an opaque blob.
type TrackRecord struct {
	ArtistName  string `json:"artist_name"`
	TrackName   string `json:"track_name"`
	Description string `json:"description"`
}

// Marshal serializes the record to its canonical JSON form.
func (r TrackRecord) Marshal() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal track record: %w", err)
	}
	return string(data), nil
}

// Title returns the workspace page title for this record.
func (r TrackRecord) Title() string {
	return fmt.Sprintf("%s by %s", r.TrackName, r.ArtistName)
}

// ParseTrackRecord deserializes a track record from its JSON form. A record
// without an artist or track name is rejected; the description may be empty.
func ParseTrackRecord(content string) (TrackRecord, error) {
	var record TrackRecord
	if err := json.Unmarshal([]byte(content), &record); err != nil {
		return TrackRecord{}, fmt.Errorf("failed to parse track record: %w", err)
	}
	if record.ArtistName == "" || record.TrackName == "" {
		return TrackRecord{}, fmt.Errorf("track record missing artist_name or track_name")
	}
	return record, nil
}

// User is a registered account. The username is case-sensitive and unique;
// only the salted password hash is ever stored.
type User struct {
	ID           string
	Sequence     int
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SavedSearch is a persisted, owned copy of a confirmed TrackRecord. Content
// holds the exact serialized record. Rows are immutable once created and
// always reference exactly one existing user.
type SavedSearch struct {
	ID        string
	Sequence  int
	UserID    string
	Content   string
	CreatedAt time.Time
}

// Record parses the stored content back into a TrackRecord.
func (s SavedSearch) Record() (TrackRecord, error) {
	return ParseTrackRecord(s.Content)
}

// Session binds a browser session to one authenticated username. It is an
// explicit value passed to every operation that needs identity; the username
// it carries is re-resolved against the user store at use time, never trusted
// as a copy of user state.
type Session struct {
	ID       string
	Username string
	IssuedAt time.Time
}
