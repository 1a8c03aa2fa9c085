// package resolver assembles a descriptive metadata record for a single track
// by orchestrating the catalog lookups
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/services"
	"github.com/desertthunder/tracknotes/internal/shared"
)

// pitchClasses maps the catalog's numeric key index (0-11) to note names.
var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// modes maps the catalog's numeric mode flag (0/1) to a modality name.
var modes = [2]string{"major", "minor"}

// localeToken matches locale path segments such as /intl-ja or /intl-pt-br
// that the catalog web player injects into shared links.
var localeToken = regexp.MustCompile(`/intl-[a-z]{2,3}(?:-[a-z]{2,4})?`)

// Resolver produces a [models.TrackRecord] for a catalog reference. It holds
// no state between calls; every resolve hits the catalog fresh, nothing is
// cached or deduplicated.
type Resolver struct {
	catalog services.Catalog
}

// New creates a Resolver over the given catalog client.
func New(catalog services.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Normalize repairs a catalog reference that was mangled in transit. It runs
// exactly three textual substitutions, in order: strip the locale token,
// collapse doubled path separators, restore the scheme's double slash. The
// result is stable under repeated application.
func Normalize(ref string) string {
	ref = localeToken.ReplaceAllString(ref, "")
	ref = strings.ReplaceAll(ref, "//", "/")
	ref = strings.Replace(ref, ":/", "://", 1)
	return ref
}

// Resolve looks up the track behind ref and composes its metadata record.
//
// A reference that does not resolve to a track at all fails with
// [shared.ErrLookup]; any later failure in the pipeline (related artists,
// audio features, artist detail, malformed catalog data) fails with
// [shared.ErrResolution] wrapping the cause. Raw transport errors never
// escape this boundary.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*models.TrackRecord, error) {
	ref = Normalize(ref)

	track, err := r.catalog.GetTrack(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLookup, err)
	}

	artistName, artistID, artistURI, err := primaryArtist(track)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolution, err)
	}

	related, err := r.catalog.GetRelatedArtists(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolution, err)
	}

	relatedNames := make([]string, 0, len(related))
	for _, artist := range related {
		relatedNames = append(relatedNames, artist.Name)
	}

	features, err := r.catalog.GetAudioFeatures(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolution, err)
	}

	key, mode, err := keyAndMode(features)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolution, err)
	}

	artist, err := r.catalog.GetArtist(ctx, artistURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolution, err)
	}

	description := strings.Join([]string{
		"Related Artists: " + strings.Join(relatedNames, ", "),
		"Genres: " + strings.Join(artist.Genres, ", "),
		fmt.Sprintf("BPM: %v", features.Tempo),
		fmt.Sprintf("Key: %s, Mode: %s", key, mode),
	}, "\n")

	return &models.TrackRecord{
		ArtistName:  artistName,
		TrackName:   track.Name,
		Description: description,
	}, nil
}

// primaryArtist extracts the display name, ID, and URI of the track's primary
// artist. The display name comes from the album credit, the lookup identity
// from the track credit, mirroring how the catalog attributes releases.
func primaryArtist(track *services.CatalogTrack) (name, id, uri string, err error) {
	if len(track.Artists) == 0 || len(track.Album.Artists) == 0 {
		return "", "", "", fmt.Errorf("track %q has no artist credit", track.Name)
	}

	name = track.Album.Artists[0].Name
	id = track.Artists[0].ID
	uri = track.Album.Artists[0].URI
	if uri == "" {
		uri = track.Album.Artists[0].ID
	}

	if name == "" || id == "" {
		return "", "", "", fmt.Errorf("track %q has an incomplete artist credit", track.Name)
	}

	return name, id, uri, nil
}

// keyAndMode maps the numeric audio features onto their display names. Values
// outside the table ranges mean the catalog returned garbage (or no detected
// key) and are rejected rather than mislabeled.
func keyAndMode(features *services.AudioFeatures) (string, string, error) {
	if features.Key < 0 || features.Key >= len(pitchClasses) {
		return "", "", fmt.Errorf("key index %d out of range", features.Key)
	}
	if features.Mode < 0 || features.Mode >= len(modes) {
		return "", "", fmt.Errorf("mode flag %d out of range", features.Mode)
	}
	return pitchClasses[features.Key], modes[features.Mode], nil
}
