package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/outofbits/ccatalog/internal/search"
	"github.com/outofbits/ccatalog/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search answers a catalog search from the local database.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	phrase := cmd.StringArg("phrase")
	kind := search.Kind(cmd.String("kind"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if phrase == "" {
		return fmt.Errorf("%w: a search phrase is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := r.newSearchEngine(db)
	response, err := engine.Accept(search.NewRequest(phrase, kind))
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(searchResultPayload(response), pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Search Results for %q", phrase))
	if len(response.ExtractedTags) > 0 {
		r.writePlain("Matched tags: %s\n\n", strings.Join(response.ExtractedTags, ", "))
	}

	if response.Len() == 0 {
		r.writePlain("Nothing found.\n")
		return nil
	}

	for i, song := range response.Songs {
		r.writePlain("%d. %s [%s]\n", i+1, song.Name(), shared.FormatDuration(song.Duration()))
	}
	for i, album := range response.Albums {
		r.writePlain("%d. %s (album)\n", i+1, album.Name())
	}
	for i, artist := range response.Artists {
		r.writePlain("%d. %s (artist)\n", i+1, artist.Name())
	}

	return nil
}

// searchResultPayload flattens a search response into serializable maps.
func searchResultPayload(response *search.Response) map[string]any {
	payload := map[string]any{"total": response.Len()}
	if len(response.ExtractedTags) > 0 {
		payload["extracted_tags"] = response.ExtractedTags
	}

	if len(response.Songs) > 0 {
		songs := make([]map[string]any, 0, len(response.Songs))
		for _, song := range response.Songs {
			songs = append(songs, map[string]any{
				"id":       song.ID(),
				"name":     song.Name(),
				"duration": song.Duration(),
			})
		}
		payload["songs"] = songs
	}
	if len(response.Albums) > 0 {
		albums := make([]map[string]any, 0, len(response.Albums))
		for _, album := range response.Albums {
			albums = append(albums, map[string]any{
				"id":   album.ID(),
				"name": album.Name(),
			})
		}
		payload["albums"] = albums
	}
	if len(response.Artists) > 0 {
		artists := make([]map[string]any, 0, len(response.Artists))
		for _, artist := range response.Artists {
			artists = append(artists, map[string]any{
				"id":   artist.ID(),
				"name": artist.Name(),
			})
		}
		payload["artists"] = artists
	}

	return payload
}
