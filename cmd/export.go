package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/outofbits/ccatalog/internal/formatter"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes catalog songs to CSV, Markdown, plain text or JSON.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	phrase := cmd.StringArg("phrase")
	format := cmd.String("format")
	output := cmd.String("output")
	title := cmd.String("title")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	export, err := r.collectExport(db, phrase, title)
	if err != nil {
		return err
	}

	r.logger.Info("exporting catalog songs", "format", format, "songs", len(export.Songs))

	switch format {
	case "csv":
		file, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d songs to %s\n", len(export.Songs), file)
	case "markdown", "md":
		file, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d songs to %s\n", len(export.Songs), file)
	case "text", "txt":
		file, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d songs to %s\n", len(export.Songs), file)
	case "json":
		data, err := formatter.ToJSON(export)
		if err != nil {
			return err
		}
		if output == "" {
			r.output.Write(data)
			r.output.Write([]byte("\n"))
			return nil
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON file: %w", err)
		}
		r.writePlain("✓ Exported %d songs to %s\n", len(export.Songs), output)
	default:
		return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}

	return nil
}

// collectExport assembles denormalized song rows, optionally filtered by a
// name phrase.
func (r *Runner) collectExport(db *sql.DB, phrase, title string) (*formatter.CatalogExport, error) {
	s := newStore(db)

	var songs []*models.PersistedSong
	var err error
	if phrase == "" {
		songs, err = s.songs.List(nil)
	} else {
		songs, err = s.songs.Search(phrase, nil, r.config.Search.MaxResults)
	}
	if err != nil {
		return nil, err
	}

	artistNames := map[string]string{}
	albumNames := map[string]string{}
	licenseTypes := map[string]string{}

	export := &formatter.CatalogExport{Title: title}
	for _, song := range songs {
		row := formatter.SongExport{
			ID:        song.ID(),
			Name:      song.Name(),
			Duration:  song.Duration(),
			ShareLink: song.ShareLink(),
		}

		if id := song.ArtistID(); id != "" {
			if _, ok := artistNames[id]; !ok {
				artist, err := s.artists.Get(id)
				if err != nil {
					return nil, err
				}
				artistNames[id] = artist.Name()
			}
			row.Artist = artistNames[id]
		}

		if id := song.AlbumID(); id != "" {
			if _, ok := albumNames[id]; !ok {
				album, err := s.albums.Get(id)
				if err != nil {
					return nil, err
				}
				albumNames[id] = album.Name()
			}
			row.Album = albumNames[id]
		}

		if id := song.LicenseID(); id != "" {
			if _, ok := licenseTypes[id]; !ok {
				license, err := s.licenses.Get(id)
				if err != nil {
					return nil, err
				}
				licenseTypes[id] = license.Type()
			}
			row.License = licenseTypes[id]
		}

		tags, err := s.songs.Tags(song.ID())
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			row.Tags = append(row.Tags, tag.Name())
		}

		export.Songs = append(export.Songs, row)
	}

	return export, nil
}
