// package formatter provides functions to export catalog data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/outofbits/ccatalog/internal/shared"
)

// SongExport is one denormalized song row ready for export, with artist,
// album, license and tags resolved to display values.
type SongExport struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Artist    string   `json:"artist,omitempty"`
	Album     string   `json:"album,omitempty"`
	Duration  int      `json:"duration"`
	License   string   `json:"license,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ShareLink string   `json:"share_link,omitempty"`
}

// CatalogExport is a titled collection of song rows, typically a search
// result or a full catalog listing.
type CatalogExport struct {
	Title string       `json:"title"`
	Songs []SongExport `json:"songs"`
}

// ExportToCSV converts a CatalogExport to CSV format with columns: ID, Name, Artist, Album, Duration, License, Tags, Link
func ExportToCSV(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Artist", "Album", "Duration", "License", "Tags", "Link"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			song.ID,
			song.Name,
			song.Artist,
			song.Album,
			strconv.Itoa(song.Duration),
			song.License,
			strings.Join(song.Tags, " "),
			song.ShareLink,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a CatalogExport to Markdown format
func ExportToMarkdown(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Title))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(export.Songs)))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		duration := shared.FormatDuration(song.Duration)
		albumPart := ""
		if song.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album)
		}
		licensePart := ""
		if song.License != "" {
			licensePart = fmt.Sprintf(" — %s", song.License)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]%s\n", i+1, song.Artist, song.Name, albumPart, duration, licensePart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a CatalogExport to plain text format
func ExportToText(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Catalog: %s\n", export.Title))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(export.Songs)))

	for i, song := range export.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist, song.Name))
	}

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of the export.
func ToJSON(export *CatalogExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// WriteCSVExport exports the catalog rows to {base}_songs.csv.
//
// Defaults to the export title as the base filename.
func WriteCSVExport(export *CatalogExport, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = export.Title
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return songsFile, nil
}

// WriteMarkdownExport exports the catalog rows to Markdown in a dedicated directory.
//
// Directory name defaults to the export title. Creates {dir}/README.md.
func WriteMarkdownExport(export *CatalogExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = export.Title
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports the catalog rows to plain text.
//
// Defaults to {title}_songs.txt as the filename.
func WriteTextExport(export *CatalogExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_songs.txt", export.Title)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
