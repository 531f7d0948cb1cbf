package formatter

import (
	"path/filepath"
	"strings"
	"testing"

	tu "github.com/outofbits/ccatalog/internal/testing"
)

func sampleExport() *CatalogExport {
	return &CatalogExport{
		Title: "jazz-search",
		Songs: []SongExport{
			{
				ID:        "song1",
				Name:      "Dusty Roads Pt. 1",
				Artist:    "Lorem Guitars",
				Album:     "Dusty Roads",
				Duration:  214,
				License:   "CC-BY-NC-SA",
				Tags:      []string{"jazz", "love"},
				ShareLink: "https://share.example.org/track/77001",
			},
			{
				ID:       "song2",
				Name:     "Night Drive",
				Artist:   "Ipsum Brass",
				Duration: 187,
				License:  "CC-BY",
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Name,Artist,Album,Duration,License,Tags,Link") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "song1") {
			t.Errorf("CSV missing song1 ID")
		}
		if !strings.Contains(output, "Dusty Roads Pt. 1") {
			t.Errorf("CSV missing song1 name")
		}
		if !strings.Contains(output, "CC-BY-NC-SA") {
			t.Errorf("CSV missing song1 license")
		}
		if !strings.Contains(output, "jazz love") {
			t.Errorf("CSV missing song1 tags")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# jazz-search") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Songs**: 2") {
			t.Errorf("Markdown missing song count")
		}
		if !strings.Contains(output, "## Songs") {
			t.Errorf("Markdown missing songs section")
		}
		if !strings.Contains(output, "1. Lorem Guitars - Dusty Roads Pt. 1 (Dusty Roads) [3:34] — CC-BY-NC-SA") {
			t.Errorf("Markdown missing full song line, got: %s", output)
		}
		if !strings.Contains(output, "2. Ipsum Brass - Night Drive [3:07] — CC-BY") {
			t.Errorf("Markdown must omit the album part when empty, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Catalog: jazz-search") {
			t.Errorf("text missing title")
		}
		if !strings.Contains(output, "1. Lorem Guitars - Dusty Roads Pt. 1") {
			t.Errorf("text missing song line")
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(sampleExport())
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		if !strings.Contains(string(data), `"name": "Dusty Roads Pt. 1"`) {
			t.Errorf("JSON missing song name, got: %s", data)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		file, err := WriteCSVExport(sampleExport(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		if file != base+"_songs.csv" {
			t.Errorf("unexpected file name: %s", file)
		}
		tu.AssertFileExists(t, file)
	})

	t.Run("WriteCSVExportDefaultsToTitle", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, t.TempDir())
		defer tu.MustChdir(t, wd)

		file, err := WriteCSVExport(sampleExport(), "")
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		if file != "jazz-search_songs.csv" {
			t.Errorf("unexpected file name: %s", file)
		}
		tu.AssertFileExists(t, file)
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "jazz-search")

		file, err := WriteMarkdownExport(sampleExport(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if file != dir+"/README.md" {
			t.Errorf("unexpected file name: %s", file)
		}
		tu.AssertDirExists(t, dir)
		if content := tu.MustReadFile(t, file); !strings.Contains(content, "# jazz-search") {
			t.Errorf("Markdown file missing title, got: %s", content)
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.txt")

		file, err := WriteTextExport(sampleExport(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}

		if content := tu.MustReadFile(t, file); !strings.Contains(content, "Night Drive") {
			t.Errorf("text file missing song")
		}
	})
}
