// package formatter provides functions to export classification results to various formats (JSON, CSV, plain-text crate lists)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/shared"
)

// Document is the canonical export representation of one classification run.
type Document struct {
	Metadata Metadata                 `json:"metadata"`
	Summary  models.Summary           `json:"summary"`
	Tracks   []models.ClassifiedTrack `json:"tracks"`
}

// Metadata describes how and when a run was produced.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Provider    string    `json:"provider"`
	BatchSize   int       `json:"batch_size"`
}

// NewDocument assembles a Document from a completed run.
func NewDocument(provider string, batchSize int, tracks []models.ClassifiedTrack, summary models.Summary) Document {
	return Document{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			Provider:    provider,
			BatchSize:   batchSize,
		},
		Summary: summary,
		Tracks:  tracks,
	}
}

// ToJSON renders the full document as indented JSON.
func (d Document) ToJSON() ([]byte, error) {
	return shared.MarshalJSON(d, true)
}

// ToCSV renders the track list as CSV with columns: ID, Title, Artists, Genres, Category, Source
func (d Document) ToCSV() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Genres", "Category", "Source"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range d.Tracks {
		category := ""
		if track.Classification != nil {
			category = string(*track.Classification)
		}
		record := []string{
			track.ID,
			track.Name,
			strings.Join(track.Artists, "; "),
			strings.Join(track.Genres, "; "),
			category,
			track.Source,
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

// CrateText renders a plain-text track list for one category. Tracks that
// resolved to a different category or none at all are skipped.
func (d Document) CrateText(category models.Category) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Crate: %s\n", category))
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", d.Metadata.GeneratedAt.Format(time.RFC3339)))

	n := 0
	for _, track := range d.Tracks {
		if track.Classification == nil || *track.Classification != category {
			continue
		}
		n++
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", n, strings.Join(track.Artists, ", "), track.Name))
	}
	if n == 0 {
		buf.WriteString("(empty)\n")
	}

	return buf.Bytes()
}

// ExportAll writes the JSON document, the CSV track list, and one crate file
// per category into dir, returning the paths of every file written.
func (d Document) ExportAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var files []string

	jsonData, err := d.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}
	jsonFile := filepath.Join(dir, "classified_tracks.json")
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write JSON file: %w", err)
	}
	files = append(files, jsonFile)

	csvData, err := d.ToCSV()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	csvFile := filepath.Join(dir, "classified_tracks.csv")
	if err := os.WriteFile(csvFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	files = append(files, csvFile)

	for _, category := range models.Categories() {
		crateFile := filepath.Join(dir, crateFilename(category))
		if err := os.WriteFile(crateFile, d.CrateText(category), 0644); err != nil {
			return nil, fmt.Errorf("failed to write crate file: %w", err)
		}
		files = append(files, crateFile)
	}

	return files, nil
}

// ReadTracks loads a track list from a JSON file. Accepts either a bare track
// array or a full Document (in which case classifications are discarded).
func ReadTracks(path string) ([]models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracks file: %w", err)
	}

	var tracks []models.Track
	if err := json.Unmarshal(data, &tracks); err == nil {
		return tracks, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: not a track list or results document", shared.ErrInvalidInput)
	}
	tracks = make([]models.Track, 0, len(doc.Tracks))
	for _, ct := range doc.Tracks {
		tracks = append(tracks, ct.Track)
	}
	return tracks, nil
}

// crateFilename converts a category name into a filesystem-safe filename.
func crateFilename(category models.Category) string {
	name := strings.ToLower(string(category))
	name = strings.ReplaceAll(name, " ", "_")
	return "crate_" + name + ".txt"
}
