package tasks

import (
	"fmt"

	"github.com/cratedig/cratedig/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	EnrichTracks
	ClassifyTracks
	Summarize
	SaveResults
	ExportCrates
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case EnrichTracks:
		return "enrich_tracks"
	case ClassifyTracks:
		return "classify_tracks"
	case Summarize:
		return "summarize"
	case SaveResults:
		return "save_results"
	case ExportCrates:
		return "export_crates"
	default:
		return ""
	}
}

func fetchingLibraryUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching library from %s...", name),
	}
}

func fetchedLibraryUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d unique tracks", count),
		Data:    count,
	}
}

func enrichingUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Enriching %d tracks with audio features and genres...", count),
	}
}

func classifyBatchUpdate(batch, total, resolved, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyTracks,
		Step:    batch,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Classified batch (%d/%d resolved)", batch, total, resolved, size),
	}
}

func summaryUpdate(summary models.Summary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Summarize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Classified %d/%d tracks (%.1f%% success)", summary.Total-summary.Unclassified, summary.Total, summary.SuccessRate*100),
		Data:    summary,
	}
}

func savingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveResults,
		Step:    1,
		Total:   1,
		Message: "Saving run to database...",
	}
}

func exportingUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCrates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exporting crates to %s...", dir),
	}
}

func exportedUpdate(files []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCrates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Wrote %d files", len(files)),
		Data:    files,
	}
}
