package tasks

import "fmt"

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
	PlanRun Phase = iota
	FetchArtists
	FetchAlbums
	FetchSongs
	FinishRun
)

func (p Phase) String() string {
	switch p {
	case PlanRun:
		return "plan_run"
	case FetchArtists:
		return "fetch_artists"
	case FetchAlbums:
		return "fetch_albums"
	case FetchSongs:
		return "fetch_songs"
	case FinishRun:
		return "finish_run"
	default:
		return ""
	}
}

func planRunUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Starting %s catalog synchronization...", service),
	}
}

func fetchArtistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtists,
		Step:    1,
		Total:   3,
		Message: "Harvesting artists from the remote catalog...",
	}
}

func fetchAlbumsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    2,
		Total:   3,
		Message: "Harvesting albums from the remote catalog...",
	}
}

func fetchSongsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSongs,
		Step:    3,
		Total:   3,
		Message: "Harvesting songs from the remote catalog...",
	}
}

func finishRunUpdate(status string, ingested, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FinishRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Synchronization %s: %d records ingested, %d skipped", status, ingested, skipped),
	}
}
