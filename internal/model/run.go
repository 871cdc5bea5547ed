package model

import "time"

// RunStatus represents the current state of a scout run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusSearching RunStatus = "searching"
	RunStatusDeriving  RunStatus = "deriving"
	RunStatusWriting   RunStatus = "writing"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// Target identifies the company a scout run derives addresses for.
type Target struct {
	Company    string           `json:"company"`
	Location   string           `json:"location"`
	Pages      int              `json:"pages"`
	Convention NamingConvention `json:"convention"`
}

// Run represents a single scout run for a target company.
type Run struct {
	ID        string     `json:"id"`
	Target    Target     `json:"target"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	RecordsFound int    `json:"records_found"`
	RowsEmitted  int    `json:"rows_emitted"`
	Deduped      int    `json:"deduped"`
	SkippedRows  int    `json:"skipped_rows"`
	DurationMS   int64  `json:"duration_ms"`
	SheetName    string `json:"sheet_name,omitempty"`
	Error        string `json:"error,omitempty"`
}
