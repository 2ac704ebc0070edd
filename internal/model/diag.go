package model

// Diagnostics aggregates non-fatal findings from one pipeline run. Geometry
// errors are contained per feature or per zone and reported here instead of
// aborting the run.
type Diagnostics struct {
	RunID               string              `json:"run_id"`
	Features            int                 `json:"features"`
	Obstacles           int                 `json:"obstacles"`
	Unclassified        int                 `json:"unclassified"`
	UnclassifiedSamples []map[string]string `json:"unclassified_samples,omitempty"`
	RepairedGeometries  int                 `json:"repaired_geometries"`
	DroppedObstacles    int                 `json:"dropped_obstacles"`
	DiscardedCandidates int                 `json:"discarded_candidates"`
	Notes               []string            `json:"notes,omitempty"`
}

// Note appends a free-form diagnostic note.
func (d *Diagnostics) Note(msg string) {
	d.Notes = append(d.Notes, msg)
}
