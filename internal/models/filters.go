package models

// DayQuery selects one subject-day for the timeline, stops and export endpoints
type DayQuery struct {
	Date   string `form:"date" binding:"required"` // YYYY-MM-DD
	Format string `form:"format"`                  // csv, xlsx (export only)
}

// IngestFixRequest is one fix in POST /subjects/:subjectId/fixes
type IngestFixRequest struct {
	RawFix
	Trigger FixTrigger `json:"trigger"`
}

// IngestResult reports the outcome for one fix
type IngestResult struct {
	Timestamp string `json:"timestamp"`
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
	SampleID  int64  `json:"sampleId,omitempty"`
}
