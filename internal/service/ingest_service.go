package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/ingest"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// FixAcceptor is satisfied by *ingest.Ingestor
type FixAcceptor interface {
	Accept(ctx context.Context, subjectID string, fix models.RawFix, trigger models.FixTrigger) (ingest.Result, error)
}

// IngestService feeds uploaded fixes into the ingestor
type IngestService struct {
	acceptor FixAcceptor
}

// NewIngestService creates a new ingest service
func NewIngestService(acceptor FixAcceptor) *IngestService {
	return &IngestService{acceptor: acceptor}
}

// IngestBatch offers the fixes in timestamp order. Invalid fixes are reported in
// their result and do not stop the batch; a storage failure does.
func (s *IngestService) IngestBatch(ctx context.Context, subjectID string, fixes []models.IngestFixRequest) ([]models.IngestResult, error) {
	sorted := make([]models.IngestFixRequest, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	results := make([]models.IngestResult, 0, len(sorted))
	for _, f := range sorted {
		result := models.IngestResult{Timestamp: f.Timestamp.UTC().Format(time.RFC3339Nano)}

		res, err := s.acceptor.Accept(ctx, subjectID, f.RawFix, f.Trigger)
		switch {
		case errors.Is(err, ingest.ErrInvalidFix):
			result.Reason = err.Error()
		case err != nil:
			return results, err
		default:
			result.Accepted = res.Accepted
			result.Reason = string(res.Reason)
			if res.Sample != nil {
				result.SampleID = res.Sample.ID
			}
		}
		results = append(results, result)
	}
	return results, nil
}
