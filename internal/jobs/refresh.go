package jobs

import (
	"context"

	"github.com/stroytech/stroybot/internal/service"
)

// Ingester re-runs a full corpus ingestion pass.
type Ingester interface {
	Ingest(ctx context.Context) (service.IngestStats, error)
}

// CorpusRefresher periodically re-ingests the corpus so a replaced or
// extended source file shows up without a restart. Content-addressed chunk
// ids make the refresh safe to run over an unchanged corpus.
type CorpusRefresher struct {
	ingester Ingester
}

func NewCorpusRefresher(ingester Ingester) *CorpusRefresher {
	return &CorpusRefresher{ingester: ingester}
}

func (r *CorpusRefresher) ProcessJobs(ctx context.Context) error {
	_, err := r.ingester.Ingest(ctx)
	return err
}
