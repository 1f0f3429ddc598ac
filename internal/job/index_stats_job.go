package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/vectorstore"
)

// IndexStatsJob periodically logs the point count of the vector collection,
// a cheap signal that the index is reachable and populated.
type IndexStatsJob struct {
	index vectorstore.Index
}

func NewIndexStatsJob(index vectorstore.Index) *IndexStatsJob {
	return &IndexStatsJob{index: index}
}

func (j *IndexStatsJob) Name() string {
	return "index_stats"
}

func (j *IndexStatsJob) Run(ctx context.Context) error {
	if j.index == nil {
		return nil
	}
	count, err := j.index.Count(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("vector index stats", zap.Int64("points", count))
	return nil
}
