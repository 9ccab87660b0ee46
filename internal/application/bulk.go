package application

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"vn.io.arda/reminder/internal/domain"
)

// ScheduleForAll applies ScheduleForItem to every item with bounded
// concurrency. Items are independent because their identifiers are disjoint.
func (s *Service) ScheduleForAll(ctx context.Context, items []domain.Item) BulkResult {
	log.Debug().Int("items", len(items)).Msg("scheduling notifications for items")

	reasons := make([]string, len(items))
	scheduled := make([]bool, len(items))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			scheduled[i], reasons[i] = s.scheduleItem(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	var res BulkResult
	for i, ok := range scheduled {
		if ok {
			res.Success++
			continue
		}
		res.Failed++
		res.Failures = append(res.Failures, Failure{ItemName: items[i].Name, Reason: reasons[i]})
	}

	log.Info().Int("success", res.Success).Int("failed", res.Failed).Msg("bulk scheduling completed")
	return res
}
