package worker

// Background goroutine that moves failed jobs whose backoff has elapsed from
// the QueueRetry sorted set back onto their source queue.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 15 * time.Second
	retryBatchSize    = 50
)

func scheduleRetry(ctx context.Context, rdb *redis.Client, job Job, at time.Time) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.ZAdd(ctx, QueueRetry, redis.Z{Score: float64(at.Unix()), Member: encoded}).Err()
}

// StartRetryCron ticks every 15s until ctx is cancelled.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				if n, err := promoteDue(ctx, rdb, time.Now()); err != nil {
					log.Error().Err(err).Msg("retry_cron: failed to promote retries")
				} else if n > 0 {
					log.Info().Int("count", n).Msg("retry_cron: jobs requeued")
				}
			}
		}
	}()
}

// promoteDue requeues up to retryBatchSize jobs due at or before now and
// returns how many were moved. ZRem guards against two promoters racing.
func promoteDue(ctx context.Context, rdb *redis.Client, now time.Time) (int, error) {
	due, err := rdb.ZRangeByScore(ctx, QueueRetry, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, raw := range due {
		removed, err := rdb.ZRem(ctx, QueueRetry, raw).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Error().Err(err).Msg("retry_cron: dropping malformed job")
			continue
		}
		if err := push(ctx, rdb, job); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
