package worker

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/cfg"
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/jitter"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
)

// DiscountSweeper периодически прогоняет календарный проход по статусам скидок.
// Интервал берётся с джиттером, чтобы реплики сервиса не просыпались синхронно;
// сам проход идемпотентен, поэтому пересечение запусков безвредно.
type DiscountSweeper struct {
	discountUC *usecase.DiscountUC
	cfg        *cfg.SweeperCfg
	logger     logger.Logger
	stop       chan struct{}
	wg         sync.WaitGroup
}

func NewDiscountSweeper(discountUC *usecase.DiscountUC, cfg *cfg.SweeperCfg, logger logger.Logger) *DiscountSweeper {
	return &DiscountSweeper{
		discountUC: discountUC,
		cfg:        cfg,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

func (s *DiscountSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *DiscountSweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *DiscountSweeper) run(ctx context.Context) {
	// Первый проход сразу на старте: подбираем скидки, чьи границы
	// прошли, пока сервис не работал.
	s.sweep(ctx)

	for {
		timer := time.NewTimer(jitter.Duration(s.cfg.Interval, s.cfg.JitterFactor))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			s.sweep(ctx)
		}
	}
}

func (s *DiscountSweeper) sweep(ctx context.Context) {
	res, err := s.discountUC.SweepDiscountStatuses(ctx, time.Now())
	if err != nil {
		s.logger.Warnf("discount sweep failed: %v", err)
		return
	}

	if res.Activated > 0 || res.Deactivated > 0 {
		s.logger.Infof("discount sweep: activated=%d deactivated=%d", res.Activated, res.Deactivated)
	}
}
