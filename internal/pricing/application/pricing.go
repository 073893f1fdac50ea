package application

import (
	"context"

	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/domain"
	"github.com/wyfcoding/hpcmontecarlo/pkg/metrics"
)

// PricingService 定价门面服务。
type PricingService struct {
	Command *PricingCommandService
}

// NewPricingService 构造函数。
func NewPricingService(engine *domain.Engine, recorder metrics.Recorder) *PricingService {
	return &PricingService{
		Command: NewPricingCommandService(engine, recorder),
	}
}

// --- Command Facade ---

func (s *PricingService) PriceEuropean(ctx context.Context, cmd PriceOptionCommand) (*PriceDTO, error) {
	return s.Command.PriceOption(ctx, domain.StyleEuropean, cmd)
}

func (s *PricingService) PriceAsian(ctx context.Context, cmd PriceOptionCommand) (*PriceDTO, error) {
	return s.Command.PriceOption(ctx, domain.StyleAsian, cmd)
}

func (s *PricingService) PriceAll(ctx context.Context, cmd PriceAllCommand) (*ReportDTO, error) {
	return s.Command.PriceAll(ctx, cmd)
}
