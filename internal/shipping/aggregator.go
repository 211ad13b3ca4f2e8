package shipping

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Aggregator fans a quote request out to every registered provider.
//
// Failure policy: a provider that errors at call time is logged and
// skipped so the remaining providers still contribute; a provider that
// returns no quotes is omitted from the result. Output order always
// mirrors registration order, regardless of which goroutine finishes
// first.
type Aggregator struct {
	registry *Registry
	log      *zap.Logger
}

func NewAggregator(registry *Registry, log *zap.Logger) *Aggregator {
	return &Aggregator{registry: registry, log: log}
}

func (a *Aggregator) GetMethods(ctx context.Context, c Context) []MethodResult {
	providers := a.registry.List()
	if len(providers) == 0 {
		return []MethodResult{}
	}

	// One slot per provider keeps registration order stable.
	slots := make([][]Quote, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("shipping provider panicked, skipping",
						zap.String("provider", p.Code()),
						zap.Any("panic", r),
					)
				}
			}()

			quotes, err := p.GetQuotes(ctx, c)
			if err != nil {
				a.log.Warn("shipping provider failed, skipping",
					zap.String("provider", p.Code()),
					zap.Error(err),
				)
				return
			}
			slots[i] = quotes
		}(i, p)
	}
	wg.Wait()

	results := make([]MethodResult, 0, len(providers))
	for i, p := range providers {
		if len(slots[i]) == 0 {
			continue
		}
		results = append(results, MethodResult{
			ProviderCode: p.Code(),
			ProviderName: p.Name(),
			Quotes:       slots[i],
		})
	}
	return results
}
