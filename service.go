package gasfetcher

import "context"

type (
	Service interface {
		Start(ctx context.Context)
		Stop()
		Wait()
		RunOneCycle(ctx context.Context) Quote
		Current() Quote
	}

	QuoteReader interface {
		Current() Quote
	}
)
