package yahoo

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// QuoteLister fetches snapshot quotes for a batch of symbols.
type QuoteLister interface {
	List(ctx context.Context, symbols []string) ([]models.Quote, error)
}

// FinanceGoLister lists quotes through the finance-go quote endpoint. The
// request carries ctx, so the caller's deadline bounds it.
type FinanceGoLister struct{}

func (FinanceGoLister) List(ctx context.Context, symbols []string) ([]models.Quote, error) {
	params := &quote.Params{Symbols: symbols}
	params.Context = &ctx
	iter := quote.ListP(params)
	var out []models.Quote
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		q := iter.Quote()
		if q == nil {
			continue
		}
		out = append(out, fromFinance(q))
	}
	if err := iter.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func fromFinance(q *finance.Quote) models.Quote {
	name := q.ShortName
	if name == "" {
		name = q.Symbol
	}
	out := models.Quote{
		Symbol:    q.Symbol,
		Name:      name,
		Open:      q.RegularMarketOpen,
		High:      q.RegularMarketDayHigh,
		Low:       q.RegularMarketDayLow,
		Close:     q.RegularMarketPrice,
		PrevClose: q.RegularMarketPreviousClose,
		Volume:    int64(q.RegularMarketVolume),
	}
	if q.RegularMarketTime > 0 {
		out.Time = time.Unix(int64(q.RegularMarketTime), 0)
	}
	return out
}

// BulkQuotes snapshots symbols in batches, each bounded by the client
// timeout. A failed batch fails the call;
// symbols the upstream does not know are simply absent from the result.
func (c *Client) BulkQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	var out []models.Quote
	for start := 0; start < len(symbols); start += c.batchSize {
		end := start + c.batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		batchCtx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
		quotes, err := c.lister.List(batchCtx, batch)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("bulk quotes batch %d-%d: %w", start, end, err)
		}
		c.logger.Debug().Int("requested", len(batch)).Int("returned", len(quotes)).Msg("Yahoo bulk quote batch")
		out = append(out, quotes...)
	}
	return out, nil
}
