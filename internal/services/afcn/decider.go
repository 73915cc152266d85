package afcn

import (
	"fmt"
	"math"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
)

// Proposal is the order the pricing phase settled on. Volume is the
// positive quantity for Side; zero means no order this tick.
type Proposal struct {
	Side   models.Side
	Price  float64
	Volume int
}

// Propose turns a trial price drawn from [b.MinBuy, b.MaxSell] into an order.
// Below the satisfaction price the agent buys, clipping to the best sell
// quote when that quote undercuts the trial; above it the agent sells,
// clipping to the best buy quote when that quote beats the trial.
func Propose(d DemandModel, b Bounds, m repository.Market, position int, trial float64) (Proposal, error) {
	price := trial
	if trial < b.Satisfaction {
		quote, ok := m.BestSellQuote()
		if !ok {
			quote = m.CurrentPrice()
		}
		if quote < trial {
			price = clamp(quote, b.MinBuy, b.MaxSell)
		}
		v, err := volume(d.Demand(price) - float64(position))
		return Proposal{Side: models.SideBuy, Price: price, Volume: v}, err
	}

	quote, ok := m.BestBuyQuote()
	if !ok {
		quote = m.CurrentPrice()
	}
	if trial < quote {
		price = clamp(quote, b.MinBuy, b.MaxSell)
	}
	v, err := volume(float64(position) - d.Demand(price))
	return Proposal{Side: models.SideSell, Price: price, Volume: v}, err
}

// volume truncates toward zero so rounding never overspends the budget.
// A non-positive quantity means the clipped price left nothing to trade.
// Quantities that do not fit an order volume are rejected, not clipped.
func volume(q float64) (int, error) {
	if err := guard("volume", q); err != nil {
		return 0, err
	}
	if q <= 0 {
		return 0, nil
	}
	if q > math.MaxInt32 {
		return 0, fmt.Errorf("%w: volume %g exceeds %d", ErrInvalidValue, q, math.MaxInt32)
	}
	return int(q), nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

// cancelStale emits a cancel for every tracked order in marketID that still
// has volume left and drops all of that market's entries from the list.
func (a *Agent) cancelStale(marketID string, tick int) []models.OrderIntent {
	var cancels []models.OrderIntent
	kept := a.tracked[:0]
	for _, t := range a.tracked {
		if t.Order.MarketID != marketID {
			kept = append(kept, t)
			continue
		}
		if t.Remaining != 0 {
			cancels = append(cancels, models.CancelIntent(models.CancelOrder{
				OrderID:  t.Order.ID,
				AgentID:  a.id,
				MarketID: marketID,
				Tick:     tick,
			}))
		}
	}
	a.tracked = kept
	return cancels
}
