package paper

import (
	"sort"

	"FinSim/internal/domain/models"
)

type resting struct {
	order     models.NewOrder
	remaining int
	expireAt  int
	seq       uint64
}

// book keeps bids best-first (highest price) and asks best-first (lowest
// price); equal prices keep arrival order.
type book struct {
	bids []*resting
	asks []*resting
}

func (b *book) side(s models.Side) *[]*resting {
	if s == models.SideBuy {
		return &b.bids
	}
	return &b.asks
}

func (b *book) insert(r *resting) {
	levels := b.side(r.order.Side)
	better := func(i int) bool {
		o := (*levels)[i]
		if r.order.Side == models.SideBuy {
			return o.order.Price < r.order.Price
		}
		return o.order.Price > r.order.Price
	}
	i := sort.Search(len(*levels), better)
	*levels = append(*levels, nil)
	copy((*levels)[i+1:], (*levels)[i:])
	(*levels)[i] = r
}

func (b *book) remove(orderID, agentID string) bool {
	for _, levels := range []*[]*resting{&b.bids, &b.asks} {
		for i, r := range *levels {
			if r.order.ID == orderID && r.order.AgentID == agentID {
				*levels = append((*levels)[:i], (*levels)[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (b *book) expire(tick int) int {
	n := 0
	for _, levels := range []*[]*resting{&b.bids, &b.asks} {
		kept := (*levels)[:0]
		for _, r := range *levels {
			if tick >= r.expireAt {
				n++
				continue
			}
			kept = append(kept, r)
		}
		*levels = kept
	}
	return n
}

func (b *book) best(s models.Side) (float64, bool) {
	levels := *b.side(s)
	if len(levels) == 0 {
		return 0, false
	}
	return levels[0].order.Price, true
}

// crosses reports whether an incoming order at price can trade with r.
func crosses(in models.Side, price float64, r *resting) bool {
	if in == models.SideBuy {
		return r.order.Price <= price
	}
	return r.order.Price >= price
}

func opposite(s models.Side) models.Side {
	if s == models.SideBuy {
		return models.SideSell
	}
	return models.SideBuy
}
