package service

import (
	"context"
	"fmt"
	"sort"

	"cardabot-backend/internal/cardano"
)

// CoinSelector picks the payment addresses funding a transaction. The rule is
// greedy: addresses are walked in descending balance order, a single address
// able to cover the whole requirement wins outright, and otherwise positive
// balances accumulate until the requirement is met. This is a heuristic, not
// a minimal-input-count solver; it trades optimality for one pass over the
// resolver's output.
type CoinSelector struct {
	ledger        cardano.Ledger
	feeUpperBound uint64
}

func NewCoinSelector(ledger cardano.Ledger, feeUpperBound uint64) *CoinSelector {
	return &CoinSelector{ledger: ledger, feeUpperBound: feeUpperBound}
}

type balancedAddress struct {
	addr    cardano.Address
	balance uint64
}

// Select returns the addresses whose combined balance covers totalOut plus
// the configured fee upper bound. An empty result means insufficient funds:
// a valid negative outcome, not an error.
func (cs *CoinSelector) Select(ctx context.Context, stake cardano.StakeAddress, totalOut uint64) ([]cardano.Address, error) {
	addresses, err := cs.ledger.AccountAddresses(ctx, stake, cardano.OrderDesc)
	if err != nil {
		return nil, fmt.Errorf("resolve payment addresses: %w", err)
	}

	balanced := make([]balancedAddress, 0, len(addresses))
	for _, addr := range addresses {
		balance, err := cs.ledger.AddressBalance(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", addr, err)
		}
		balanced = append(balanced, balancedAddress{addr: addr, balance: balance})
	}

	// Descending by balance; ties keep the resolver's order.
	sort.SliceStable(balanced, func(i, j int) bool {
		return balanced[i].balance > balanced[j].balance
	})

	required := totalOut + cs.feeUpperBound
	if required < totalOut {
		// The sum wrapped around uint64; no balance can cover it.
		return nil, nil
	}

	var selected []cardano.Address
	var accumulated uint64
	for _, item := range balanced {
		if item.balance >= required {
			// One address covers everything; minimal input count.
			return []cardano.Address{item.addr}, nil
		}
		if item.balance == 0 {
			continue
		}

		selected = append(selected, item.addr)
		accumulated += item.balance
		if accumulated >= required {
			return selected, nil
		}
	}

	// Not enough funds across every address.
	return nil, nil
}
