package domain

// ComputeReserve returns the funds withheld from a gross escrow amount.
// The projected fee never goes below feeFloor.
func ComputeReserve(currentFee, minimumBalance, feeFloor uint64) ReservedFunds {
	projected := max(currentFee, feeFloor)
	return ReservedFunds{
		MinimumBalance:      minimumBalance,
		ProjectedNetworkFee: projected,
		SafientReserve:      minimumBalance + projected,
	}
}

// NetAmount returns gross minus the reserve. ok is false when nothing would be deliverable.
func NetAmount(gross uint64, reserve ReservedFunds) (net uint64, ok bool) {
	if gross <= reserve.SafientReserve {
		return 0, false
	}
	return gross - reserve.SafientReserve, true
}

// Payout is the result of a live-balance settlement calculation
type Payout struct {
	Balance        uint64
	MinimumBalance uint64
	Fee            uint64
	// Sendable is balance - minimumBalance - fee floored at zero
	Sendable uint64
	// Amount is min(cap, Sendable)
	Amount uint64
}

// Shortfall is how much the balance lacks to cover minimum balance plus fee
func (p Payout) Shortfall() uint64 {
	required := p.MinimumBalance + p.Fee
	if p.Balance >= required {
		return 0
	}
	return required - p.Balance
}

// ComputePayout calculates what an escrow can pay out right now.
// Amount is zero when the balance cannot cover the minimum balance and fee.
func ComputePayout(limit, balance, minimumBalance, fee uint64) Payout {
	p := Payout{
		Balance:        balance,
		MinimumBalance: minimumBalance,
		Fee:            fee,
	}

	required := minimumBalance + fee
	if balance > required {
		p.Sendable = balance - required
	}
	p.Amount = min(limit, p.Sendable)
	return p
}
