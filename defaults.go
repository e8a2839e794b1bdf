package allocation

// DefaultHoldings is the starter holdings table written by `alloc init`.
func DefaultHoldings() Holdings {
	return Holdings{
		{Name: "BTC/ETH", Category: "crypto", Quantity: Q(3750.0), Unit: SyntheticTotalUSD},
		{Name: "VEA", Category: "ETF", Quantity: Q(25), Unit: Shares},
		{Name: "TSLA", Category: "stock", Quantity: Q(7.5), Unit: Shares},
		{Name: "CVX", Category: "stock", Quantity: Q(6), Unit: Shares},
		{Name: "ONDS", Category: "stock", Quantity: Q(50), Unit: Shares},
		{Name: "OPTIONS", Category: "options", Quantity: Q(3000), Unit: SyntheticTotalUSD},
		{Name: "CASH_USD", Category: "cash", Quantity: Q(1730), Unit: AmountUSD},
		{Name: "CASH_TWD", Category: "cash", Quantity: Q(140000), Unit: AmountTWD},
	}
}

// DefaultTargets is the starter target allocation written by `alloc init`.
func DefaultTargets() TargetAllocation {
	return TargetAllocation{
		{Bucket: "BTC/ETH", Fraction: P(0.15)},
		{Bucket: "VEA", Fraction: P(0.20)},
		{Bucket: "TSLA", Fraction: P(0.10)},
		{Bucket: "CVX", Fraction: P(0.05)},
		{Bucket: "ONDS", Fraction: P(0.05)},
		{Bucket: "OPTIONS", Fraction: P(0.20)},
		{Bucket: "CASH", Fraction: P(0.25)},
	}
}
