package domain

// Trade represents one resolved simulated trade. Trades are created
// sequentially during simulation and retained only as history.
type Trade struct {
	EntryIndex int
	ExitIndex  int // always > EntryIndex
	Direction  Direction
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	RiskAmount float64 // balance at entry × risk level
}

// EquityPoint is one point of the compounding equity curve. A simulation
// produces exactly len(trades)+1 points: the initial balance plus one
// point per resolved trade, in resolution order.
type EquityPoint struct {
	Index   int // bar index of the resolution (initial point uses -1)
	Balance float64
}
