package domain

import "time"

const (
	// Ledger constants (microAlgos)
	MINIMUM_BALANCE_MICROALGOS = uint64(100_000)
	FEE_FLOOR_MICROALGOS       = uint64(1_000)
	MICROALGOS_PER_ALGO        = uint64(1_000_000)
	ALGO_DISPLAY_DECIMALS      = 6

	// Escrow constants
	DEFAULT_ESCROW_DURATION_HOURS = 0.5
	MIN_ESCROW_DURATION           = 5 * time.Minute
	MAX_ESCROW_DURATION           = 24 * time.Hour
	MAX_TRANSFER_AMOUNT           = uint64(1_000_000_000) // 1000 ALGO

	// PAYMENT_NOTE is attached to every payment the service broadcasts
	PAYMENT_NOTE = "Safient"
)
