package constants

const (
	DEFAULT_TRANSFERS_LIMIT = 50
	MAX_TRANSFERS_LIMIT     = 200
	SERVICE_NAME            = "safient-escrow"
)
