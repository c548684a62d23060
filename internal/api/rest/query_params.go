package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/safient/safient-escrow/internal/api/shared/constants"
	"github.com/safient/safient-escrow/internal/domain"
)

// ListTransfersQueryParams holds query parameters for GET /transfers
type ListTransfersQueryParams struct {
	User  string `form:"user"`
	Limit int    `form:"limit"`

	// Parsed
	Address domain.Address `form:"-"`
}

// ParseListTransfersQuery parses query parameters for GET /transfers
func ParseListTransfersQuery(c *gin.Context) (*ListTransfersQueryParams, error) {
	var params ListTransfersQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.User != "" {
		addr, err := domain.ParseAddress(params.User)
		if err != nil {
			return nil, fmt.Errorf("invalid user address: %s", params.User)
		}
		params.Address = addr
	}

	if params.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative")
	}
	if params.Limit == 0 {
		params.Limit = constants.DEFAULT_TRANSFERS_LIMIT
	}
	if params.Limit > constants.MAX_TRANSFERS_LIMIT {
		params.Limit = constants.MAX_TRANSFERS_LIMIT
	}

	return &params, nil
}
