package usecases

import (
	"github.com/dmitrijs2005/fireflow/internal/common"
)

// NewStateToken issues the correlation token for a pending login.
func NewStateToken() (string, error) {
	return common.NewStateToken()
}
