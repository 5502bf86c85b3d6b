package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomError(t *testing.T) {
	assert.Equal(t, "custom program error: 0x1770", CustomError(6000).Error())
	assert.Equal(t, "custom program error: 0x1", CustomError(1).Error())
}
