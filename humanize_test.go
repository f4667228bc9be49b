package nvme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1 KB", FormatBytes(1000))
	assert.Equal(t, "1.07 GB", FormatBytes(1<<30))
}
