package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadString(t *testing.T) {
	sizer := Sizer{}

	tests := []struct {
		name      string
		input     string
		width     int
		leftAlign bool
		want      string
	}{
		{name: "left", input: "AH", width: 5, leftAlign: true, want: "AH   "},
		{name: "right", input: "AH", width: 5, leftAlign: false, want: "   AH"},
		{name: "too long", input: "dosage", width: 3, leftAlign: true, want: "dosage"},
		{name: "wide rune", input: "💊", width: 4, leftAlign: true, want: "💊  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sizer.PadString(tt.input, tt.width, tt.leftAlign))
		})
	}
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, 60, ClampWidth(10))
	assert.Equal(t, 90, ClampWidth(90))
	assert.Equal(t, 120, ClampWidth(400))
}

func TestGetMaxWidthWithoutTerminal(t *testing.T) {
	// Tests do not run attached to a terminal, so the fallback applies
	width := Sizer{}.GetMaxWidth()
	assert.GreaterOrEqual(t, width, 60)
	assert.LessOrEqual(t, width, 120)
}
