package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"leading zero", "081234", "6281234@c.us"},
		{"already prefixed", "6281234", "6281234@c.us"},
		{"no prefix no zero", "81234", "6281234@c.us"},
		{"formatting stripped", "+62 812-34", "6281234@c.us"},
		{"local with spaces", "0812 3456 7890", "6281234567890@c.us"},
		{"only first zero replaced", "00812", "620812@c.us"},
		{"empty input", "", "62@c.us"},
		{"letters only", "abc", "62@c.us"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"6281234", "62 812 34", "+6281299990000", "081234"} {
		once := Normalize(raw)
		twice := Normalize(Digits(once))
		assert.Equal(t, once, twice, raw)
		assert.Equal(t, once, Normalize(once), "canonical address must survive renormalization")
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "6281234", Digits("6281234@c.us"))
	assert.Equal(t, "6281234", Digits("6281234"))
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "79991234567@c.us", Address("+7 999 123-45-67"))
	assert.Equal(t, "6281234@c.us", Address("6281234"))
}
