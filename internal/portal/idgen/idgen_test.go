package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestULID_UniqueAndOrdered(t *testing.T) {
	g := NewULID()

	prev := ""
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.NewID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
		if id <= prev {
			t.Fatalf("ids not monotonic: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestSequential(t *testing.T) {
	g := NewSequential("msg")
	assert.Equal(t, "msg-1", g.NewID())
	assert.Equal(t, "msg-2", g.NewID())
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9171234567", "9171234567"},
		{"0917 123 4567", "9171234567"},
		{"(0917) 123-4567", "9171234567"},
		{"+63 917 1234567", "639171234567"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SanitizePhone(tc.in), tc.in)
	}
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "user_9171234567", UserID("9171234567"))
}
