package testutil

import (
	"testing"

	"github.com/mazen160/go-random"
)

// RandomString generates a random alphanumeric string for test fixtures.
func RandomString(t testing.TB, length int) string {
	str, err := random.String(length)
	if err != nil {
		t.Fatal(err)
	}
	return str
}
