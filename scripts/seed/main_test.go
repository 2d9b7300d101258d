package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFixturesAreValid(t *testing.T) {
	f, err := loadFixtures(fixturesYAML)
	require.NoError(t, err)
	assert.Len(t, f.Users, 6)
	assert.Len(t, f.Restaurants, 4)

	regions := map[string]int{}
	for _, r := range f.Restaurants {
		regions[r.Region]++
		assert.NotEmpty(t, r.Menu, r.Name)
	}
	assert.Equal(t, map[string]int{"INDIA": 2, "AMERICA": 2}, regions)
}

func TestLoadFixturesRejectsRegionlessManager(t *testing.T) {
	_, err := loadFixtures([]byte(`
password: x
users:
  - {email: a@b.c, name: A, role: MANAGER}
`))
	assert.Error(t, err)
}

func TestLoadFixturesRejectsBadPrices(t *testing.T) {
	_, err := loadFixtures([]byte(`
password: x
restaurants:
  - name: R
    region: INDIA
    menu:
      - {name: Free, price: "0"}
`))
	assert.Error(t, err)
}
