package testutils

import (
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Nations pairs country codes with their continents for generated results.
var Nations = []resultdomain.Location{
	{CountryCode: "US", ContinentCode: "NA"},
	{CountryCode: "CA", ContinentCode: "NA"},
	{CountryCode: "DE", ContinentCode: "EU"},
	{CountryCode: "PL", ContinentCode: "EU"},
	{CountryCode: "CN", ContinentCode: "AS"},
	{CountryCode: "AU", ContinentCode: "OC"},
}

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed the generator was built with.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// CompetitorID returns a fresh competitor id.
func (g *TestDataGenerator) CompetitorID() string {
	return g.faker.Regex(`20[0-2][0-9][A-Z]{4}0[1-9]`)
}

// Nation picks one of Nations.
func (g *TestDataGenerator) Nation() resultdomain.Location {
	return Nations[g.faker.IntN(len(Nations))]
}

// Ao5Candidate returns an Average5 candidate for the 3x3x3 cube with five real
// times in centiseconds.
func (g *TestDataGenerator) Ao5Candidate(date time.Time) resultdomain.Candidate {
	attempts := make([]resultdomain.Attempt, 5)
	for i := range attempts {
		attempts[i] = resultdomain.Attempt(g.faker.IntRange(600, 2000))
	}
	return resultdomain.Candidate{
		EventID:       "333",
		Format:        resultdomain.Average5,
		CompetitorIDs: []string{g.CompetitorID()},
		Attempts:      attempts,
		Date:          date,
		Location:      g.Nation(),
	}
}

// Round returns a 333 round row input held on date.
func (g *TestDataGenerator) Round(date time.Time) resultdomain.Round {
	return resultdomain.Round{
		ID:        uuid.New(),
		ContestID: g.faker.Regex(`[A-Z][a-z]{5}Open20[0-9]{2}`),
		EventID:   "333",
		Format:    resultdomain.Average5,
		Date:      date,
	}
}
