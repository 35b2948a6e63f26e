package loadtest

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// phrases cover every skill the scorer recognizes and both guidance paths.
var phrases = []string{
	"I noticed how my breath slows when I listen",
	"Today I learned how tides follow the moon",
	"There is beauty in the quiet after rain",
	"I am grateful for the people who stayed",
	"Making art at dawn feels like remembering",
	"I want to learn to love the questions themselves",
	"Stillness is louder than I expected",
	"Every ending carries the shape of a beginning",
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateInsights creates perAccount insights for each of accounts fresh
// uuid accounts, returning them in submission order and the account ids.
func generateInsights(accounts, perAccount int) ([]Insight, []string) {
	ids := make([]string, accounts)
	for i := range ids {
		ids[i] = "lt-" + uuid.NewString()
	}

	insights := make([]Insight, 0, accounts*perAccount)
	for round := 0; round < perAccount; round++ {
		for _, id := range ids {
			insights = append(insights, Insight{AccountID: id, Text: phrases[randomIndex(len(phrases))]})
		}
	}
	return insights, ids
}
