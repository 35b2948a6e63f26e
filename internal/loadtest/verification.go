package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/PaesslerAG/jsonpath"

	"github.com/okian/aether/pkg/logger"
)

// Mismatch describes an account whose ledger state disagrees with what was
// accepted.
type Mismatch struct {
	AccountID string
	Path      string
	Want      int
	Got       int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %s: want %d, got %d", m.AccountID, m.Path, m.Want, m.Got)
}

// verifyAccounts reads every account back from the ledger and checks that
// its skill levels add up to the number of accepted insights.
func verifyAccounts(ctx context.Context, cfg *Config, ids []string, expected map[string]*expectation, stats *Stats) ([]Mismatch, error) {
	log := logger.Get().Named("loadtest")
	client := newHTTPClient(cfg.Timeout)

	var mismatches []Mismatch
	for _, id := range ids {
		status, body, err := client.get(ctx, cfg.LedgerURL+"/account/"+id)
		if err != nil {
			return nil, fmt.Errorf("read account %s: %w", id, err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("read account %s: status %d", id, status)
		}

		var doc any
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode account %s: %w", id, err)
		}

		want := &expectation{skills: map[string]int{}}
		if e, ok := expected[id]; ok {
			want = e
		}

		got, err := sumPath(doc, "$.skill_tree.*")
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
		if got != want.total {
			mismatches = append(mismatches, Mismatch{AccountID: id, Path: "$.skill_tree.*", Want: want.total, Got: got})
		}

		skills := make([]string, 0, len(want.skills))
		for skill := range want.skills {
			skills = append(skills, skill)
		}
		sort.Strings(skills)
		for _, skill := range skills {
			path := fmt.Sprintf("$.skill_tree[%q]", skill)
			level, err := sumPath(doc, path)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", id, err)
			}
			if level != want.skills[skill] {
				mismatches = append(mismatches, Mismatch{AccountID: id, Path: path, Want: want.skills[skill], Got: level})
			}
		}
		stats.AccountsVerified++
	}

	stats.Mismatches = len(mismatches)
	for _, m := range mismatches {
		log.Warn(ctx, "ledger mismatch", logger.String("detail", m.String()))
	}
	return mismatches, nil
}

// sumPath evaluates a JSONPath over doc and adds the numbers it selects. A
// path that selects nothing, such as a missing key, sums to zero.
func sumPath(doc any, path string) (int, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, nil
	}

	var values []any
	switch t := v.(type) {
	case []any:
		values = t
	default:
		values = []any{t}
	}

	sum := 0
	for _, x := range values {
		n, ok := x.(float64)
		if !ok {
			return 0, fmt.Errorf("evaluate %s: %v is not a number", path, x)
		}
		sum += int(n)
	}
	return sum, nil
}
