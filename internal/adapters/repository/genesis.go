package repository

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/okian/aether/internal/domain/account"
	"github.com/okian/aether/pkg/metrics"
)

// Genesis is the initial ledger state loaded at start.
//
// YAML:
//
//	accounts:
//	  "0xUserA":
//	    fex: 1000
//	    skill_tree: {awareness: 3}
//
// TOML:
//
//	[accounts."0xUserA"]
//	fex = 1000
//	skill_tree = { awareness = 3 }
type Genesis struct {
	Accounts map[string]GenesisAccount `yaml:"accounts" toml:"accounts"`
}

// GenesisAccount is one seeded account.
type GenesisAccount struct {
	Fex       float64        `yaml:"fex" toml:"fex"`
	SU        float64        `yaml:"su" toml:"su"`
	Staked    float64        `yaml:"staked" toml:"staked"`
	SkillTree map[string]int `yaml:"skill_tree" toml:"skill_tree"`
}

// LoadGenesis reads a genesis file; the format follows the extension.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenesis, err)
	}
	return ParseGenesis(data, filepath.Ext(path))
}

// ParseGenesis decodes data in the given format (".yaml", ".yml" or ".toml").
func ParseGenesis(data []byte, format string) (*Genesis, error) {
	var g Genesis
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrGenesis, err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &g)
		if err != nil {
			return nil, fmt.Errorf("%w: toml: %w", ErrGenesis, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: toml: unknown key %s", ErrGenesis, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	for id, ga := range g.Accounts {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: empty account id", ErrGenesis)
		}
		for name, v := range map[string]float64{"fex": ga.Fex, "su": ga.SU, "staked": ga.Staked} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: account %s: %s is not finite", ErrGenesis, id, name)
			}
		}
	}
	return &g, nil
}

// Seed installs every genesis account into s in id order and returns the
// number of accounts seeded.
func (g *Genesis) Seed(ctx context.Context, s Store) int {
	ids := make([]string, 0, len(g.Accounts))
	for id := range g.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ga := g.Accounts[id]
		s.Seed(ctx, id, account.Account{
			Fex:       ga.Fex,
			SU:        ga.SU,
			Staked:    ga.Staked,
			SkillTree: ga.SkillTree,
		})
	}
	metrics.UpdateGenesisAccounts(len(ids))
	return len(ids)
}
