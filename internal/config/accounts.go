package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

// accountsFile is the on-disk shape of the accounts list:
//
//	[[accounts]]
//	phone    = "13810105050"
//	password = "gg112233"
//	delay    = 3          # or [3, 10] for an inclusive range, or omitted
type accountsFile struct {
	Accounts []accountEntry `toml:"accounts"`
}

type accountEntry struct {
	Phone    string `toml:"phone"`
	Password string `toml:"password"`
	Delay    any    `toml:"delay"`
}

// LoadAccounts parses the TOML accounts file at path. Loading is
// all-or-nothing: any malformed entry fails the whole list with a positional
// error, and an empty list is an error.
func LoadAccounts(path string) ([]model.Account, error) {
	var file accountsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parse accounts file %s: %w", path, err)
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("accounts file %s defines no accounts", path)
	}

	accounts := make([]model.Account, 0, len(file.Accounts))
	for i, entry := range file.Accounts {
		if entry.Phone == "" {
			return nil, fmt.Errorf("accounts[%d]: missing phone", i)
		}
		if entry.Password == "" {
			return nil, fmt.Errorf("accounts[%d] (%s): missing password", i, entry.Phone)
		}
		delay, err := parseDelay(entry.Delay)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d] (%s): %w", i, entry.Phone, err)
		}
		accounts = append(accounts, model.Account{
			Phone:    entry.Phone,
			Password: entry.Password,
			Delay:    delay,
		})
	}
	return accounts, nil
}

// parseDelay maps the decoded delay value to a DelaySpec: absent means no
// delay, an integer a fixed delay, a two-element [lo, hi] array an inclusive
// range.
func parseDelay(v any) (model.DelaySpec, error) {
	switch v := v.(type) {
	case nil:
		return model.DelaySpec{}, nil
	case int64:
		if v < 0 {
			return model.DelaySpec{}, fmt.Errorf("delay must be non-negative, got %d", v)
		}
		return model.FixedDelay(int(v)), nil
	case []any:
		if len(v) != 2 {
			return model.DelaySpec{}, fmt.Errorf("delay range must have exactly two elements, got %d", len(v))
		}
		lo, okLo := v[0].(int64)
		hi, okHi := v[1].(int64)
		if !okLo || !okHi {
			return model.DelaySpec{}, fmt.Errorf("delay range bounds must be integers, got [%v, %v]", v[0], v[1])
		}
		if lo < 0 || lo > hi {
			return model.DelaySpec{}, fmt.Errorf("delay range [%d, %d] is not a valid inclusive range", lo, hi)
		}
		return model.RangeDelay(int(lo), int(hi)), nil
	default:
		return model.DelaySpec{}, fmt.Errorf("delay must be an integer or a [lo, hi] array, got %T", v)
	}
}
