package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

func writeAccountsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAccounts_FixedRangeAndAbsentDelays(t *testing.T) {
	path := writeAccountsFile(t, `
[[accounts]]
phone    = "13810105050"
password = "gg112233"

[[accounts]]
phone    = "18040407070"
password = "tt667788"
delay    = 3

[[accounts]]
phone    = "13900001111"
password = "pw"
delay    = [2, 8]
`)

	accounts, err := LoadAccounts(path)

	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, "13810105050", accounts[0].Phone)
	assert.Equal(t, "gg112233", accounts[0].Password)
	assert.Equal(t, model.DelaySpec{}, accounts[0].Delay)

	assert.Equal(t, model.FixedDelay(3), accounts[1].Delay)
	assert.Equal(t, model.RangeDelay(2, 8), accounts[2].Delay)
}

func TestLoadAccounts_PreservesOrder(t *testing.T) {
	path := writeAccountsFile(t, `
[[accounts]]
phone    = "3"
password = "c"

[[accounts]]
phone    = "1"
password = "a"

[[accounts]]
phone    = "2"
password = "b"
`)

	accounts, err := LoadAccounts(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"},
		[]string{accounts[0].Phone, accounts[1].Phone, accounts[2].Phone})
}

func TestLoadAccounts_MissingPhoneFailsWholeList(t *testing.T) {
	path := writeAccountsFile(t, `
[[accounts]]
phone    = "13810105050"
password = "gg112233"

[[accounts]]
password = "orphan"
`)

	accounts, err := LoadAccounts(path)

	assert.Nil(t, accounts, "one malformed entry must invalidate the whole list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accounts[1]")
}

func TestLoadAccounts_MissingPassword(t *testing.T) {
	path := writeAccountsFile(t, `
[[accounts]]
phone = "13810105050"
`)

	_, err := LoadAccounts(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing password")
}

func TestLoadAccounts_BadDelayShapes(t *testing.T) {
	cases := map[string]string{
		"negative fixed": `delay = -1`,
		"one element":    `delay = [3]`,
		"three elements": `delay = [1, 2, 3]`,
		"inverted range": `delay = [8, 2]`,
		"negative bound": `delay = [-1, 5]`,
		"string delay":   `delay = "soon"`,
		"float delay":    `delay = 1.5`,
	}

	for name, delayLine := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeAccountsFile(t, `
[[accounts]]
phone    = "13810105050"
password = "gg112233"
`+delayLine+"\n")

			accounts, err := LoadAccounts(path)

			assert.Nil(t, accounts)
			require.Error(t, err)
		})
	}
}

func TestLoadAccounts_EmptyList(t *testing.T) {
	path := writeAccountsFile(t, "# no accounts yet\n")

	_, err := LoadAccounts(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no accounts")
}

func TestLoadAccounts_MissingFile(t *testing.T) {
	_, err := LoadAccounts(filepath.Join(t.TempDir(), "nope.toml"))

	require.Error(t, err)
}
