package migrations

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

var fileName = regexp.MustCompile(`^(\d{6})_[a-z_]+\.(up|down)\.sql$`)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		m := fileName.FindStringSubmatch(e.Name())
		require.NotNil(t, m, "unexpected file %s", e.Name())
		if m[2] == "up" {
			ups[m[1]] = true
		} else {
			downs[m[1]] = true
		}
	}
	require.Equal(t, ups, downs)

	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	first, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), first)
	require.NoError(t, src.Close())
}

func TestSchemaDeclaresMappedConstraints(t *testing.T) {
	var schema strings.Builder
	require.NoError(t, fs.WalkDir(files, "sql", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return err
		}
		b, err := fs.ReadFile(files, path)
		schema.Write(b)
		return err
	}))

	// Repositories translate violations of these names into domain errors.
	for _, name := range []string{
		"fixed_assets_org_code_key",
		"asset_depreciations_asset_period_key",
		"bank_accounts_org_number_key",
		"cheques_account_number_key",
		"tax_configurations_org_code_from_key",
		"tax_payables_org_type_period_key",
	} {
		require.Contains(t, schema.String(), "CONSTRAINT "+name+" ", name)
	}
}
