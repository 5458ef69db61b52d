//go:build basic

package integration

import (
	"database/sql"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// sqliteEnv points both stores at SQLite files inside dir.
func sqliteEnv(dir string) []string {
	return []string{
		"HOME=" + dir,
		"TIERANK_SNAPSHOT_BACKEND=sqlite",
		"TIERANK_SNAPSHOT_DB_CONNECT=" + filepath.Join(dir, "snapshots.db"),
		"TIERANK_RANK_BACKEND=sqlite",
		"TIERANK_RANK_DB_CONNECT=" + filepath.Join(dir, "ranks.db"),
		"TIERANK_COLOR=no",
	}
}

func TestRankAuditExplain(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	catalog := writeCatalogFixture(t, dir)

	out, err := runTierank(t, dir, env, "rank", catalog, "--output", "json")
	require.NoError(t, err)

	var batch schema.BatchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	assert.Positive(t, batch.RunID)
	assert.Equal(t, 3, batch.Partitions)
	require.Len(t, batch.Results, 5)

	out, err = runTierank(t, dir, env, "audit", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Audit passed")

	out, err = runTierank(t, dir, env, "explain", "sleep-blend")
	require.NoError(t, err)
	assert.Contains(t, out, "Sleep Blend")
	assert.Contains(t, out, string(schema.AxisCostEffectiveness))

	out, err = runTierank(t, dir, env, "metrics", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "axis,purpose,formula")

	_, err = runTierank(t, dir, env, "runs", "status")
	require.NoError(t, err)
	_, err = runTierank(t, dir, env, "snapshot", "status")
	require.NoError(t, err)
}

func TestAuditFailsAndFixes(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	catalog := writeCatalogFixture(t, dir)

	_, err := runTierank(t, dir, env, "rank", catalog)
	require.NoError(t, err)

	// Hand-edit a record into an impossible S+ grade.
	db, err := sql.Open("sqlite", filepath.Join(dir, "ranks.db"))
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE tierank_rank_records SET overall_grade = 'S+' WHERE product_id = 'mg-oxide'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runTierank(t, dir, env, "audit")
	require.Error(t, err)
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, out, "impossible_combination [mg-oxide]")

	out, err = runTierank(t, dir, env, "audit", "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "Regenerated 1 product(s)")

	_, err = runTierank(t, dir, env, "audit")
	require.NoError(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	catalog := writeCatalogFixture(t, dir)

	out, err := runTierank(t, dir, env, "rank", catalog, "--trim-percent", "40")
	require.Error(t, err)
	assert.Contains(t, out, "trim-percent must be between 0 and 25")

	out, err = runTierank(t, dir, env, "rank", filepath.Join(dir, "missing-*.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "matched no files")
}
