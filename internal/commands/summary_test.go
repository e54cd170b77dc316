package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_Empty(t *testing.T) {
	dir := initRepo(t)
	out, _, err := runDoispes(t, "summary", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "familia-silva")
	assert.Contains(t, out, "Balance               0.00")
}

func TestSummary_AfterImport(t *testing.T) {
	dir := initRepo(t)
	stage(t, dir, "dividas.xml")
	_, _, err := runDoispes(t, "import", "--repo", dir)
	require.NoError(t, err)

	out, _, err := runDoispes(t, "summary", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imports               1")
	assert.Contains(t, out, "Debts                 2")
	assert.Contains(t, out, "Monthly recurring     1500.00")
	assert.Contains(t, out, "Monthly installments  1164.00")
	assert.Contains(t, out, "Expenses              330.40")
	assert.Contains(t, out, "Balance               -330.40")
}
