// Package integration provides integration tests for enrev.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/enrev/internal/discover"
	"github.com/systmms/enrev/internal/logging"
	"github.com/systmms/enrev/internal/report"
	"github.com/systmms/enrev/internal/review"
)

const registryJSON = `{
  "keys": {
    "payments": {"db": ["password", "user"], "broker": ["token"]}
  },
  "autoKeys": {
    "payments": {"apiVersion": ["v2", "v3"]}
  },
  "encodedKeys": {
    "payments": {"db": ["password"]}
  }
}`

const manifestYAML = `metadata:
  name: payments-secret
data:
  password: <ENAAS_PLACEHOLDER>db_password<ENAAS_PLACEHOLDER>
  token: <ENAAS_PLACEHOLDER>broker_token<ENAAS_PLACEHOLDER>
  version: <ENAAS_PLACEHOLDER>apiVersion_v2<ENAAS_PLACEHOLDER>
`

const descriptorYAML = `spec:
  template:
    spec:
      containers:
        - name: payments
          envFrom:
            - secretRef:
                name: payments-secret
`

const brokenManifestYAML = `metadata:
  name: orders-secret
data:
  password: <ENAAS_PLACEHOLDER>db_nope<ENAAS_PLACEHOLDER>
  dangling: <ENAAS_PLACEHOLDER>broker_token
`

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	payments := filepath.Join(root, "payments")
	require.NoError(t, os.Mkdir(payments, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(payments, "enaas-registry.json"), []byte(registryJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(payments, "payments_secret.yml"), []byte(manifestYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(payments, "payments_dc.yml"), []byte(descriptorYAML), 0644))

	orders := filepath.Join(root, "orders")
	require.NoError(t, os.Mkdir(orders, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(orders, "enaas-registry.json"), []byte(registryJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(orders, "orders_secret.yml"), []byte(brokenManifestYAML), 0644))

	// Hidden directories are never scanned.
	hidden := filepath.Join(root, ".cache")
	require.NoError(t, os.Mkdir(hidden, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "enaas-registry.json"), []byte(registryJSON), 0644))

	return root
}

// TestScanPipeline_EndToEnd drives discovery, batch review and every report
// format over a realistic tree.
func TestScanPipeline_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	root := writeTree(t)
	logger := logging.NewWithWriter(io.Discard, false, true)

	units, warnings, err := discover.Discover(root, discover.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, units, 2)

	results := review.RunBatch(units, logger)
	require.Len(t, results, 2)

	summary := report.Summarize(results)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	// One unresolved placeholder plus one unpaired marker.
	assert.Equal(t, 2, summary.Defects)

	// Sorted directory walk puts orders before payments.
	orders, payments := results[0], results[1]
	assert.Contains(t, orders.Location, "orders")
	assert.True(t, orders.HasDefects())
	assert.False(t, payments.HasDefects())
	assert.Equal(t, 3, payments.PlaceholderCount)
	assert.True(t, payments.ReferenceMatch)

	var table bytes.Buffer
	require.NoError(t, report.Write(&table, results, report.FormatTable))
	assert.Contains(t, table.String(), "Summary: 1/2 unit(s) passed, 2 defect(s)")

	var jsonOut bytes.Buffer
	require.NoError(t, report.Write(&jsonOut, results, report.FormatJSON))
	var parsed report.Summary
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &parsed))
	assert.Equal(t, 2, parsed.Units)

	var sarifOut bytes.Buffer
	require.NoError(t, report.Write(&sarifOut, results, report.FormatSARIF))
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(sarifOut.Bytes(), &doc))
	runs := doc["runs"].([]interface{})
	require.Len(t, runs, 1)
	sarifResults := runs[0].(map[string]interface{})["results"].([]interface{})
	assert.Len(t, sarifResults, 2)
}

// TestScanPipeline_TargetDirectory restricts discovery to one named unit.
func TestScanPipeline_TargetDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	root := writeTree(t)
	logger := logging.NewWithWriter(io.Discard, false, true)

	units, _, err := discover.Discover(root, discover.Options{TargetName: "payments"})
	require.NoError(t, err)
	require.Len(t, units, 1)

	results := review.RunBatch(units, logger)
	require.Len(t, results, 1)
	assert.False(t, results[0].HasDefects())
}
