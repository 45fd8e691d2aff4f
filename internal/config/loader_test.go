package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

const minimalYAML = `
source:
  rpc_url: "http://localhost:8545"
  chain_id: 10143
  contract_address: "0xAAaA000000000000000000000000000000000001"
  start_block: 100
db:
  path: "/tmp/indexer.db"
`

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(writeConfig(t, "config.yaml", minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, uint64(10143), cfg.Source.ChainID)
	assert.Equal(t, uint64(100), cfg.Source.StartBlock)

	// Defaults fill in everything the file omits.
	assert.Equal(t, uint64(5000), cfg.Source.ChunkSize)
	assert.Equal(t, 5*time.Second, cfg.Source.PollInterval.Duration)
	assert.Equal(t, "WAL", cfg.DB.JournalMode)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(writeConfig(t, "config.json", `{
		"source": {
			"rpc_url": "http://localhost:8545",
			"chain_id": 10143,
			"contract_address": "0xAAaA000000000000000000000000000000000001",
			"poll_interval": "2s"
		},
		"db": {"path": "/tmp/indexer.db"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Source.PollInterval.Duration)
}

func TestLoadFromFileTOML(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(writeConfig(t, "config.toml", `
[source]
rpc_url = "http://localhost:8545"
chain_id = 10143
contract_address = "0xAAaA000000000000000000000000000000000001"
chunk_size = 200

[db]
path = "/tmp/indexer.db"
`))
	require.NoError(t, err)

	assert.Equal(t, uint64(200), cfg.Source.ChunkSize)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{
			name:    "unsupported extension",
			file:    "config.ini",
			content: "whatever",
			errMsg:  "unsupported config file format",
		},
		{
			name:    "malformed yaml",
			file:    "config.yaml",
			content: "source: [broken",
			errMsg:  "failed to parse YAML",
		},
		{
			name:    "missing rpc url",
			file:    "config.yaml",
			content: "db:\n  path: /tmp/indexer.db\n",
			errMsg:  "source.rpc_url is required",
		},
		{
			name: "contract address without 0x prefix",
			file: "config.yaml",
			content: `
source:
  rpc_url: "http://localhost:8545"
  chain_id: 1
  contract_address: "deadbeef"
db:
  path: "/tmp/indexer.db"
`,
			errMsg: "0x-prefixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFromFile(writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
