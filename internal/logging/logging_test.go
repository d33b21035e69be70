package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "vaultflow.log")
	logger, closer, err := New("warn", file)
	if !assert.NoError(t, err) {
		return
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("id", "email-a").Msg("visible")
	closer()

	data, err := os.ReadFile(file)
	assert.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if assert.Len(t, lines, 1) {
		entry := map[string]interface{}{}
		assert.NoError(t, json.Unmarshal(lines[0], &entry))
		assert.Equal(t, "visible", entry["message"])
		assert.Equal(t, "email-a", entry["id"])
		assert.Contains(t, entry, "time")
	}

	_, _, err = New("loud", "")
	assert.Error(t, err)
}

func TestWith(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := With(buffer, zerolog.DebugLevel)
	logger.Debug().Msg("trace")
	assert.Contains(t, buffer.String(), `"level":"debug"`)
}
