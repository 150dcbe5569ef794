package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitJSONWithComponent(t *testing.T) {
	defer func() { Logger = zerolog.Nop() }()

	var buf bytes.Buffer
	Init(Config{Level: "debug", JSONOutput: true, Output: &buf})

	log := WithComponent("migration")
	log.Debug().Str("uid", "u1").Msg("starting")

	out := buf.String()
	assert.Contains(t, out, `"component":"migration"`)
	assert.Contains(t, out, `"uid":"u1"`)
	assert.Contains(t, out, `"message":"starting"`)
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	defer func() {
		Logger = zerolog.Nop()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}()

	var buf bytes.Buffer
	Init(Config{Level: "chatty", JSONOutput: true, Output: &buf})
	Logger.Debug().Msg("hidden")
	Logger.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
