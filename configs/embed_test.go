package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/folio/internal/config"
)

func TestProjectConfigTemplate_MatchesDefaults(t *testing.T) {
	// Given: the embedded template
	require.NotEmpty(t, ProjectConfigTemplate)

	// When: parsing it
	var parsed config.Config
	require.NoError(t, yaml.Unmarshal([]byte(ProjectConfigTemplate), &parsed))

	// Then: it spells out exactly the built-in defaults
	assert.Equal(t, *config.NewConfig(), parsed)
	assert.NoError(t, parsed.Validate())
}
