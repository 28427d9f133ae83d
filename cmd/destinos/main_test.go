package main

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisrod14/destinosAI/internal/syncer"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(fmt.Errorf("edit: %w", syncer.ErrInvalidRecord)))
	assert.Equal(t, 2, exitCode(fmt.Errorf("%w: ARICA", syncer.ErrNotFound)))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 1, exitCode(fmt.Errorf("disk full")))
}

func TestParseAssignments(t *testing.T) {
	changes, err := parseAssignments([]string{"TITLE=Arica", " NAV_BAR =a=b", "TIP="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TITLE": "Arica", "NAV_BAR": "a=b", "TIP": ""}, changes)

	_, err = parseAssignments([]string{"TITLE"})
	assert.ErrorIs(t, err, syncer.ErrInvalidRecord)

	_, err = parseAssignments([]string{"=value"})
	assert.ErrorIs(t, err, syncer.ErrInvalidRecord)
}

func TestYAMLToJSON(t *testing.T) {
	out, err := yamlToJSON([]byte("LOCATION: ARICA\nTITLE: Arica en verano\n"))
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "ARICA", fields["LOCATION"])
	assert.Equal(t, "Arica en verano", fields["TITLE"])

	_, err = yamlToJSON([]byte("TITLE:\n  nested: value\n"))
	assert.ErrorIs(t, err, syncer.ErrInvalidRecord)

	_, err = yamlToJSON([]byte(""))
	assert.ErrorIs(t, err, syncer.ErrInvalidRecord)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "${OPENAI_API_KEY}", maskSecret("${OPENAI_API_KEY}"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "sk-1****wxyz", maskSecret("sk-1234567890wxyz"))
}
