package carcheacks

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatekeeperDecisions(t *testing.T) {

	var buf bytes.Buffer

	g := NewGatekeeper([]string{"AB12CDE"}, &buf, 0)
	require.NoError(t, g.WriteLogHeader())

	status, logged, err := g.Process("AB12CDE")
	require.NoError(t, err)
	assert.Equal(t, StatusAllow, status)
	assert.True(t, logged)

	status, logged, err = g.Process("XY99ZZZ")
	require.NoError(t, err)
	assert.Equal(t, StatusDeny, status)
	assert.True(t, logged)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,plate_number,status", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",AB12CDE,ALLOW"))
	assert.True(t, strings.HasSuffix(lines[2], ",XY99ZZZ,DENY"))
}

func TestGatekeeperSuppressionWindow(t *testing.T) {

	var buf bytes.Buffer

	g := NewGatekeeper([]string{"AB12CDE"}, &buf, 10*time.Second)

	clock := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return clock }

	_, logged, err := g.Process("AB12CDE")
	require.NoError(t, err)
	assert.True(t, logged)

	// same plate inside the window is decided but not re-logged
	clock = clock.Add(5 * time.Second)
	status, logged, err := g.Process("AB12CDE")
	require.NoError(t, err)
	assert.Equal(t, StatusAllow, status)
	assert.False(t, logged)

	// past the window the plate logs again
	clock = clock.Add(10 * time.Second)
	_, logged, err = g.Process("AB12CDE")
	require.NoError(t, err)
	assert.True(t, logged)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestGatekeeperAuthorized(t *testing.T) {

	g := NewGatekeeper([]string{"AB12CDE"}, &bytes.Buffer{}, 0)

	assert.True(t, g.Authorized("AB12CDE"))
	assert.False(t, g.Authorized("XY99ZZZ"))
}
