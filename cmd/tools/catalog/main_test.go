package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testData = `[
  {"id":"rsi","title":"Research Science Institute","category":"STEM","type":"Research Program","season":"Summer","format":"In-person","paid":"Free","deadline":"2026-03-05"},
  {"id":"essay","title":"Essay Prize","category":"Humanities","type":"Competition","season":"School Year","format":"Virtual","paid":"Free","deadline":"someday"},
  {"id":"hack","title":"Hack Club Summer","category":["STEM","Business"],"type":"Hackathon","season":"Summer","format":"Virtual","paid":"Free"}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "opportunities.json")
	require.NoError(t, os.WriteFile(data, []byte(testData), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", "", "--data", data}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCmd(t *testing.T) {
	out, err := execute(t, "query", "--now", "2026-03-01T00:00:00Z", "--category", "STEM")
	require.NoError(t, err)
	assert.Contains(t, out, "Research Science Institute")
	assert.Contains(t, out, "Hack Club Summer")
	assert.NotContains(t, out, "Essay Prize")
	assert.Contains(t, out, "2 of 3")
	assert.Less(t, strings.Index(out, "Research Science"), strings.Index(out, "Hack Club"))
}

func TestQueryCmd_JSON(t *testing.T) {
	out, err := execute(t, "--output", "json", "query", "--type", "Others")
	require.NoError(t, err)

	var result struct {
		Items []struct {
			Opportunity struct {
				ID string `json:"id"`
			} `json:"opportunity"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "hack", result.Items[0].Opportunity.ID)
	assert.Equal(t, 3, result.Total)
}

func TestFacetsCmd(t *testing.T) {
	out, err := execute(t, "facets", "--format", "Virtual")
	require.NoError(t, err)
	assert.Contains(t, out, "Others")
	assert.Contains(t, out, "2 matches")
}

func TestValidateCmd(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "3 records loaded, 1 issue")
	assert.Contains(t, out, `unparseable deadline "someday"`)

	_, err = execute(t, "validate", "--strict")
	assert.Error(t, err)
}

func TestCometsCmd(t *testing.T) {
	svg := filepath.Join(t.TempDir(), "frame.svg")
	out, err := execute(t, "comets", "--width", "500", "--height", "800", "--frames", "5", "--seed", "7", "--svg", svg)
	require.NoError(t, err)
	assert.Contains(t, out, "profile mobile")
	assert.Contains(t, out, "5 frames")

	body, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Equal(t, 12, strings.Count(string(body), "<line"))
}

func TestCometsCmd_RealTime(t *testing.T) {
	out, err := execute(t, "comets", "--duration", "200ms", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "profile desktop")
	assert.Contains(t, out, "state stopped")
}

func TestHashCmd(t *testing.T) {
	out, err := execute(t, "hash-passcode", "letmein")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "$2a$"))
}
