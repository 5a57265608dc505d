package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/config"
	"itinera/itinerary"
	"itinera/services"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNormalizeCmd(t *testing.T) {
	out, err := run(t, `{"destination":"Porto","startDate":"2025-09-10","days":[{"activities":[{"location":"Ribeira"}]}]}`, "normalize")
	require.NoError(t, err)

	var it itinerary.Itinerary
	require.NoError(t, json.Unmarshal([]byte(out), &it))
	assert.Equal(t, "Porto", it.Destination)
	assert.Equal(t, itinerary.DefaultStartingPoint, it.StartingPoint)
	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), it.EndDate)
	require.Len(t, it.Days, 1)
	assert.Nil(t, it.Days[0].Activities[0].MapLink)
	assert.True(t, strings.HasPrefix(out, "{\n  \""), "indented output")
}

func TestNormalizeCmd_Enrich(t *testing.T) {
	out, err := run(t, `{"days":[{"activities":[{"location":"Ribeira"}]}]}`, "normalize", "--enrich")
	require.NoError(t, err)

	var it itinerary.Itinerary
	require.NoError(t, json.Unmarshal([]byte(out), &it))
	require.NotNil(t, it.Days[0].Activities[0].MapLink)
	assert.Contains(t, *it.Days[0].Activities[0].MapLink, "Ribeira")
}

func TestNormalizeCmd_ModelOutput(t *testing.T) {
	out, err := run(t, "Here is your plan:\n```json\n{\"destination\": \"Faro\"}\n```", "normalize")
	require.NoError(t, err)
	assert.Contains(t, out, `"destination": "Faro"`)
}

func TestNormalizeCmd_Failures(t *testing.T) {
	_, err := run(t, `[{"destination":"Faro"}]`, "normalize")
	require.Error(t, err)
	assert.True(t, itinerary.IsStructuralInputError(err))

	_, err = run(t, `null`, "normalize")
	assert.True(t, itinerary.IsStructuralInputError(err))

	_, err = run(t, "no itinerary here", "normalize")
	assert.ErrorContains(t, err, "no itinerary object")

	_, err = run(t, "", "normalize", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "open input")
}

func TestNormalizeCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trip.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"destination":"Braga"}`), 0o644))

	out, err := run(t, "", "normalize", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"destination": "Braga"`)
}

func TestPDFCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "trip.json")
	pdf := filepath.Join(dir, "trip.pdf")
	require.NoError(t, os.WriteFile(in, []byte(`{"destination":"Coimbra","days":[{"title":"University"}]}`), 0o644))

	out, err := run(t, "", "pdf", in, "-o", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "trip.pdf")

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = run(t, "", "pdf")
	assert.Error(t, err, "file argument is required")
}

func TestNewPlanner(t *testing.T) {
	cfg := &config.Config{
		AIProvider:     config.ProviderGemini,
		GeminiAPIKey:   "g",
		GeminiModel:    "gemini-1.5-flash",
		ImageCacheTTL:  time.Hour,
		RequestTimeout: time.Second,
	}
	planner, links := newPlanner(cfg, nil)
	require.NotNil(t, links)
	assert.Same(t, links, planner.Links)
	assert.IsType(t, &services.GeminiClient{}, planner.Generator)
	assert.Nil(t, planner.Amadeus)

	cfg.AmadeusClientID, cfg.AmadeusClientSecret = "id", "secret"
	planner, _ = newPlanner(cfg, nil)
	assert.True(t, planner.Amadeus.Configured())
}

func TestNewGenerator(t *testing.T) {
	cfg := &config.Config{AIProvider: config.ProviderHuggingFace, HuggingFaceAPIKey: "hf", RequestTimeout: time.Second}
	assert.IsType(t, &services.HuggingFaceClient{}, newGenerator(cfg))

	cfg.HuggingFaceAPIKey = ""
	assert.Nil(t, newGenerator(cfg))

	cfg.AIProvider = config.ProviderGemini
	assert.Nil(t, newGenerator(cfg), "no gemini key")
}
