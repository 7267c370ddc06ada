package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestResumeSchema_ValidJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(Resume, &v))
	assert.Equal(t, "Resume import", v["title"])
}

func TestResumeSchema_Compiles(t *testing.T) {
	_, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(Resume))
	require.NoError(t, err)
}

func TestResumeSchema_AcceptsSample(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "resume.json"))
	require.NoError(t, err)

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(Resume), gojsonschema.NewBytesLoader(data))
	require.NoError(t, err)
	assert.True(t, result.Valid(), "%v", result.Errors())
}
