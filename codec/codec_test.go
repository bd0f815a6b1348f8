package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Name    string   `json:"name" yaml:"name"`
	Version string   `json:"version" yaml:"version"`
	Keys    []string `json:"keys,omitempty" yaml:"keys,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("xml")
	assert.False(t, ok)
}

func TestGoJSON(t *testing.T) {
	in := report{Name: "System.Runtime", Version: "4.0.0.0"}
	b := MustMarshal(nil, in)

	assert.True(t, strings.HasSuffix(string(b), "}\n"))
	assert.Contains(t, string(b), "\n  \"name\": \"System.Runtime\"")
	assert.NotContains(t, string(b), "keys")

	var out report
	require.NoError(t, GoJSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestYAML(t *testing.T) {
	in := []report{{Name: "mscorlib", Version: "4.0.0.0", Keys: []string{"b77a5c561934e089"}}}
	b, err := YAML{}.Marshal(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "- name: mscorlib\n  version: 4.0.0.0\n"))

	var out []report
	require.NoError(t, YAML{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestMustMarshalPanics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(GoJSON{}, make(chan int)) })
}
