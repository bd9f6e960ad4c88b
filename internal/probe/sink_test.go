package probe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitConsole(t *testing.T) {
	var buf bytes.Buffer
	vars := fakeVars{}

	require.NoError(t, Emit(Output{}, vars, &buf, "ext2"))
	assert.Equal(t, "ext2", buf.String())
	assert.Empty(t, vars)
}

func TestEmitVariable(t *testing.T) {
	var buf bytes.Buffer
	vars := fakeVars{}

	require.NoError(t, Emit(Output{Variable: "root"}, vars, &buf, "1234-5678"))
	assert.Equal(t, "1234-5678", vars["root"])
	assert.Empty(t, buf.String())
}

func TestEmitVariableWithoutStore(t *testing.T) {
	err := Emit(Output{Variable: "root"}, nil, &bytes.Buffer{}, "x")
	assert.Error(t, err)
}

type failingVars struct{}

func (failingVars) Set(string, string) error { return errors.New("disk full") }

func TestEmitVariableStoreError(t *testing.T) {
	err := Emit(Output{Variable: "root"}, failingVars{}, &bytes.Buffer{}, "x")
	assert.EqualError(t, err, "disk full")
}

func TestOptionsOutput(t *testing.T) {
	out, err := Options{}.Output()
	require.NoError(t, err)
	assert.True(t, out.Console())

	out, err = Options{SetGiven: true, Set: "root_uuid"}.Output()
	require.NoError(t, err)
	assert.Equal(t, "root_uuid", out.Variable)
}
