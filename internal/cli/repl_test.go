package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSetGetClear(t *testing.T) {
	in := strings.NewReader("set A1 3\nset B1 =A1+1\nget B1\nclear A1\nget B1\n")
	var out, errOut bytes.Buffer

	require.NoError(t, Run(in, &out, &errOut))
	assert.Empty(t, errOut.String())
	assert.Equal(t, "4\n1\n", out.String())
}

func TestRunReportsErrorsWithoutStopping(t *testing.T) {
	in := strings.NewReader("set A1 =A1\nget A1\n")
	var out, errOut bytes.Buffer

	require.NoError(t, Run(in, &out, &errOut))
	assert.Contains(t, errOut.String(), "circular")
	assert.Equal(t, "0\n", out.String())
}

func TestRunRefsListsReferences(t *testing.T) {
	in := strings.NewReader("set A1 1\nset B1 1\nset C1 =A1+B1\nrefs C1\n")
	var out, errOut bytes.Buffer

	require.NoError(t, Run(in, &out, &errOut))
	assert.Empty(t, errOut.String())
	assert.Equal(t, "A1 B1\n", out.String())
}
