package unpack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mhtml/unpack"
)

func TestSelectRoot_Start(t *testing.T) {
	t.Parallel()

	msg := parse(t, indexed)
	root, err := unpack.SelectRoot(unpack.NewIndex(msg), msg)
	require.NoError(t, err)

	id, err := root.GetHeader().GetContentID()
	assert.NoError(t, err)
	assert.Equal(t, "<root123>", id)
}

func TestSelectRoot_FirstLeaf(t *testing.T) {
	t.Parallel()

	msg := parse(t, cycle)
	root, err := unpack.SelectRoot(unpack.NewIndex(msg), msg)
	require.NoError(t, err)
	assert.Same(t, msg.GetParts()[0], root)
}

func TestSelectRoot_UnknownStart(t *testing.T) {
	t.Parallel()

	const unknown = `Content-Type: multipart/related; boundary=B; start="<missing>"

--B
Content-Type: multipart/alternative; boundary=C

--C
Content-Type: text/plain

deep
--C--
--B
Content-Type: text/html

<p>shallow</p>
--B--
`

	msg := parse(t, unknown)
	root, err := unpack.SelectRoot(unpack.NewIndex(msg), msg)
	require.NoError(t, err)
	assert.Same(t, msg.GetParts()[0].GetParts()[0], root)
}

func TestSelectRoot_Message(t *testing.T) {
	t.Parallel()

	msg := parse(t, "Content-Type: text/html\r\n\r\n<p>hi</p>")
	root, err := unpack.SelectRoot(unpack.NewIndex(msg), msg)
	require.NoError(t, err)
	assert.Same(t, msg, root)
}

func TestSelectRoot_NotFound(t *testing.T) {
	t.Parallel()

	msg := parse(t, "Content-Type: multipart/related; boundary=B\r\n\r\n--B--\r\n")
	require.True(t, msg.IsMultipart())
	require.Empty(t, msg.GetParts())

	root, err := unpack.SelectRoot(unpack.NewIndex(msg), msg)
	assert.ErrorIs(t, err, unpack.ErrRootNotFound)
	assert.Nil(t, root)
}
