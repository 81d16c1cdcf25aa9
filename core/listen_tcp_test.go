package core

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenTCP_PortInUse(t *testing.T) {
	first, err := ListenTCP("127.0.0.1", 0)
	require.NoError(t, err)
	defer first.Close()

	port := first.Addr().(*net.TCPAddr).Port
	_, err = ListenTCP("127.0.0.1", port)
	require.Error(t, err)

	var inUse *PortInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Contains(t, inUse.Error(), "already in use")
}
