package portal_test

import (
	"testing"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/keychain"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/testenv"
	"github.com/parc-ccnx-archive/Libccnx-portal/portal"
)

var makeAR = testenv.MakeAR

func makeFactory(t testing.TB) *portal.Factory {
	_, require := makeAR(t)
	id, e := keychain.GenerateIdentity()
	require.NoError(e)
	factory, e := portal.NewFactory(id)
	require.NoError(e)
	return factory
}
