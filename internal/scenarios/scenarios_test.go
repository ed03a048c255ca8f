package scenarios

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// expectedIDs mirrors the six scenarios spec.md §8 enumerates, one per
// transform test that actually exercises it:
// dispatch_test.go covers par-var-dispatch and opt-to-non-opt-dispatch,
// specialize_test.go covers polymorphic-specialisation and
// show-synthesis-over-erased-type, erase_test.go covers record-erasure
// and opt-value-erasure.
var expectedIDs = []string{
	"par-var-dispatch",
	"opt-to-non-opt-dispatch",
	"polymorphic-specialisation",
	"show-synthesis-over-erased-type",
	"record-erasure",
	"opt-value-erasure",
}

func TestLoadScenariosCatalog(t *testing.T) {
	cat, err := Load("testdata/scenarios.yaml")
	require.NoError(t, err)
	require.Len(t, cat.Scenarios, len(expectedIDs))

	for _, id := range expectedIDs {
		s, ok := cat.ByID(id)
		require.True(t, ok, "missing scenario %q", id)
		require.NotEmpty(t, s.Input)
		require.NotEmpty(t, s.Expected)
	}
}

func TestLoadScenariosRejectsMissingID(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.yaml"
	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  - description: no id here\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
