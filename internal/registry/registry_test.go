package registry

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultContextResolvesWellKnownNames(t *testing.T) {
	ctx := NewDefaultContext()

	showID, ok := ctx.Idents.Lookup("show")
	require.True(t, ok)
	require.Equal(t, showID, ctx.WellKnown.Show)

	require.True(t, ctx.Anchors.ParInt.Equals(ctx.Anchors.ParInt))
	require.False(t, ctx.Anchors.ParInt.Equals(ctx.Anchors.VarInt))
}

func TestNewContextReusesGivenRegistry(t *testing.T) {
	idents := ident.NewRegistry()
	customID := idents.Intern("my_custom_name")

	ctx := NewContext(idents, nil)
	got, ok := ctx.Idents.Lookup("my_custom_name")
	require.True(t, ok)
	require.Equal(t, customID, got)
}
