package scopefsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNoInitial(t *testing.T) {
	def := NewDefinition("test").State("a", noEntry)
	assert.Error(t, def.Validate())
}

func TestValidateUnknownInitial(t *testing.T) {
	def := NewDefinition("test").State("a", noEntry).Initial("missing")
	assert.ErrorIs(t, def.Validate(), ErrUnknownState)
}

func TestValidateInitialMustBeRootLevel(t *testing.T) {
	def := NewDefinition("test").
		State("a", noEntry).
		State("a.b", noEntry).
		Initial("a.b")
	assert.Error(t, def.Validate())
}

func TestValidateMissingAncestor(t *testing.T) {
	def := NewDefinition("test").
		State("a", noEntry).
		State("x.y", noEntry).
		Initial("a")
	assert.ErrorIs(t, def.Validate(), ErrUnknownState)
}

func TestValidateNilEntry(t *testing.T) {
	def := NewDefinition("test").
		State("a", nil).
		Initial("a")
	assert.Error(t, def.Validate())
}

func TestValidateMalformedName(t *testing.T) {
	def := NewDefinition("test").
		State("a", noEntry).
		State("a..b", noEntry).
		Initial("a")
	assert.ErrorIs(t, def.Validate(), ErrMalformedStateName)
}

func TestValidateBadTransitionTarget(t *testing.T) {
	def := NewDefinition("test").
		State("a", noEntry, WithValidTransitions("b.")).
		Initial("a")
	assert.ErrorIs(t, def.Validate(), ErrMalformedStateName)
}

func TestValidateEmptyAllStateEvent(t *testing.T) {
	def := NewDefinition("test").
		AllStateEvent("").
		State("a", noEntry).
		Initial("a")
	assert.Error(t, def.Validate())
}

func TestBuildRejectsInvalidDefinition(t *testing.T) {
	def := NewDefinition("test")
	_, err := def.Build()
	assert.Error(t, err)
}

func TestBuildAssignsStableUniqueIDs(t *testing.T) {
	def := NewDefinition("test").
		State("a", noEntry).
		Initial("a")

	first, err := def.Build(WithScheduler(&fakeScheduler{}))
	require.NoError(t, err)
	second, err := def.Build(WithScheduler(&fakeScheduler{}))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID())
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, first.ID(), first.ID())
	assert.Equal(t, "test", first.Class())
}

func TestBuildSharesDefinitionAcrossInstances(t *testing.T) {
	em := NewEmitter()
	def := NewDefinition("test").
		State("a", func(h *Handle) error {
			h.GotoStateOn(em, "go", "b")
			return nil
		}).
		State("b", noEntry).
		Initial("a")

	first, _ := startMachine(t, def)
	second, _ := startMachine(t, def)

	// one event source, two independent machines
	em.Emit("go")
	assert.Equal(t, "b", first.CurrentState())
	assert.Equal(t, "b", second.CurrentState())
}
