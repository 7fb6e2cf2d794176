package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usernotify/internal/common"
	"usernotify/internal/render"
)

func validBuilder() *Builder {
	return NewBuilder().
		AddRenderer("default", render.DataRenderer{}).
		AddObjectType(ObjectTypeDef{Name: "thread", PackageID: 1, Provider: render.RefProvider{}}).
		AddEvent(EventDef{
			ObjectType:     "thread",
			Name:           "reply",
			SupportedKinds: []common.Kind{common.KindInApp, common.KindEmail},
			RendererName:   "default",
		}).
		AddEvent(EventDef{
			ObjectType:     "thread",
			Name:           "liked",
			SupportedKinds: []common.Kind{common.KindInApp},
			RendererName:   "default",
		})
}

func TestBuild_AssignsSequentialEventIDs(t *testing.T) {
	reg, err := validBuilder().Build()
	require.NoError(t, err)

	reply, err := reg.Lookup("thread", "reply")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reply.ID)

	liked, err := reg.Lookup("thread", "liked")
	require.NoError(t, err)
	assert.Equal(t, int64(2), liked.ID)

	events := reg.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "reply", events[0].Name)
	assert.Equal(t, "liked", events[1].Name)
}

func TestBuild_KeepsDeclaredEventIDs(t *testing.T) {
	reg, err := NewBuilder().
		AddRenderer("default", render.DataRenderer{}).
		AddObjectType(ObjectTypeDef{Name: "thread", PackageID: 1, Provider: render.RefProvider{}}).
		AddEvent(EventDef{ID: 1, ObjectType: "thread", Name: "reply", RendererName: "default"}).
		AddEvent(EventDef{ID: 3, ObjectType: "thread", Name: "liked", RendererName: "default"}).
		Build()
	require.NoError(t, err)

	liked, err := reg.Lookup("thread", "liked")
	require.NoError(t, err)
	assert.Equal(t, int64(3), liked.ID, "a catalog gap must not shift later event IDs")

	_, err = reg.EventByID(2)
	assert.ErrorIs(t, err, common.ErrUnknownEvent)

	events := reg.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, int64(3), events[1].ID)
}

func TestBuild_DuplicateDeclaredIDFails(t *testing.T) {
	_, err := NewBuilder().
		AddRenderer("default", render.DataRenderer{}).
		AddObjectType(ObjectTypeDef{Name: "thread", PackageID: 1, Provider: render.RefProvider{}}).
		AddEvent(EventDef{ID: 2, ObjectType: "thread", Name: "reply", RendererName: "default"}).
		AddEvent(EventDef{ID: 2, ObjectType: "thread", Name: "liked", RendererName: "default"}).
		Build()

	assert.Error(t, err)
}

func TestBuild_AutoIDsSkipDeclaredOnes(t *testing.T) {
	reg, err := NewBuilder().
		AddRenderer("default", render.DataRenderer{}).
		AddObjectType(ObjectTypeDef{Name: "thread", PackageID: 1, Provider: render.RefProvider{}}).
		AddEvent(EventDef{ID: 1, ObjectType: "thread", Name: "reply", RendererName: "default"}).
		AddEvent(EventDef{ObjectType: "thread", Name: "liked", RendererName: "default"}).
		Build()
	require.NoError(t, err)

	liked, err := reg.Lookup("thread", "liked")
	require.NoError(t, err)
	assert.Equal(t, int64(2), liked.ID)
}

func TestLookup_UnknownEvent(t *testing.T) {
	reg, err := validBuilder().Build()
	require.NoError(t, err)

	_, err = reg.Lookup("thread", "moved")
	assert.ErrorIs(t, err, common.ErrUnknownEvent)

	_, err = reg.Lookup("post", "reply")
	assert.ErrorIs(t, err, common.ErrUnknownEvent)
}

func TestBuild_EventTakesPackageIDFromObjectType(t *testing.T) {
	reg, err := validBuilder().Build()
	require.NoError(t, err)

	reply, err := reg.Lookup("thread", "reply")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reply.PackageID)
}

func TestBuild_DuplicateEventFails(t *testing.T) {
	_, err := validBuilder().
		AddEvent(EventDef{ObjectType: "thread", Name: "reply", RendererName: "default"}).
		Build()

	assert.Error(t, err)
}

func TestBuild_UnknownRendererFails(t *testing.T) {
	_, err := validBuilder().
		AddEvent(EventDef{ObjectType: "thread", Name: "moved", RendererName: "missing"}).
		Build()

	assert.Error(t, err)
}

func TestBuild_UnknownObjectTypeFails(t *testing.T) {
	_, err := validBuilder().
		AddEvent(EventDef{ObjectType: "post", Name: "reply", RendererName: "default"}).
		Build()

	assert.Error(t, err)
}

func TestBuild_DuplicateRendererFails(t *testing.T) {
	_, err := validBuilder().
		AddRenderer("default", render.DataRenderer{}).
		Build()

	assert.Error(t, err)
}

func TestMustBuild_PanicsOnBrokenCatalog(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().
			AddEvent(EventDef{ObjectType: "thread", Name: "reply", RendererName: "default"}).
			MustBuild()
	})
}

func TestRegistry_RendererAndProviderBinding(t *testing.T) {
	reg, err := validBuilder().Build()
	require.NoError(t, err)

	renderer, err := reg.Renderer(1)
	require.NoError(t, err)
	assert.NotNil(t, renderer)

	_, err = reg.Renderer(42)
	assert.ErrorIs(t, err, common.ErrUnknownEvent)

	provider, err := reg.ObjectProvider("thread")
	require.NoError(t, err)
	assert.NotNil(t, provider)

	_, err = reg.ObjectProvider("post")
	assert.ErrorIs(t, err, common.ErrUnknownEvent)
}

func TestEventSupports(t *testing.T) {
	reg, err := validBuilder().Build()
	require.NoError(t, err)

	reply, err := reg.Lookup("thread", "reply")
	require.NoError(t, err)

	assert.True(t, reply.Supports(common.KindEmail))
	assert.False(t, reply.Supports(common.KindPush))
}
