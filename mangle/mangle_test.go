package mangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMangleStateEnumValue(t *testing.T) {
	d := Default{}
	name, err := d.MangleStateEnumValue("idle-state")
	require.NoError(t, err)
	assert.Equal(t, "STATE_IDLE_STATE", name)
}

func TestDefaultMangleEventEnumValue(t *testing.T) {
	d := Default{}
	name, err := d.MangleEventEnumValue("timer.expired")
	require.NoError(t, err)
	assert.Equal(t, "EVENT_TIMER_EXPIRED", name)
}

func TestDefaultCustomPrefixes(t *testing.T) {
	d := Default{StatePrefix: "ST_", EventPrefix: "EV_"}
	name, err := d.MangleStateEnumValue("idle")
	require.NoError(t, err)
	assert.Equal(t, "ST_IDLE", name)
}

func TestDefaultMangleVarName(t *testing.T) {
	d := Default{}
	name, err := d.MangleVarName("retry count")
	require.NoError(t, err)
	assert.Equal(t, "retry_count", name)
}

func TestDefaultMangleTypeNameLeadingDigit(t *testing.T) {
	d := Default{}
	name, err := d.MangleTypeName("2fast")
	require.NoError(t, err)
	assert.Equal(t, "_2fast", name)
}

func TestDefaultMangleTypeNameEmpty(t *testing.T) {
	d := Default{}
	name, err := d.MangleTypeName("")
	require.NoError(t, err)
	assert.Equal(t, "_", name)
}

func TestDefaultFixedNames(t *testing.T) {
	d := Default{}
	assert.Equal(t, "Start", d.StartRoutineName())
	assert.Equal(t, "DispatchEvent", d.DispatchRoutineName())
	assert.Equal(t, "state_id", d.StateIDFieldName())
}

func TestDefaultIsNameMangler(t *testing.T) {
	var _ NameMangler = Default{}
}
