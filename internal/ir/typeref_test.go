package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeScalars(t *testing.T) {
	for _, name := range []string{"string", "int", "bool", "uuid", "datetime", "float"} {
		typ, ok := ParseType(name)
		require.True(t, ok, name)
		assert.Equal(t, name, typ.Name)
		assert.Nil(t, typ.Elem)
		assert.True(t, typ.IsScalar())
	}
}

func TestParseTypeList(t *testing.T) {
	typ, ok := ParseType("list[string]")
	require.True(t, ok)
	assert.Equal(t, TypeList, typ.Name)
	require.NotNil(t, typ.Elem)
	assert.Equal(t, TypeString, typ.Elem.Name)
	assert.False(t, typ.IsScalar())
}

func TestParseTypeNestedList(t *testing.T) {
	typ, ok := ParseType("list[list[int]]")
	require.True(t, ok)
	assert.Equal(t, TypeList, typ.Name)
	require.NotNil(t, typ.Elem)
	assert.Equal(t, TypeList, typ.Elem.Name)
	require.NotNil(t, typ.Elem.Elem)
	assert.Equal(t, TypeInt, typ.Elem.Elem.Name)
}

func TestParseTypeRejectsUnknown(t *testing.T) {
	for _, bad := range []string{"", "decimal", "list", "list[]", "list[decimal]", "String", "[]string"} {
		_, ok := ParseType(bad)
		assert.False(t, ok, bad)
	}
}

func TestTypeRefStringRoundtrip(t *testing.T) {
	for _, s := range []string{"int", "uuid", "list[string]", "list[list[datetime]]"} {
		typ, ok := ParseType(s)
		require.True(t, ok)
		assert.Equal(t, s, typ.String())
	}
}
