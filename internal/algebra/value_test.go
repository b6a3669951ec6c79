package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Empty{}
	var _ Value = File{Content: "payload"}
	var _ Value = Directory{}
}

func TestValueKindOrder(t *testing.T) {
	// Empty < File < Directory is the type order constructors and
	// destructors are defined over.
	assert.Less(t, KindEmpty, KindFile)
	assert.Less(t, KindFile, KindDir)
}

func TestValueEquality(t *testing.T) {
	assert.Equal(t, Value(Empty{}), Value(Empty{}))
	assert.Equal(t, Value(Directory{}), Value(Directory{}))
	assert.Equal(t, Value(File{Content: "a"}), Value(File{Content: "a"}))
	assert.NotEqual(t, Value(File{Content: "a"}), Value(File{Content: "b"}))
	assert.NotEqual(t, Value(Empty{}), Value(Directory{}))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "E", Empty{}.String())
	assert.Equal(t, "Fhello", File{Content: "hello"}.String())
	assert.Equal(t, "F", File{}.String())
	assert.Equal(t, "D", Directory{}.String())

	assert.Equal(t, "E", KindEmpty.String())
	assert.Equal(t, "F", KindFile.String())
	assert.Equal(t, "D", KindDir.String())
}

func TestPresent(t *testing.T) {
	assert.False(t, Present(Empty{}))
	assert.True(t, Present(File{Content: "x"}))
	assert.True(t, Present(File{}))
	assert.True(t, Present(Directory{}))
}
