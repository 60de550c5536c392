package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeywords(t *testing.T) {
	kw := NewKeywords(" Travel", "food", "TRAVEL", "", "  ", `"Ｒome"`, "ice  cream")

	assert.Equal(t, Keywords{"food", "ice cream", "rome", "travel"}, kw)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, Keywords{"holiday", "italy"}, ParseKeywords("Italy, holiday ,italy,"))
	assert.Empty(t, ParseKeywords(""))
}

func TestKeywords_Intersects(t *testing.T) {
	a := NewKeywords("food", "travel")

	assert.True(t, a.Intersects(NewKeywords("TRAVEL", "work")))
	assert.False(t, a.Intersects(NewKeywords("work")))
	assert.False(t, a.Intersects(nil))
	assert.False(t, Keywords(nil).Intersects(a))
}

func TestKeywords_ContainsUnionString(t *testing.T) {
	a := NewKeywords("food")

	assert.True(t, a.Contains(" FOOD "))
	assert.False(t, a.Contains("drink"))

	u := a.Union(NewKeywords("drink", "food"))
	assert.Equal(t, Keywords{"drink", "food"}, u)
	assert.Equal(t, "drink, food", u.String())
}

func TestKeywords_Normalized(t *testing.T) {
	raw := Keywords{"B", "a", "b"}
	assert.Equal(t, Keywords{"a", "b"}, raw.Normalized())
	assert.Equal(t, Keywords{"B", "a", "b"}, raw, "input left untouched")
}
