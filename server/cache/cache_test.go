package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	ID   uint
	Name string
}

func (r record) SearchText() string {
	return r.Name
}

func newTestCollection(loads *int, records ...record) *Collection[record] {
	return NewCollection(func() ([]record, error) {
		*loads++
		items := make([]record, len(records))
		copy(items, records)
		return items, nil
	}, func(r record) uint { return r.ID })
}

func TestCollection(t *testing.T) {
	loads := 0
	collection := newTestCollection(&loads, record{1, "Muster"}, record{2, "Zaugg"})

	items, err := collection.All()
	assert.Nil(t, err)
	assert.Len(t, items, 2)

	_, err = collection.All()
	assert.Nil(t, err)
	assert.Equal(t, 1, loads, "Collection should only load once")

	collection.Put(record{3, "Arnold"})
	collection.Put(record{1, "Muster-Keller"})

	item, ok, err := collection.Get(1)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Muster-Keller", item.Name)

	collection.Remove(2)
	_, ok, _ = collection.Get(2)
	assert.False(t, ok)

	items, _ = collection.All()
	assert.Len(t, items, 2)

	found, err := collection.Find(func(r record) bool { return r.ID > 1 })
	assert.Nil(t, err)
	assert.Equal(t, []record{{3, "Arnold"}}, found)

	collection.Invalidate()
	items, _ = collection.All()
	assert.Len(t, items, 2, "Invalidate should reload the original records")
	assert.Equal(t, 2, loads)
}

func TestCollectionPutBeforeLoad(t *testing.T) {
	loads := 0
	collection := newTestCollection(&loads, record{1, "Muster"})

	collection.Put(record{2, "Zaugg"})

	items, err := collection.All()
	assert.Nil(t, err)
	assert.Equal(t, []record{{1, "Muster"}}, items)
}

func TestCollectionLoadError(t *testing.T) {
	collection := NewCollection(func() ([]record, error) {
		return nil, errors.New("db down")
	}, func(r record) uint { return r.ID })

	_, err := collection.All()
	assert.EqualError(t, err, "db down")
}

func TestFilter(t *testing.T) {
	records := []record{{1, "Muster"}, {2, "Zaugg"}, {3, "Mustermann"}}

	tests := []struct {
		description string
		query       string
		expected    []uint
	}{
		{"empty query returns everything", "", []uint{1, 2, 3}},
		{"substring match", "ster", []uint{1, 3}},
		{"case insensitive", "ZAU", []uint{2}},
		{"surrounding whitespace is ignored", "  mann ", []uint{3}},
		{"no match", "xyz", []uint{}},
	}

	for _, test := range tests {
		ids := []uint{}
		for _, r := range Filter(records, test.query) {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, test.expected, ids, test.description)
	}
}
