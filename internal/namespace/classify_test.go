package namespace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOf(ref string, symbols ...Symbol) *Set {
	s := newSet(ref)
	for _, sym := range symbols {
		s.add(sym)
	}
	return s
}

func entriesByStatus(res *Result, status Status) []Entry {
	var out []Entry
	for _, e := range res.Entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

func TestClassifyReflexivity(t *testing.T) {
	set := setOf("HEAD",
		Symbol{Kind: KindFunction, Name: "main", File: "main.py"},
		Symbol{Kind: KindClass, Name: "Foo", File: "foo.py"},
		Symbol{Kind: KindMethod, Scope: "Foo", Name: "bar", File: "foo.py"},
	)

	res := Classify(set, set, Options{})
	require.Len(t, res.Entries, 3)
	for _, e := range res.Entries {
		assert.Equal(t, StatusUnchanged, e.Status)
	}
}

func TestClassifyIdentityAcrossUnrelatedChanges(t *testing.T) {
	a := setOf("A",
		Symbol{Kind: KindMethod, Scope: "Foo", Name: "bar", File: "foo.py"},
		Symbol{Kind: KindFunction, Name: "old_helper", File: "util.py"},
	)
	b := setOf("B",
		Symbol{Kind: KindMethod, Scope: "Foo", Name: "bar", File: "foo.py"},
		Symbol{Kind: KindFunction, Name: "brand_new", File: "util.py"},
	)

	res := Classify(a, b, Options{})
	unchanged := entriesByStatus(res, StatusUnchanged)
	require.Len(t, unchanged, 1)
	assert.Equal(t, KindMethod, unchanged[0].Kind)
	assert.Equal(t, "bar", unchanged[0].After.Name)
	assert.Equal(t, "Foo", unchanged[0].After.Scope)
}

func TestClassifyRenameScenario(t *testing.T) {
	// refA has getUser, refB has get_user: one renamed entry at 0.8.
	a := setOf("A", Symbol{Kind: KindFunction, Name: "getUser", File: "api.py"})
	b := setOf("B", Symbol{Kind: KindFunction, Name: "get_user", File: "api.py"})

	res := Classify(a, b, Options{})
	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, StatusRenamed, e.Status)
	assert.Equal(t, KindFunction, e.Kind)
	assert.Equal(t, confidenceSeparator, e.Confidence)
	require.NotNil(t, e.Before)
	require.NotNil(t, e.After)
	assert.Equal(t, "getUser", e.Before.Name)
	assert.Equal(t, "get_user", e.After.Name)
}

func TestClassifyDroppedTableEnumeratesColumns(t *testing.T) {
	a := setOf("A",
		Symbol{Kind: KindTable, Name: "users", File: "schema.sql"},
		Symbol{Kind: KindColumn, Scope: "users", Name: "id", File: "schema.sql"},
	)
	b := setOf("B")

	res := Classify(a, b, Options{})
	removed := entriesByStatus(res, StatusRemoved)
	require.Len(t, removed, 2, "table and column are enumerated, not collapsed")
	assert.Equal(t, KindTable, removed[0].Kind)
	assert.Equal(t, KindColumn, removed[1].Kind)
}

func TestClassifySameNameDifferentFileNotConflated(t *testing.T) {
	a := setOf("A", Symbol{Kind: KindFunction, Name: "run", File: "a.py"})
	b := setOf("B",
		Symbol{Kind: KindFunction, Name: "run", File: "a.py"},
		Symbol{Kind: KindFunction, Name: "run", File: "b.py"},
	)

	res := Classify(a, b, Options{})
	// The b.py symbol is new; it matches the removed-side nothing, and
	// the a.py one is unchanged.
	assert.Len(t, entriesByStatus(res, StatusUnchanged), 1)
	added := entriesByStatus(res, StatusAdded)
	require.Len(t, added, 1)
	assert.Equal(t, "b.py", added[0].After.File)
	assert.Empty(t, entriesByStatus(res, StatusRenamed))
}

func TestClassifyKindAndFileFilters(t *testing.T) {
	a := setOf("A",
		Symbol{Kind: KindFunction, Name: "f", File: "src/a.py"},
		Symbol{Kind: KindClass, Name: "C", File: "src/a.py"},
		Symbol{Kind: KindFunction, Name: "g", File: "other/b.py"},
	)
	b := setOf("B")

	t.Run("kind filter", func(t *testing.T) {
		res := Classify(a, b, Options{Kinds: []Kind{KindClass}})
		require.Len(t, res.Entries, 1)
		assert.Equal(t, KindClass, res.Entries[0].Kind)
	})

	t.Run("directory filter", func(t *testing.T) {
		res := Classify(a, b, Options{Files: []string{"src"}})
		require.Len(t, res.Entries, 2)
		for _, e := range res.Entries {
			assert.Equal(t, "src/a.py", e.Before.File)
		}
	})

	t.Run("glob filter", func(t *testing.T) {
		res := Classify(a, b, Options{Files: []string{"other/*.py"}})
		require.Len(t, res.Entries, 1)
		assert.Equal(t, "g", res.Entries[0].Before.Name)
	})
}

func TestClassifyGroupsByKindThenStatus(t *testing.T) {
	a := setOf("A",
		Symbol{Kind: KindTable, Name: "users", File: "schema.sql"},
		Symbol{Kind: KindFunction, Name: "gone", File: "a.py"},
		Symbol{Kind: KindFunction, Name: "kept", File: "a.py"},
	)
	b := setOf("B",
		Symbol{Kind: KindFunction, Name: "kept", File: "a.py"},
		Symbol{Kind: KindFunction, Name: "fresh", File: "a.py"},
		Symbol{Kind: KindTable, Name: "users", File: "schema.sql"},
	)

	res := Classify(a, b, Options{})
	var got []string
	for _, e := range res.Entries {
		got = append(got, string(e.Kind)+"/"+string(e.Status))
	}
	assert.Equal(t, []string{
		"function/added",
		"function/removed",
		"function/unchanged",
		"table/unchanged",
	}, got)
}

func TestResultJSONShape(t *testing.T) {
	a := setOf("refA", Symbol{Kind: KindFunction, Name: "getUser", File: "api.py"})
	b := setOf("refB", Symbol{Kind: KindFunction, Name: "GetUser", File: "api.py"})

	raw, err := json.Marshal(Classify(a, b, Options{}))
	require.NoError(t, err)

	var decoded struct {
		RefA    string `json:"refA"`
		RefB    string `json:"refB"`
		Filters struct {
			Kinds []string `json:"kinds"`
			Files []string `json:"files"`
		} `json:"filters"`
		Entries []struct {
			Kind   string `json:"kind"`
			Status string `json:"status"`
			Before *struct {
				Name  string  `json:"name"`
				Scope *string `json:"scope"`
				File  string  `json:"file"`
			} `json:"before"`
			After *struct {
				Name  string  `json:"name"`
				Scope *string `json:"scope"`
				File  string  `json:"file"`
			} `json:"after"`
			Confidence *float64 `json:"confidence"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "refA", decoded.RefA)
	assert.NotNil(t, decoded.Filters.Kinds, "filters serialize as empty arrays, not null")
	require.Len(t, decoded.Entries, 1)
	e := decoded.Entries[0]
	assert.Equal(t, "renamed", e.Status)
	require.NotNil(t, e.Before)
	require.NotNil(t, e.After)
	assert.Nil(t, e.Before.Scope, "empty scope serializes as null")
	require.NotNil(t, e.Confidence)
	assert.Equal(t, 1.0, *e.Confidence)
}

func TestSetDuplicateIdentityOverwrites(t *testing.T) {
	s := newSet("X")
	s.add(Symbol{Kind: KindFunction, Name: "f", File: "a.py", Hint: "1 args"})
	s.add(Symbol{Kind: KindFunction, Name: "f", File: "a.py", Hint: "3 args"})

	require.Equal(t, 1, s.Len())
	got, ok := s.Get(Key{KindFunction, "", "f", "a.py"})
	require.True(t, ok)
	assert.Equal(t, "3 args", got.Hint, "later duplicate wins")
}
