package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sym(kind Kind, scope, name, file string, seq int) Symbol {
	return Symbol{Kind: kind, Name: name, Scope: scope, File: file, seq: seq}
}

func TestMatchRenamesCaseOnly(t *testing.T) {
	removed := []Symbol{sym(KindFunction, "", "getUser", "a.py", 0)}
	added := []Symbol{sym(KindFunction, "", "GetUser", "a.py", 0)}

	pairs := matchRenames(removed, added)
	require.Len(t, pairs, 1)
	assert.Equal(t, "getUser", pairs[0].before.Name)
	assert.Equal(t, "GetUser", pairs[0].after.Name)
	assert.Equal(t, confidenceCaseOnly, pairs[0].confidence)
}

func TestMatchRenamesSeparatorStyle(t *testing.T) {
	removed := []Symbol{sym(KindFunction, "", "getUser", "a.py", 0)}
	added := []Symbol{sym(KindFunction, "", "get_user", "a.py", 0)}

	pairs := matchRenames(removed, added)
	require.Len(t, pairs, 1)
	assert.Equal(t, confidenceSeparator, pairs[0].confidence)
}

func TestMatchRenamesRejectsUnrelatedNames(t *testing.T) {
	removed := []Symbol{sym(KindFunction, "", "getUser", "a.py", 0)}
	added := []Symbol{sym(KindFunction, "", "GetAccount", "a.py", 0)}

	assert.Empty(t, matchRenames(removed, added),
		"substring or edit-distance style drift must not match")
}

func TestMatchRenamesRejectsCombinedDrift(t *testing.T) {
	// Case change plus an unrelated substring change is not a rename.
	removed := []Symbol{sym(KindFunction, "", "get_user", "a.py", 0)}
	added := []Symbol{sym(KindFunction, "", "GetUserByID", "a.py", 0)}

	assert.Empty(t, matchRenames(removed, added))
}

func TestMatchRenamesNoDoubleMatching(t *testing.T) {
	removed := []Symbol{
		sym(KindFunction, "", "user_id", "a.py", 0),
		sym(KindFunction, "", "userid", "a.py", 1),
	}
	added := []Symbol{sym(KindFunction, "", "userId", "a.py", 0)}

	pairs := matchRenames(removed, added)
	require.Len(t, pairs, 1)
	// The case-only rule wins the single partner before the separator
	// rule runs: userid vs userId differ only by case.
	assert.Equal(t, "userid", pairs[0].before.Name)
	assert.Equal(t, confidenceCaseOnly, pairs[0].confidence)
}

func TestMatchRenamesPrefersSameScopeAndFile(t *testing.T) {
	removed := []Symbol{sym(KindMethod, "User", "save_all", "models.py", 0)}
	added := []Symbol{
		sym(KindMethod, "Account", "saveAll", "other.py", 0),
		sym(KindMethod, "User", "saveAll", "models.py", 1),
	}

	pairs := matchRenames(removed, added)
	require.Len(t, pairs, 1)
	assert.Equal(t, "User", pairs[0].after.Scope,
		"colocated candidate beats an earlier non-colocated one")
}

func TestMatchRenamesTieBreakByExtractionOrder(t *testing.T) {
	removed := []Symbol{sym(KindFunction, "", "do_work", "a.py", 0)}
	added := []Symbol{
		sym(KindFunction, "", "doWork", "b.py", 5),
		sym(KindFunction, "", "DoWork", "c.py", 2),
	}

	pairs := matchRenames(removed, added)
	require.Len(t, pairs, 1)
	assert.Equal(t, "c.py", pairs[0].after.File,
		"equal-confidence ties resolve to the earliest extracted candidate")
}

func TestMatchRenamesHighestConfidenceFirst(t *testing.T) {
	removed := []Symbol{sym(KindFunction, "", "load_data", "a.py", 0)}
	added := []Symbol{
		sym(KindFunction, "", "loadData", "a.py", 0), // separator match
		sym(KindFunction, "", "Load_Data", "a.py", 1), // case-only match
	}

	pairs := matchRenames(removed, added)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Load_Data", pairs[0].after.Name)
	assert.Equal(t, confidenceCaseOnly, pairs[0].confidence)
}
