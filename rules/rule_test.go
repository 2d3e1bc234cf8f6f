package rules_test

import (
	"testing"

	"github.com/AdguardTeam/urldedup/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPolicy is the policy name for tests.
const testPolicy = "queryRemoval"

func TestRule_Key(t *testing.T) {
	t.Parallel()

	base := &rules.Rule{
		Args:   []any{"bbn", "ref"},
		Policy: testPolicy,
		Order:  1,
	}

	testCases := []struct {
		other     *rules.Rule
		name      string
		wantEqual bool
	}{{
		other: &rules.Rule{
			Args:   []string{"bbn", "ref"},
			Policy: testPolicy,
			Order:  1,
		},
		name:      "same",
		wantEqual: true,
	}, {
		other: &rules.Rule{
			Args:       []any{"bbn", "ref"},
			Policy:     testPolicy,
			Order:      1,
			URLPattern: rules.URLPattern{Include: []string{}},
		},
		name:      "empty_include",
		wantEqual: true,
	}, {
		other: &rules.Rule{
			Args:   []any{"ref", "bbn"},
			Policy: testPolicy,
			Order:  1,
		},
		name:      "args_order",
		wantEqual: false,
	}, {
		other: &rules.Rule{
			Args:   []any{"bbn", "ref"},
			Policy: testPolicy,
			Order:  2,
		},
		name:      "order",
		wantEqual: false,
	}, {
		other: &rules.Rule{
			Args:   []any{"bbn", "ref"},
			Policy: "other",
			Order:  1,
		},
		name:      "policy",
		wantEqual: false,
	}, {
		other: &rules.Rule{
			Args:       []any{"bbn", "ref"},
			Policy:     testPolicy,
			Order:      1,
			URLPattern: rules.URLPattern{Include: []string{"foo.example"}},
		},
		name:      "include",
		wantEqual: false,
	}, {
		other: &rules.Rule{
			Args:       []any{"bbn", "ref"},
			Policy:     testPolicy,
			Order:      1,
			URLPattern: rules.URLPattern{Exclude: []string{"foo.example"}},
		},
		name:      "exclude",
		wantEqual: false,
	}}

	baseKey, err := base.Key()
	require.NoError(t, err)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			k, kErr := tc.other.Key()
			require.NoError(t, kErr)

			if tc.wantEqual {
				assert.Equal(t, baseKey, k)
			} else {
				assert.NotEqual(t, baseKey, k)
			}
		})
	}
}

func TestRule_Key_mapArgs(t *testing.T) {
	t.Parallel()

	a := &rules.Rule{
		Args:   map[string]any{"a": 1, "b": []any{"x"}},
		Policy: testPolicy,
	}
	b := &rules.Rule{
		Args:   map[string]any{"b": []any{"x"}, "a": 1},
		Policy: testPolicy,
	}

	ka, err := a.Key()
	require.NoError(t, err)

	kb, err := b.Key()
	require.NoError(t, err)

	assert.Equal(t, ka, kb)
}

func TestRule_Key_error(t *testing.T) {
	t.Parallel()

	r := &rules.Rule{
		Args:   func() {},
		Policy: testPolicy,
	}

	_, err := r.Key()
	assert.Error(t, err)
}
