package ufnet_test

import (
	"testing"

	"github.com/AdguardTeam/urldedup/internal/ufnet"
	"github.com/stretchr/testify/assert"
)

func TestSplitQuery(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in           string
		name         string
		wantBase     string
		wantQuery    string
		wantFragment string
		wantOK       bool
	}{{
		in:           "http://foo.example",
		name:         "no_query",
		wantBase:     "http://foo.example",
		wantQuery:    "",
		wantFragment: "",
		wantOK:       false,
	}, {
		in:           "http://foo.example/?a=1&b=2",
		name:         "query",
		wantBase:     "http://foo.example/",
		wantQuery:    "a=1&b=2",
		wantFragment: "",
		wantOK:       true,
	}, {
		in:           "https://example.com?a=1#top",
		name:         "query_fragment",
		wantBase:     "https://example.com",
		wantQuery:    "a=1",
		wantFragment: "#top",
		wantOK:       true,
	}, {
		in:           "https://example.com/#top?a=1",
		name:         "question_in_fragment",
		wantBase:     "https://example.com/",
		wantQuery:    "",
		wantFragment: "#top?a=1",
		wantOK:       false,
	}, {
		in:           "https://example.com/??a=1?b",
		name:         "repeated_question",
		wantBase:     "https://example.com/",
		wantQuery:    "?a=1?b",
		wantFragment: "",
		wantOK:       true,
	}, {
		in:           "https://example.com/?",
		name:         "empty_query",
		wantBase:     "https://example.com/",
		wantQuery:    "",
		wantFragment: "",
		wantOK:       true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			base, query, fragment, ok := ufnet.SplitQuery(tc.in)
			assert.Equal(t, tc.wantBase, base)
			assert.Equal(t, tc.wantQuery, query)
			assert.Equal(t, tc.wantFragment, fragment)
			assert.Equal(t, tc.wantOK, ok)

			if tc.wantOK && tc.wantQuery != "" {
				assert.Equal(t, tc.in, ufnet.JoinQuery(base, query, fragment))
			}
		})
	}
}

func TestJoinQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com", ufnet.JoinQuery("https://example.com", "", ""))
	assert.Equal(t, "https://example.com#x", ufnet.JoinQuery("https://example.com", "", "#x"))
	assert.Equal(t, "https://example.com/?a=1#x", ufnet.JoinQuery("https://example.com/", "a=1", "#x"))
}
