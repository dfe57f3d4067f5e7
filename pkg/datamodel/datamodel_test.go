package datamodel

import (
	"testing"

	"github.com/frankban/quicktest"
)

func TestDataset_HasAllowedUser(t *testing.T) {
	c := quicktest.New(t)

	dataset := &Dataset{AllowedUsers: []string{"alice", "bob"}}

	c.Assert(dataset.HasAllowedUser("alice"), quicktest.IsTrue)
	c.Assert(dataset.HasAllowedUser("carol"), quicktest.IsFalse)
	c.Assert((&Dataset{}).HasAllowedUser("alice"), quicktest.IsFalse)
}

func TestDataset_SearchableOrDefault(t *testing.T) {
	c := quicktest.New(t)

	boolPtr := func(v bool) *bool { return &v }

	testCases := []struct {
		searchable *bool
		def        bool
		expected   bool
	}{
		{searchable: nil, def: true, expected: true},
		{searchable: nil, def: false, expected: false},
		{searchable: boolPtr(true), def: false, expected: true},
		{searchable: boolPtr(false), def: true, expected: false},
	}

	for _, tc := range testCases {
		dataset := &Dataset{Searchable: tc.searchable}
		c.Assert(dataset.SearchableOrDefault(tc.def), quicktest.Equals, tc.expected)
	}
}

func TestDataset_IsActive(t *testing.T) {
	c := quicktest.New(t)

	c.Assert((&Dataset{State: "active"}).IsActive(), quicktest.IsTrue)
	c.Assert((&Dataset{State: "draft"}).IsActive(), quicktest.IsFalse)
	c.Assert((&Dataset{State: "deleted"}).IsActive(), quicktest.IsFalse)
	c.Assert((&Dataset{}).IsActive(), quicktest.IsFalse)
}

func TestRequestContext_ActorName(t *testing.T) {
	c := quicktest.New(t)

	anonymous := RequestContext{}
	c.Assert(anonymous.IsAnonymous(), quicktest.IsTrue)
	c.Assert(anonymous.ActorName(), quicktest.Equals, "")

	named := RequestContext{Actor: &Actor{ID: "u-1", Name: "alice"}}
	c.Assert(named.IsAnonymous(), quicktest.IsFalse)
	c.Assert(named.ActorName(), quicktest.Equals, "alice")
}
