package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortFields(t *testing.T) {
	fields, err := Sort("createdAt:asc, title:DESC,name").Fields()
	require.NoError(t, err)
	require.Equal(t, []SortField{
		{Field: "createdAt", Direction: Asc},
		{Field: "title", Direction: Desc},
		{Field: "name", Direction: Asc},
	}, fields)

	fields, err = Sort("").Fields()
	require.NoError(t, err)
	require.Empty(t, fields)

	_, err = Sort("title:up").Fields()
	require.True(t, IsInvalidField(err))

	_, err = Sort(":asc").Fields()
	require.True(t, IsInvalidField(err))

	require.Equal(t, Sort("a:asc,b:desc"), SortBy("a", Asc).Then("b", Desc))
	require.Equal(t, Sort("a:desc"), Sort("").Then("a", Desc))
}

func TestWindow(t *testing.T) {
	cases := []struct {
		q                     Query
		page, limit, offset int
	}{
		{Query{}, 1, 10, 0},
		{Query{Page: 3, Limit: 20}, 3, 20, 40},
		{Query{Page: -1, Limit: 0}, 1, 10, 0},
		{Query{Page: 2, Limit: 500}, 2, 100, 100},
	}
	for _, tc := range cases {
		page, limit, offset := tc.q.Window()
		require.Equal(t, tc.page, page)
		require.Equal(t, tc.limit, limit)
		require.Equal(t, tc.offset, offset)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage[int](nil, 0, 1, 10)
	require.NotNil(t, p.Items)
	require.Equal(t, 0, p.TotalPages)

	require.Equal(t, 3, NewPage([]int{1, 2}, 5, 1, 2).TotalPages)
	require.Equal(t, 1, NewPage([]int{1}, 10, 1, 10).TotalPages)
	require.Equal(t, 2, NewPage([]int{1}, 11, 2, 10).TotalPages)
}

func TestPatch(t *testing.T) {
	name := "Ada"
	empty := ""
	req := struct {
		Name     *string `json:"name,omitempty"`
		Headline *string `json:"headline"`
		Skills   *string
		Secret   *string `json:"-"`
		Plain    string  `json:"plain"`
		hidden   *string
	}{Name: &name, Headline: &empty, Secret: &name, hidden: &name}

	require.Equal(t, map[string]any{"name": "Ada", "headline": ""}, Patch(&req))
	require.Empty(t, Patch(nil))
	require.Empty(t, Patch(42))
}

func TestLikeEscaping(t *testing.T) {
	require.Equal(t, "50!% off!_now!!", escapeLike("50% off_now!"))
}
