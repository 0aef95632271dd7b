package todos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/rbac"
)

func TestBuildListQuery(t *testing.T) {
	done := true
	tests := []struct {
		name   string
		filter ListFilter
		where  string
		args   []any
	}{
		{
			name:   "admin sees every row",
			filter: ListFilter{Scope: rbac.OwnerFilter{All: true}},
			args:   nil,
		},
		{
			name:   "user is pinned to own rows",
			filter: ListFilter{Scope: rbac.OwnerFilter{OwnerID: "u-1"}},
			where:  " WHERE t.user_id = $1",
			args:   []any{"u-1"},
		},
		{
			name: "user with every filter",
			filter: ListFilter{
				Scope:     rbac.OwnerFilter{OwnerID: "u-1"},
				Completed: &done,
				Category:  CategoryUrgent,
				Search:    "50%_off",
			},
			where: " WHERE t.user_id = $1 AND t.completed = $2 AND t.category = $3 AND t.title ILIKE $4",
			args:  []any{"u-1", true, "Urgent", `%50\%\_off%`},
		},
		{
			name: "admin filters start at the first placeholder",
			filter: ListFilter{
				Scope:    rbac.OwnerFilter{All: true},
				Category: CategoryNonUrgent,
				Search:   "report",
			},
			where: " WHERE t.category = $1 AND t.title ILIKE $2",
			args:  []any{"Non-Urgent", "%report%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, ok := buildListQuery(tt.filter)
			require.True(t, ok)
			assert.Equal(t, selectTodo+tt.where+listOrder, query)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestBuildListQueryEmptyScope(t *testing.T) {
	for _, filter := range []ListFilter{
		{},
		{Scope: rbac.OwnerFilter{}, Search: "x"},
	} {
		query, args, ok := buildListQuery(filter)
		assert.False(t, ok)
		assert.Empty(t, query)
		assert.Nil(t, args)
	}
}
