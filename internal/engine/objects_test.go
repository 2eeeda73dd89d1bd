package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteSchemaRefs(t *testing.T) {
	ddl := "CREATE VIEW `v` AS select `shop`.`users`.`name` from `shop`.`users`"

	got := rewriteSchemaRefs(ddl, "shop", "store")
	require.Equal(t, "CREATE VIEW `v` AS select `store`.`users`.`name` from `store`.`users`", got)

	// No rename target means the DDL passes through untouched.
	require.Equal(t, ddl, rewriteSchemaRefs(ddl, "shop", "shop"))

	// Unquoted occurrences of the name are data, not references.
	require.Equal(t, "select 'shop' from `store`.`t`",
		rewriteSchemaRefs("select 'shop' from `shop`.`t`", "shop", "store"))
}

func TestOrderViewsDependency(t *testing.T) {
	views := []string{"v_summary", "v_base"}
	ddls := map[string]string{
		"v_summary": "CREATE VIEW `v_summary` AS select * from `shop`.`v_base`",
		"v_base":    "CREATE VIEW `v_base` AS select * from `shop`.`users`",
	}

	got := orderViews(views, ddls)
	require.Equal(t, []string{"v_base", "v_summary"}, got)
}

func TestOrderViewsJoinClause(t *testing.T) {
	views := []string{"v_joined", "v_left", "v_right"}
	ddls := map[string]string{
		"v_joined": "CREATE VIEW `v_joined` AS select * from `shop`.`v_left` join `shop`.`v_right` on 1",
		"v_left":   "CREATE VIEW `v_left` AS select * from `shop`.`a`",
		"v_right":  "CREATE VIEW `v_right` AS select * from `shop`.`b`",
	}

	got := orderViews(views, ddls)
	require.Equal(t, "v_joined", got[len(got)-1])
}

func TestOrderViewsBaseTableRefsIgnored(t *testing.T) {
	views := []string{"v_a", "v_b"}
	ddls := map[string]string{
		"v_a": "CREATE VIEW `v_a` AS select * from `shop`.`users`",
		"v_b": "CREATE VIEW `v_b` AS select * from `shop`.`orders`",
	}

	// References to base tables never reorder anything.
	require.Equal(t, views, orderViews(views, ddls))
}

func TestMoveRefBefore(t *testing.T) {
	require.Equal(t, []string{"c", "a", "b"}, moveRefBefore([]string{"a", "b", "c"}, "a", "c"))

	// Already ordered, or unknown names, stay put.
	require.Equal(t, []string{"a", "b"}, moveRefBefore([]string{"a", "b"}, "b", "a"))
	require.Equal(t, []string{"a", "b"}, moveRefBefore([]string{"a", "b"}, "a", "x"))
}
