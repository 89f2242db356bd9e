package path

import (
	"reflect"
	"testing"
)

func TestSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		root  map[string]any
		expr  string
		value any
		want  map[string]any
	}{
		{
			name:  "simple",
			root:  map[string]any{},
			expr:  "hello",
			value: "universe",
			want:  map[string]any{"hello": "universe"},
		},
		{
			name:  "nested_object",
			root:  map[string]any{},
			expr:  "hello.universe",
			value: "atlas",
			want:  map[string]any{"hello": map[string]any{"universe": "atlas"}},
		},
		{
			name:  "nested_array",
			root:  map[string]any{},
			expr:  "hello.universe[0].atlas",
			value: "galaxy",
			want: map[string]any{"hello": map[string]any{
				"universe": []any{map[string]any{"atlas": "galaxy"}},
			}},
		},
		{
			name:  "reset_simple",
			root:  map[string]any{"hello": "world"},
			expr:  "hello",
			value: "universe",
			want:  map[string]any{"hello": "universe"},
		},
		{
			name:  "existing_parent",
			root:  map[string]any{"hello": map[string]any{}},
			expr:  "hello.universe",
			value: 42,
			want:  map[string]any{"hello": map[string]any{"universe": 42}},
		},
		{
			name:  "reset_nested",
			root:  map[string]any{"hello": map[string]any{"universe": 100}},
			expr:  "hello.universe",
			value: 42,
			want:  map[string]any{"hello": map[string]any{"universe": 42}},
		},
		{
			name:  "grow_array_with_holes",
			root:  map[string]any{"hello": []any{1}},
			expr:  "hello[2]",
			value: 3,
			want:  map[string]any{"hello": []any{1, nil, 3}},
		},
		{
			name:  "reset_in_array",
			root:  map[string]any{"hello": []any{1, 2, 4}},
			expr:  "hello[2]",
			value: 3,
			want:  map[string]any{"hello": []any{1, 2, 3}},
		},
		{
			name:  "falsy_ancestor_replaced",
			root:  map[string]any{"a": 0},
			expr:  "a.b",
			value: true,
			want:  map[string]any{"a": map[string]any{"b": true}},
		},
		{
			name:  "truthy_scalar_ancestor_kept",
			root:  map[string]any{"a": "text"},
			expr:  "a.b",
			value: true,
			want:  map[string]any{"a": "text"},
		},
		{
			name:  "wrong_type_leaf_overwritten",
			root:  map[string]any{"a": map[string]any{"b": []any{1}}},
			expr:  "a.b",
			value: "x",
			want:  map[string]any{"a": map[string]any{"b": "x"}},
		},
		{
			name:  "index_on_object_uses_key",
			root:  map[string]any{},
			expr:  "[0]",
			value: "v",
			want:  map[string]any{"0": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Set(Compile(tt.expr), tt.value, tt.root)
			if !reflect.DeepEqual(tt.root, tt.want) {
				t.Fatalf("Set(%q) root = %#v, want %#v", tt.expr, tt.root, tt.want)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Set(%q) returned %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestSetRoundTrip(t *testing.T) {
	t.Parallel()

	exprs := []string{"a", "a.b.c", "a[0]", "a[2].b", "[1].x", "a.b[0][1]"}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			t.Parallel()
			p := Compile(expr)
			root := map[string]any{}
			Set(p, "v", root)
			if got := Get(p, root); got != "v" {
				t.Fatalf("Get after Set(%q) = %#v, want %q", expr, got, "v")
			}
		})
	}
}

func TestSetIdempotent(t *testing.T) {
	t.Parallel()

	p := Compile("a.b[1].c")

	once := map[string]any{}
	Set(p, 5, once)

	twice := map[string]any{}
	Set(p, 5, twice)
	Set(p, 5, twice)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("applying Set twice = %#v, once = %#v", twice, once)
	}
}

func TestSetSliceRoots(t *testing.T) {
	t.Parallel()

	t.Run("pointer_grows_in_place", func(t *testing.T) {
		t.Parallel()
		root := []any{}
		Set(Compile("[1]"), "b", &root)
		want := []any{nil, "b"}
		if !reflect.DeepEqual(root, want) {
			t.Fatalf("root = %#v, want %#v", root, want)
		}
	})

	t.Run("nil_root_creates_container", func(t *testing.T) {
		t.Parallel()
		got := Set(Compile("a.b"), 1, nil)
		want := map[string]any{"a": map[string]any{"b": 1}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Set on nil root = %#v, want %#v", got, want)
		}
	})

	t.Run("slice_root_returned", func(t *testing.T) {
		t.Parallel()
		got := Set(Compile("[0].name"), "x", []any{})
		want := []any{map[string]any{"name": "x"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Set on slice root = %#v, want %#v", got, want)
		}
	})
}
