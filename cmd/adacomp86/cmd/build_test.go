package cmd

import "testing"

func TestReplaceExt(t *testing.T) {
	cases := []struct{ path, ext, want string }{
		{"program.ada", ".asm", "program.asm"},
		{"dir/sub/program.ada", ".tac", "dir/sub/program.tac"},
		{"noext", ".asm", "noext.asm"},
	}
	for _, c := range cases {
		if got := replaceExt(c.path, c.ext); got != c.want {
			t.Errorf("replaceExt(%q, %q) = %q, want %q", c.path, c.ext, got, c.want)
		}
	}
}
