package disassemble

import (
	"testing"

	store "github.com/hbeckett/E900/emu/store"
)

func TestDisassemble(t *testing.T) {
	cases := []struct {
		word uint32
		want string
	}{
		{store.MakeIns(0, 8, 8183), "  8 8183  jump"},
		{store.MakeIns(1, 5, 8180), "/ 5 8180  store A"},
		{store.MakeIns(0, 15, 2048), " 15 2048  input/output"},
		{store.MakeIns(0, 0, 0), "  0    0  load B"},
	}
	for _, tc := range cases {
		if got := Disassemble(tc.word); got != tc.want {
			t.Errorf("word %o: got %q expected %q", tc.word, got, tc.want)
		}
	}
}
