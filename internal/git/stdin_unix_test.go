//go:build unix

package git

import (
	"os"
	"testing"
)

func TestReadPiped_EmptyPipe(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	_, ok, err := ReadPiped(r)
	if err != nil {
		t.Fatalf("ReadPiped: %v", err)
	}
	if ok {
		t.Fatal("an idle pipe must not be read")
	}
}
