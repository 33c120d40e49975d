package checksum

import "testing"

func TestSum(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("distinct inputs share a digest")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("ab", "c")
	if len(a) != 16 {
		t.Fatalf("len = %d, want 16", len(a))
	}
	if a != Fingerprint("ab", "c") {
		t.Error("fingerprint is not stable")
	}
	if a == Fingerprint("a", "bc") {
		t.Error("part boundaries should change the fingerprint")
	}
	if Fingerprint("x", "") == Fingerprint("x") {
		t.Error("an empty trailing part should change the fingerprint")
	}
}
