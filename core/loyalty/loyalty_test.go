package loyalty

import "testing"

func TestLedger(t *testing.T) {
	l := NewLedger()
	l.AddPoints("u1", 5)
	l.AddPoints("u1", 3)
	l.AddPoints("u1", -2)
	l.AddPoints("", 10)
	if got := l.Points("u1"); got != 8 {
		t.Fatalf("balance: got %d want 8", got)
	}
	if l.Redeem("u1", 10) {
		t.Fatalf("redeem beyond balance should fail")
	}
	if !l.Redeem("u1", 8) {
		t.Fatalf("redeem within balance should succeed")
	}
	if got := l.Points("u1"); got != 0 {
		t.Fatalf("balance after redeem: got %d want 0", got)
	}
	if got := l.Points("unknown"); got != 0 {
		t.Fatalf("unknown user balance: got %d want 0", got)
	}
}
