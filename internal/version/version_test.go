package version

import "testing"

func TestString(t *testing.T) {
	old := Version
	oldCommit, oldTime := Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = old, oldCommit, oldTime })

	Version, Commit, BuildTime = "1.4.0", "abc1234", "2026-03-01T12:00:00Z"

	want := "1.4.0 (abc1234) built 2026-03-01T12:00:00Z"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Get(); got.Commit != "abc1234" {
		t.Errorf("Get().Commit = %q, want abc1234", got.Commit)
	}
}
